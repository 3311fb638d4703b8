// Package table holds the in-memory tabular model used by the dataset
// pipeline: an ordered header plus ordered rows of typed cells, stored as a
// gota DataFrame.
//
// Every column is kept as a string series holding the source text, so a
// table written back out matches what was read ("22" stays "22", not
// "22.000000"). Whether a column is numeric is tracked per column next to
// the frame.
//
// A Table is never modified after construction. MapCells and MapColumn
// return a new Table that shares nothing mutable with the receiver, so a
// pipeline stage can hand its input to the next stage without copying.
package table

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrColumnNotFound is returned when a named column is not in the header.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when a header names a column twice.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrRowWidth is returned when a row does not match the header width.
	ErrRowWidth = errors.New("row width does not match header")

	// ErrNoColumns is returned for a table without a header.
	ErrNoColumns = errors.New("table has no columns")
)

// naMarker is how gota string series hold a missing element.
const naMarker = "NaN"

// Row is one record, aligned with the table header.
type Row []Cell

// Table is an ordered header plus ordered rows.
type Table struct {
	df      dataframe.DataFrame
	header  []string
	index   map[string]int
	numeric []bool
}

// New builds a table from a header and rows. The inputs are copied.
//
// A column is numeric when it holds at least one Number and no String.
func New(header []string, rows []Row) (*Table, error) {
	index, err := indexHeader(header)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRowWidth, i, len(row), len(header))
		}
	}

	cols := make([]series.Series, len(header))
	numeric := make([]bool, len(header))
	cells := make([]Cell, len(rows))
	for j, name := range header {
		for i, row := range rows {
			cells[i] = row[j]
		}
		cols[j], numeric[j] = toSeries(name, cells)
	}

	df := dataframe.New(cols...)
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}

	return &Table{
		df:      df,
		header:  append([]string(nil), header...),
		index:   index,
		numeric: numeric,
	}, nil
}

func indexHeader(header []string) (map[string]int, error) {
	if len(header) == 0 {
		return nil, ErrNoColumns
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		index[name] = i
	}
	return index, nil
}

// toSeries stores cells as a string series and reports whether they form a
// numeric column.
func toSeries(name string, cells []Cell) (series.Series, bool) {
	values := make([]string, len(cells))
	var hasNumber, hasText bool
	for i, c := range cells {
		switch c.Kind() {
		case KindMissing:
			values[i] = naMarker
		case KindNumber:
			hasNumber = true
			values[i] = c.Raw()
		default:
			hasText = true
			values[i] = c.Raw()
		}
	}
	return series.New(values, series.String, name), hasNumber && !hasText
}

func toCell(e series.Element, numeric bool) Cell {
	if e.IsNA() {
		return Missing()
	}
	if numeric {
		return Number(e.String(), e.Float())
	}
	return String(e.String())
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.df.Nrow()
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.header)
}

// Header returns a copy of the column names.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// Row returns row i.
func (t *Table) Row(i int) Row {
	row := make(Row, t.Width())
	for j := range row {
		row[j] = t.Cell(i, j)
	}
	return row
}

// Rows returns all rows.
func (t *Table) Rows() []Row {
	out := make([]Row, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Cell returns the cell at row i in column col.
func (t *Table) Cell(i, col int) Cell {
	return toCell(t.df.Elem(i, col), t.numeric[col])
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Column returns the cells of the named column in row order.
func (t *Table) Column(name string) ([]Cell, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]Cell, t.Len())
	for i := range out {
		out[i] = t.Cell(i, col)
	}
	return out, nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	return t.derive(t.df.Copy(), append([]bool(nil), t.numeric...))
}

// MapCells returns a new table with fn applied to every cell.
func (t *Table) MapCells(fn func(Cell) Cell) *Table {
	numeric := make([]bool, t.Width())
	col := 0
	// Capply visits columns in header order.
	df := t.df.Capply(func(s series.Series) series.Series {
		out, num := t.mapSeries(s, col, fn)
		numeric[col] = num
		col++
		return out
	})
	return t.derive(df, numeric)
}

// MapColumn returns a new table with fn applied to every cell of the named
// column. Other columns are carried over unchanged.
func (t *Table) MapColumn(name string, fn func(Cell) Cell) (*Table, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	// gota may have renamed the column (empty or clashing names); Mutate
	// matches on its name, not ours.
	s := t.df.Col(t.df.Names()[col])
	out, num := t.mapSeries(s, col, fn)

	numeric := append([]bool(nil), t.numeric...)
	numeric[col] = num
	return t.derive(t.df.Mutate(out), numeric), nil
}

func (t *Table) mapSeries(s series.Series, col int, fn func(Cell) Cell) (series.Series, bool) {
	cells := make([]Cell, s.Len())
	for i := range cells {
		cells[i] = fn(toCell(s.Elem(i), t.numeric[col]))
	}
	return toSeries(s.Name, cells)
}

// derive wraps a frame produced from t. gota only fails here on a
// dimension mismatch, which the callers above cannot produce.
func (t *Table) derive(df dataframe.DataFrame, numeric []bool) *Table {
	if err := df.Error(); err != nil {
		panic(fmt.Sprintf("table: derive: %v", err))
	}
	return &Table{df: df, header: t.header, index: t.index, numeric: numeric}
}

// ColumnKind returns KindNumber for a numeric column, KindString for a
// textual one, and KindMissing when the column holds no values at all.
func (t *Table) ColumnKind(col int) Kind {
	if t.missing(col) == t.Len() {
		return KindMissing
	}
	if t.numeric[col] {
		return KindNumber
	}
	return KindString
}

// MissingCounts returns the number of missing cells per column, aligned
// with the header.
func (t *Table) MissingCounts() []int {
	counts := make([]int, t.Width())
	for j := range counts {
		counts[j] = t.missing(j)
	}
	return counts
}

func (t *Table) missing(col int) int {
	n := 0
	for i := 0; i < t.Len(); i++ {
		if t.df.Elem(i, col).IsNA() {
			n++
		}
	}
	return n
}
