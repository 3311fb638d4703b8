package dataset

import (
	"strings"

	"github.com/JonMunkholm/titanicprep/internal/table"
)

// Token is the outcome of extracting the first token from a cell.
// OK is false when there was nothing to extract.
type Token struct {
	Value string
	OK    bool
}

// Cell converts the token back into a table cell.
func (t Token) Cell() table.Cell {
	if !t.OK {
		return table.Missing()
	}
	return table.String(t.Value)
}

// FirstToken returns the first whitespace-delimited token of a textual cell,
// e.g. "C23 C25 C27" yields "C23". Missing cells, numeric cells and cells
// with no tokens yield a Token with OK false.
func FirstToken(c table.Cell) Token {
	s, ok := c.Text()
	if !ok {
		return Token{}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Token{}
	}
	return Token{Value: fields[0], OK: true}
}

// ReplaceSentinel returns a copy of t in which every textual cell exactly
// equal to sentinel is missing. Cells that merely contain the sentinel are
// left alone.
func ReplaceSentinel(t *table.Table, sentinel string) *table.Table {
	return t.MapCells(func(c table.Cell) table.Cell {
		if s, ok := c.Text(); ok && s == sentinel {
			return table.Missing()
		}
		return c
	})
}

// ApplyColumn returns a copy of t with fn applied to every cell of column,
// in row order. It fails with table.ErrColumnNotFound for an unknown column.
func ApplyColumn(t *table.Table, column string, fn func(table.Cell) table.Cell) (*table.Table, error) {
	return t.MapColumn(column, fn)
}

// firstCabin is the cell function used on the cabin column.
func firstCabin(c table.Cell) table.Cell {
	return FirstToken(c).Cell()
}
