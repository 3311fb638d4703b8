package table

// csv.go converts between CSV text and Table.
//
// Reading follows the usual dataframe conventions:
//   - the first record is the header
//   - empty fields and the common NA spellings load as missing
//   - a column is numeric only if gota detects it as int or float;
//     otherwise every value in it stays a string
//
// Writing emits the header then one record per row, with missing cells as
// empty fields. No index column is added.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrEmptyInput is returned when the CSV has no header row.
var ErrEmptyInput = errors.New("csv has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naValues are the field values read as missing.
var naValues = []string{
	"",
	"#N/A",
	"#N/A N/A",
	"#NA",
	"-1.#IND",
	"-1.#QNAN",
	"-NaN",
	"-nan",
	"1.#IND",
	"1.#QNAN",
	"<NA>",
	"N/A",
	"NA",
	"NULL",
	"NaN",
	"None",
	"n/a",
	"nan",
	"null",
}

// SkipBOM returns a reader that drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// ReadCSV parses a whole CSV document into a Table.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(SkipBOM(r)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	header := records[0]
	index, err := indexHeader(header)
	if err != nil {
		return nil, err
	}
	// gota refuses a frame without data rows.
	if len(records) == 1 {
		return New(header, nil)
	}

	df := dataframe.LoadRecords(records,
		dataframe.NaNValues(naValues),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if err := df.Error(); err != nil {
		return nil, fmt.Errorf("load csv: %w", err)
	}

	detected := dataframe.LoadRecords(records, dataframe.NaNValues(naValues))
	if err := detected.Error(); err != nil {
		return nil, fmt.Errorf("detect column types: %w", err)
	}
	numeric := make([]bool, len(header))
	for i, typ := range detected.Types() {
		numeric[i] = typ == series.Int || typ == series.Float
	}

	return &Table{
		df:      df,
		header:  append([]string(nil), header...),
		index:   index,
		numeric: numeric,
	}, nil
}

// WriteCSV writes the header and all rows as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	// A lone empty field would be written as a blank line, which readers skip.
	if t.Width() == 1 {
		return t.writeSingleColumn(w)
	}

	out := t.df.Capply(blankMissing)
	if err := out.SetNames(t.header...); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return out.WriteCSV(w)
}

// blankMissing replaces gota's NaN marker with an empty field.
func blankMissing(s series.Series) series.Series {
	values := s.Records()
	for i := range values {
		if s.Elem(i).IsNA() {
			values[i] = ""
		}
	}
	return series.New(values, series.String, s.Name)
}

func (t *Table) writeSingleColumn(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		field := t.Cell(i, 0).Raw()
		if field != "" {
			if err := writer.Write([]string{field}); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
			continue
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
		if _, err := io.WriteString(w, "\"\"\n"); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
