// Package report summarizes a prepared table for people: per-column value
// kind and missing counts, rendered as a console table or served as JSON.
package report

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/titanicprep/internal/table"
	gotable "github.com/jedib0t/go-pretty/v6/table"
)

// ColumnSummary describes one column of a table.
type ColumnSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

// Summary describes a whole table.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Summarize builds a Summary of t.
func Summarize(t *table.Table) Summary {
	header := t.Header()
	missing := t.MissingCounts()

	cols := make([]ColumnSummary, len(header))
	for i, name := range header {
		cols[i] = ColumnSummary{
			Name:    name,
			Kind:    t.ColumnKind(i).String(),
			Missing: missing[i],
		}
	}
	return Summary{Rows: t.Len(), Columns: cols}
}

// Missing returns the missing count for the named column, or -1 when the
// column is not part of the summary.
func (s Summary) Missing(column string) int {
	for _, c := range s.Columns {
		if c.Name == column {
			return c.Missing
		}
	}
	return -1
}

// Render writes s to w as a light-style console table followed by a row count.
func Render(w io.Writer, s Summary) error {
	if len(s.Columns) == 0 {
		_, err := fmt.Fprintln(w, "(no columns)")
		return err
	}

	tw := gotable.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(gotable.StyleLight)
	tw.AppendHeader(gotable.Row{"column", "kind", "missing", "missing %"})

	for _, c := range s.Columns {
		tw.AppendRow(gotable.Row{c.Name, c.Kind, c.Missing, percent(c.Missing, s.Rows)})
	}

	tw.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n", s.Rows)
	return err
}

func percent(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)*100/float64(total))
}
