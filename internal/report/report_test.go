package report

import (
	"bytes"
	"testing"

	"github.com/JonMunkholm/titanicprep/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tbl, err := table.New([]string{"age", "cabin"}, []table.Row{
		{table.Number("29", 29), table.String("B5")},
		{table.Missing(), table.Missing()},
		{table.Number("2", 2), table.Missing()},
		{table.Missing(), table.String("C22")},
	})
	require.NoError(t, err)

	s := Summarize(tbl)

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, []ColumnSummary{
		{Name: "age", Kind: "number", Missing: 2},
		{Name: "cabin", Kind: "string", Missing: 2},
	}, s.Columns)
	assert.Equal(t, 2, s.Missing("cabin"))
	assert.Equal(t, -1, s.Missing("deck"))
}

func TestRender(t *testing.T) {
	s := Summary{
		Rows: 4,
		Columns: []ColumnSummary{
			{Name: "age", Kind: "number", Missing: 1},
			{Name: "cabin", Kind: "string", Missing: 3},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "cabin")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "(4 rows)")
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Summary{}))
	assert.Equal(t, "(no columns)\n", buf.String())
}

func TestPercent_NoRows(t *testing.T) {
	assert.Equal(t, "-", percent(0, 0))
}
