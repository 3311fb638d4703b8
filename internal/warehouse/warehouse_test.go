package warehouse

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/titanicprep/internal/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records what the exporter sends. Methods it does not override
// panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	execSQL    []string
	execErr    error
	copyTable  pgx.Identifier
	copyCols   []string
	rows       [][]any
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), f.execErr
}

func (f *fakeTx) CopyFrom(_ context.Context, name pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	f.copyTable, f.copyCols = name, cols
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, values)
	}
	return int64(len(f.rows)), src.Err()
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx  *fakeTx
	err error
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.tx, nil
}

func preparedTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New([]string{"name", "age", "home.dest"}, []table.Row{
		{table.String("Allen"), table.Number("29", 29), table.String("St Louis, MO")},
		{table.String("Allison"), table.Missing(), table.Missing()},
	})
	require.NoError(t, err)
	return tbl
}

func TestExport(t *testing.T) {
	tx := &fakeTx{}
	exp := New(&fakeDB{tx: tx}, "staging.titanic")
	runID := uuid.New()

	n, err := exp.Export(context.Background(), preparedTable(t), runID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), n)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	require.Len(t, tx.execSQL, 1)
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "staging"."titanic" ("run_id" UUID NOT NULL, "name" TEXT, "age" NUMERIC, "home_dest" TEXT)`,
		tx.execSQL[0])

	assert.Equal(t, pgx.Identifier{"staging", "titanic"}, tx.copyTable)
	assert.Equal(t, []string{"run_id", "name", "age", "home_dest"}, tx.copyCols)

	require.Len(t, tx.rows, 2)
	first, second := tx.rows[0], tx.rows[1]

	assert.Equal(t, pgtype.UUID{Bytes: runID, Valid: true}, first[0])
	assert.Equal(t, pgtype.Text{String: "Allen", Valid: true}, first[1])
	age, ok := first[2].(pgtype.Numeric)
	require.True(t, ok)
	assert.True(t, age.Valid)
	assert.Equal(t, int64(29), age.Int.Int64())

	// Missing cells go to the database as NULL.
	assert.Equal(t, pgtype.Numeric{Valid: false}, second[2])
	assert.Equal(t, pgtype.Text{Valid: false}, second[3])
}

func TestExport_BeginError(t *testing.T) {
	boom := errors.New("connection refused")
	exp := New(&fakeDB{err: boom}, "titanic")

	_, err := exp.Export(context.Background(), preparedTable(t), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestExport_CreateTableError(t *testing.T) {
	boom := errors.New("permission denied")
	tx := &fakeTx{execErr: boom}
	exp := New(&fakeDB{tx: tx}, "titanic")

	_, err := exp.Export(context.Background(), preparedTable(t), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestToDBColumnName(t *testing.T) {
	tests := map[string]string{
		"cabin":     "cabin",
		"home.dest": "home_dest",
		"Ticket No": "ticket_no",
		" Fare ":    "fare",
	}
	for in, want := range tests {
		assert.Equal(t, want, toDBColumnName(in), "toDBColumnName(%q)", in)
	}
}

func TestToPgNumeric(t *testing.T) {
	n, err := toPgNumeric(table.Number("7.25", 7.25))
	require.NoError(t, err)
	assert.True(t, n.Valid)

	n, err = toPgNumeric(table.Missing())
	require.NoError(t, err)
	assert.False(t, n.Valid)

	_, err = toPgNumeric(table.Number("not-a-number", 0))
	assert.Error(t, err)
}

func TestExport_NonDecimalNumbers(t *testing.T) {
	tbl, err := table.ReadCSV(strings.NewReader("name,fare\nA,1e3\nB,Inf\nC,0x1p4\nD,\n"))
	require.NoError(t, err)
	require.Equal(t, table.KindNumber, tbl.ColumnKind(1))

	tx := &fakeTx{}
	_, err = New(&fakeDB{tx: tx}, "titanic").Export(context.Background(), tbl, uuid.New())
	require.NoError(t, err)

	require.Len(t, tx.execSQL, 1)
	assert.Contains(t, tx.execSQL[0], `"fare" DOUBLE PRECISION`)

	require.Len(t, tx.rows, 4)
	assert.Equal(t, pgtype.Float8{Float64: 1000, Valid: true}, tx.rows[0][2])
	assert.Equal(t, pgtype.Float8{Float64: math.Inf(1), Valid: true}, tx.rows[1][2])
	assert.Equal(t, pgtype.Float8{Float64: 16, Valid: true}, tx.rows[2][2])
	assert.Equal(t, pgtype.Float8{Valid: false}, tx.rows[3][2])
}

func TestExport_ColumnNameCollisions(t *testing.T) {
	tbl, err := table.New([]string{"home.dest", "home_dest", "run_id", "?"}, []table.Row{
		{table.String("a"), table.String("b"), table.String("c"), table.String("d")},
	})
	require.NoError(t, err)

	tx := &fakeTx{}
	_, err = New(&fakeDB{tx: tx}, "titanic").Export(context.Background(), tbl, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"run_id", "home_dest", "home_dest_2", "run_id_2", "_"}, tx.copyCols)
}

func TestDBColumnNames(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   []string
	}{
		{"distinct", []string{"name", "age"}, []string{"name", "age"}},
		{"same after conversion", []string{"home.dest", "home_dest", "Home Dest"}, []string{"home_dest", "home_dest_2", "home_dest_3"}},
		{"reserved run id", []string{"run_id", "Run ID"}, []string{"run_id_2", "run_id_3"}},
		{"empty header", []string{"", "a"}, []string{"column_1", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dbColumnNames(tt.header))
		})
	}
}
