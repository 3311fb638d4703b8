// Package warehouse loads a prepared table into PostgreSQL.
//
// Each export runs in one transaction: the target table is created if it
// does not exist, then every row is sent with the COPY protocol. Exports
// append; rows from different runs are told apart by the run_id column.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/JonMunkholm/titanicprep/internal/config"
	"github.com/JonMunkholm/titanicprep/internal/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunIDColumn holds the run that produced each row.
const RunIDColumn = "run_id"

// DB starts transactions. Satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Exporter writes tables to a single PostgreSQL table.
type Exporter struct {
	db    DB
	table pgx.Identifier
}

// New returns an Exporter targeting tableName, which may be
// schema-qualified ("staging.titanic").
func New(db DB, tableName string) *Exporter {
	return &Exporter{
		db:    db,
		table: pgx.Identifier(strings.Split(tableName, ".")),
	}
}

// Connect opens and pings a pool configured from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// sqlType is how a table column is stored.
type sqlType int

const (
	sqlText sqlType = iota
	sqlNumeric
	sqlDouble
)

func (t sqlType) String() string {
	switch t {
	case sqlNumeric:
		return "NUMERIC"
	case sqlDouble:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// column maps a table column to its database column.
type column struct {
	index int
	name  string
	typ   sqlType
}

// Export copies every row of t into the target table and returns the
// number of rows written.
func (e *Exporter) Export(ctx context.Context, t *table.Table, runID uuid.UUID) (int64, error) {
	cols := columnsFor(t)

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, createTableSQL(e.table, cols)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", e.table.Sanitize(), err)
	}

	names := make([]string, 0, len(cols)+1)
	names = append(names, RunIDColumn)
	for _, c := range cols {
		names = append(names, c.name)
	}

	pgRunID := pgtype.UUID{Bytes: runID, Valid: true}
	n, err := tx.CopyFrom(ctx, e.table, names, pgx.CopyFromSlice(t.Len(), func(i int) ([]any, error) {
		return rowValues(t, i, cols, pgRunID)
	}))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", e.table.Sanitize(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// columnsFor picks a database name and type for every column of t.
//
// Numeric columns load as NUMERIC when every value is a plain decimal.
// Values such as "1e3", "Inf" or "0x1p4" parse as numbers but not as
// NUMERIC text, so their column falls back to DOUBLE PRECISION.
func columnsFor(t *table.Table) []column {
	header := t.Header()
	names := dbColumnNames(header)
	cols := make([]column, len(header))
	for i := range header {
		cols[i] = column{index: i, name: names[i], typ: sqlText}
		if t.ColumnKind(i) == table.KindNumber {
			cols[i].typ = numericType(t, i)
		}
	}
	return cols
}

func numericType(t *table.Table, col int) sqlType {
	for i := 0; i < t.Len(); i++ {
		if _, err := toPgNumeric(t.Cell(i, col)); err != nil {
			return sqlDouble
		}
	}
	return sqlNumeric
}

// dbColumnNames converts a header to unique database column names. Names
// that collide with an earlier column or with RunIDColumn get a numeric
// suffix: "home.dest", "home_dest" -> "home_dest", "home_dest_2".
func dbColumnNames(header []string) []string {
	used := map[string]bool{RunIDColumn: true}
	names := make([]string, len(header))
	for i, h := range header {
		base := toDBColumnName(h)
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func createTableSQL(name pgx.Identifier, cols []column) string {
	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, pgx.Identifier{RunIDColumn}.Sanitize()+" UUID NOT NULL")
	for _, c := range cols {
		defs = append(defs, pgx.Identifier{c.name}.Sanitize()+" "+c.typ.String())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name.Sanitize(), strings.Join(defs, ", "))
}

func rowValues(t *table.Table, i int, cols []column, runID pgtype.UUID) ([]any, error) {
	values := make([]any, 0, len(cols)+1)
	values = append(values, runID)
	for _, c := range cols {
		cell := t.Cell(i, c.index)
		switch c.typ {
		case sqlNumeric:
			n, err := toPgNumeric(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, c.name, err)
			}
			values = append(values, n)
		case sqlDouble:
			values = append(values, toPgFloat8(cell))
		default:
			values = append(values, toPgText(cell))
		}
	}
	return values, nil
}

// toDBColumnName converts a CSV header to a database column name.
// "home.dest" -> "home_dest", "Ticket No" -> "ticket_no"
func toDBColumnName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, strings.TrimSpace(name))
}

// toPgText converts a cell to pgtype.Text. Missing cells become NULL.
func toPgText(c table.Cell) pgtype.Text {
	if c.IsMissing() {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: c.Raw(), Valid: true}
}

// toPgNumeric converts a numeric cell to pgtype.Numeric from its source
// text, so no float rounding reaches the database. Missing cells become NULL.
func toPgNumeric(c table.Cell) (pgtype.Numeric, error) {
	if c.IsMissing() {
		return pgtype.Numeric{Valid: false}, nil
	}
	var n pgtype.Numeric
	if err := n.Scan(c.Raw()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("invalid numeric %q: %w", c.Raw(), err)
	}
	return n, nil
}

// toPgFloat8 converts a numeric cell to pgtype.Float8. Missing cells become
// NULL.
func toPgFloat8(c table.Cell) pgtype.Float8 {
	v, ok := c.Float()
	if !ok {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: v, Valid: true}
}
