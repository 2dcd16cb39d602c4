package idl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
)

// sqlInitTable bootstraps one physical table per schema table, modeled
// directly on the teacher's pkg/state/state.go sqlInit constant: a
// %[1]s-substituted CREATE SCHEMA/TABLE IF NOT EXISTS block, with the
// caller's schema name quoted via pq.QuoteIdentifier.
const sqlInitTable = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.%[2]s (
	uuid    UUID PRIMARY KEY,
	columns JSONB NOT NULL DEFAULT '{}'::jsonb
);
`

// Postgres is the production Client backend: one physical table per
// schema.TableClass, each row's non-key columns packed into a single
// jsonb blob keyed by column name. Reads and writes issued while a
// transaction is open (between Begin and Commit/Rollback) are routed
// through that transaction's *sql.Tx so they observe a single snapshot,
// per spec.md §5.
type Postgres struct {
	db         *sql.DB
	schemaName string
	schema     *dbschema.Schema
	declared   map[string]map[string]bool
	current    *sql.Tx
}

// NewPostgres opens conn, bootstraps one physical table per table in
// schema under pgSchema, and returns a ready Client.
func NewPostgres(ctx context.Context, dsn, pgSchema string, schema *dbschema.Schema) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	p := &Postgres{db: db, schemaName: pgSchema, schema: schema, declared: map[string]map[string]bool{}}
	for _, t := range schema.Tables {
		stmt := fmt.Sprintf(sqlInitTable, pq.QuoteIdentifier(pgSchema), pq.QuoteIdentifier(physicalName(t.Class.Name)))
		// Bootstrap DDL goes through the same retryable-transaction helper
		// Commit's contention detection is modeled on, since concurrent
		// startup of multiple rowctl processes against a fresh database can
		// hit lock-not-available the same way ordinary writes do.
		err := withRetryableTx(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, stmt)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrapping table %q: %w", t.Class.Name, err)
		}
	}
	return p, nil
}

func physicalName(table string) string {
	return "tbl_" + table
}

func (p *Postgres) queryable() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if p.current != nil {
		return p.current
	}
	return p.db
}

func (p *Postgres) qualified(table string) string {
	return pq.QuoteIdentifier(p.schemaName) + "." + pq.QuoteIdentifier(physicalName(table))
}

func (p *Postgres) Declare(table string, columns ...string) {
	if p.declared[table] == nil {
		p.declared[table] = map[string]bool{}
	}
	for _, c := range columns {
		p.declared[table][c] = true
	}
}

// Refresh is a light no-op for the Postgres backend: unlike an in-memory
// cache, every read already goes straight to the database (through the
// open transaction when there is one), so there is nothing to warm up
// beyond the bootstrap NewPostgres already performed.
func (p *Postgres) Refresh(ctx context.Context) error { return nil }

func (p *Postgres) Rows(table string) []Row {
	rows, err := p.queryable().QueryContext(context.Background(), fmt.Sprintf("SELECT uuid FROM %s", p.qualified(table)))
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return out
		}
		out = append(out, Row{Table: table, UUID: id})
	}
	return out
}

func (p *Postgres) RowForUUID(table string, id uuid.UUID) (Row, bool) {
	var found uuid.UUID
	err := p.queryable().QueryRowContext(context.Background(),
		fmt.Sprintf("SELECT uuid FROM %s WHERE uuid = $1", p.qualified(table)), id).Scan(&found)
	if err != nil {
		return Row{}, false
	}
	return Row{Table: table, UUID: found}, true
}

func (p *Postgres) Read(row Row, column string) (atom.Datum, error) {
	var d atom.Datum
	err := p.queryable().QueryRowContext(context.Background(),
		fmt.Sprintf("SELECT columns->$1 FROM %s WHERE uuid = $2", p.qualified(row.Table)),
		column, row.UUID).Scan(&d)
	if err == sql.ErrNoRows {
		return atom.Datum{}, fmt.Errorf("no row %s in table %s", row.UUID, row.Table)
	}
	if err != nil {
		return atom.Datum{}, err
	}
	return d, nil
}

func (p *Postgres) IsMutable(row Row, column string) bool {
	tc := p.schema.Table(row.Table)
	if tc == nil {
		return false
	}
	col := tc.Class.Column(column)
	return col != nil && !col.ReadOnly
}

func (p *Postgres) Begin(ctx context.Context) (Txn, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	p.current = tx
	return &pgTxn{p: p, tx: tx}, nil
}

func (p *Postgres) Close() error { return p.db.Close() }

type pgTxn struct {
	p  *Postgres
	tx *sql.Tx
}

func (t *pgTxn) Verify(row Row, column string) error { return nil }

func (t *pgTxn) Write(row Row, column string, datum atom.Datum) error {
	payload, err := datum.Value()
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(
		fmt.Sprintf("UPDATE %s SET columns = jsonb_set(columns, ARRAY[$1], $2::jsonb, true) WHERE uuid = $3", t.p.qualified(row.Table)),
		column, payload, row.UUID)
	return err
}

func (t *pgTxn) Insert(table string, wantUUID *uuid.UUID) (Row, error) {
	id := uuid.New()
	if wantUUID != nil {
		id = *wantUUID
	}
	_, err := t.tx.Exec(fmt.Sprintf("INSERT INTO %s (uuid, columns) VALUES ($1, '{}'::jsonb)", t.p.qualified(table)), id)
	if err != nil {
		return Row{}, err
	}
	return Row{Table: table, UUID: id}, nil
}

func (t *pgTxn) Delete(row Row) error {
	_, err := t.tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE uuid = $1", t.p.qualified(row.Table)), row.UUID)
	return err
}

func (t *pgTxn) Commit(ctx context.Context) (CommitOutcome, error) {
	err := t.tx.Commit()
	t.p.current = nil
	if err == nil {
		return CommitOK, nil
	}
	if isTransientPgError(err) {
		return CommitRetry, nil
	}
	return CommitError, err
}

func (t *pgTxn) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	t.p.current = nil
	return err
}

// InsertedUUID always returns the uuid Insert was given (or minted): the
// Postgres backend chooses a row's final uuid up front rather than
// remapping it post-commit, unlike internal/idl/fake.go's Fake, which
// models the general remap-on-commit case spec.md invariant 2 allows for.
func (t *pgTxn) InsertedUUID(provisional uuid.UUID) (uuid.UUID, bool) {
	return provisional, true
}
