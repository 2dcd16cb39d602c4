// Package idl is the caching, transactional client layer spec.md calls
// the "IDL": it mediates schema-typed access to the row database, serving
// cached reads and staging writes inside one transaction attempt. This
// package is the concrete shape of the "expected IDL interface" table in
// spec.md §6 — everything upstream of it (internal/ctl) only depends on
// the Client/Txn interfaces, never on a specific backend.
package idl

import (
	"context"

	"github.com/google/uuid"

	"github.com/rowctl/rowctl/internal/atom"
)

// Row is an opaque handle to one cached row, naming its table and stable
// uuid. It carries no data itself; all reads go through Client.Read.
type Row struct {
	Table string
	UUID  uuid.UUID
}

// CommitOutcome is the result of Txn.Commit.
type CommitOutcome int

const (
	// CommitOK means the transaction's writes are now durable.
	CommitOK CommitOutcome = iota
	// CommitRetry means the commit lost an optimistic-concurrency race;
	// the driver must discard the attempt and run it again from scratch
	// (spec.md §5, the `try_again` control flow).
	CommitRetry
	// CommitError means the commit failed for a reason a retry cannot
	// fix; the driver treats this as an Environment-kind fatal error.
	CommitError
)

// Client is the read side of the IDL: table/column declaration during the
// pre-pass, and cached row iteration/lookup during the run pass.
type Client interface {
	// Declare registers that some command's pre-pass will need the given
	// table and columns, so Refresh knows what to populate. Declaring the
	// same table/columns more than once is harmless (spec.md invariant 5).
	Declare(table string, columns ...string)

	// Refresh populates (or re-populates, after a retry) the cache from
	// every table/column any command declared.
	Refresh(ctx context.Context) error

	// Rows returns a stable snapshot of every cached row of table, in the
	// IDL's iteration order (the Go-idiomatic form of spec.md's
	// first_row/next_row pair).
	Rows(table string) []Row

	// RowForUUID looks a row up directly by uuid within table's cache.
	RowForUUID(table string, id uuid.UUID) (Row, bool)

	// Read returns the current in-transaction datum for row's column,
	// overlaid with any pending write from the open transaction.
	Read(row Row, column string) (atom.Datum, error)

	// IsMutable reports whether column may be written on row; false for
	// schema-read-only columns.
	IsMutable(row Row, column string) bool

	// Begin opens a new transaction attempt.
	Begin(ctx context.Context) (Txn, error)

	// Close releases any resources the client holds (connections, etc).
	Close() error
}

// Txn is the write side of the IDL, scoped to one transaction attempt.
type Txn interface {
	// Verify marks column on row as participating in this transaction's
	// optimistic-concurrency check.
	Verify(row Row, column string) error

	// Write stages column on row to become datum on commit.
	Write(row Row, column string, datum atom.Datum) error

	// Insert stages a new row of table, with a caller-supplied uuid if
	// non-nil, otherwise a fresh provisional one. The returned Row's
	// UUID is provisional until Commit succeeds.
	Insert(table string, uuid_ *uuid.UUID) (Row, error)

	// Delete stages row for deletion.
	Delete(row Row) error

	// Commit attempts to make all staged writes durable.
	Commit(ctx context.Context) (CommitOutcome, error)

	// Rollback discards every staged write without affecting the
	// underlying store.
	Rollback(ctx context.Context) error

	// InsertedUUID maps a provisional uuid returned by Insert to its
	// committed uuid. Only valid to call after a CommitOK.
	InsertedUUID(provisional uuid.UUID) (uuid.UUID, bool)
}
