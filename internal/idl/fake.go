package idl

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rowctl/rowctl/internal/atom"
)

// Fake is an in-memory Client used by internal/ctl's unit tests, adapted
// from the teacher's no-op db.FakeDB (pkg/db/fake.go) into something that
// actually models the cache/stage/commit/remap cycle spec.md describes,
// since the command layer's correctness hinges on that cycle.
type Fake struct {
	mu       sync.Mutex
	tables   map[string]map[uuid.UUID]map[string]atom.Datum
	declared map[string]map[string]bool
}

func NewFake() *Fake {
	return &Fake{
		tables:   make(map[string]map[uuid.UUID]map[string]atom.Datum),
		declared: make(map[string]map[string]bool),
	}
}

// SeedRow inserts a row directly into the committed store, bypassing a
// transaction; used by tests to set up fixture data.
func (f *Fake) SeedRow(table string, id uuid.UUID, cols map[string]atom.Datum) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[table] == nil {
		f.tables[table] = make(map[uuid.UUID]map[string]atom.Datum)
	}
	f.tables[table][id] = cols
}

func (f *Fake) Declare(table string, columns ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.declared[table] == nil {
		f.declared[table] = make(map[string]bool)
	}
	for _, c := range columns {
		f.declared[table][c] = true
	}
}

func (f *Fake) Refresh(ctx context.Context) error { return nil }

func (f *Fake) Rows(table string) []Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]Row, 0, len(f.tables[table]))
	for id := range f.tables[table] {
		rows = append(rows, Row{Table: table, UUID: id})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UUID.String() < rows[j].UUID.String() })
	return rows
}

func (f *Fake) RowForUUID(table string, id uuid.UUID) (Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[table][id]; ok {
		return Row{Table: table, UUID: id}, true
	}
	return Row{}, false
}

// Read returns row's column from the committed store only. Writes and
// inserts staged in an open fakeTxn are not visible to Read (or to Rows
// and RowForUUID) until that transaction commits.
func (f *Fake) Read(row Row, column string) (atom.Datum, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cols, ok := f.tables[row.Table][row.UUID]
	if !ok {
		return atom.Datum{}, fmt.Errorf("no row %s in table %s", row.UUID, row.Table)
	}
	return cols[column], nil
}

func (f *Fake) IsMutable(row Row, column string) bool { return true }

func (f *Fake) Begin(ctx context.Context) (Txn, error) {
	return &fakeTxn{f: f, writes: map[Row]map[string]atom.Datum{}, deletes: map[Row]bool{}}, nil
}

func (f *Fake) Close() error { return nil }

type fakeTxn struct {
	f            *Fake
	writes       map[Row]map[string]atom.Datum
	deletes      map[Row]bool
	inserts      []Row
	insertedUUID map[uuid.UUID]uuid.UUID
}

func (t *fakeTxn) Verify(row Row, column string) error { return nil }

func (t *fakeTxn) Write(row Row, column string, datum atom.Datum) error {
	if t.writes[row] == nil {
		t.writes[row] = map[string]atom.Datum{}
	}
	t.writes[row][column] = datum
	return nil
}

func (t *fakeTxn) Insert(table string, wantUUID *uuid.UUID) (Row, error) {
	id := uuid.New()
	if wantUUID != nil {
		id = *wantUUID
	}
	row := Row{Table: table, UUID: id}
	t.inserts = append(t.inserts, row)
	if t.writes[row] == nil {
		t.writes[row] = map[string]atom.Datum{}
	}
	return row, nil
}

func (t *fakeTxn) Delete(row Row) error {
	t.deletes[row] = true
	return nil
}

// Commit applies every staged write/insert/delete to the backing store,
// then remaps every provisional insert uuid to a freshly-minted committed
// uuid, rewriting any already-staged reference to it (spec.md invariant 2
// and the DESIGN NOTES remark that the IDL performs that remapping during
// commit, not the command's `post` pass).
func (t *fakeTxn) Commit(ctx context.Context) (CommitOutcome, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()

	t.insertedUUID = make(map[uuid.UUID]uuid.UUID, len(t.inserts))
	remap := make(map[uuid.UUID]uuid.UUID, len(t.inserts))
	for _, row := range t.inserts {
		final := uuid.New()
		remap[row.UUID] = final
		t.insertedUUID[row.UUID] = final
	}

	for row, cols := range t.writes {
		for col, d := range cols {
			t.writes[row][col] = remapDatum(d, remap)
		}
	}

	for row := range t.deletes {
		delete(t.f.tables[row.Table], row.UUID)
	}

	for row, cols := range t.writes {
		finalID := row.UUID
		if f, ok := remap[row.UUID]; ok {
			finalID = f
		}
		if t.f.tables[row.Table] == nil {
			t.f.tables[row.Table] = make(map[uuid.UUID]map[string]atom.Datum)
		}
		existing := t.f.tables[row.Table][finalID]
		if existing == nil {
			existing = make(map[string]atom.Datum)
		}
		for col, d := range cols {
			existing[col] = d
		}
		t.f.tables[row.Table][finalID] = existing
	}

	return CommitOK, nil
}

func remapDatum(d atom.Datum, remap map[uuid.UUID]uuid.UUID) atom.Datum {
	keys := make([]atom.Atom, len(d.Keys))
	for i, k := range d.Keys {
		keys[i] = remapAtom(k, remap)
	}
	if !d.IsMap() {
		return atom.NewSet(keys)
	}
	vals := make([]atom.Atom, len(d.Values))
	for i, v := range d.Values {
		vals[i] = remapAtom(v, remap)
	}
	return atom.NewMap(keys, vals)
}

func remapAtom(a atom.Atom, remap map[uuid.UUID]uuid.UUID) atom.Atom {
	if a.Kind != atom.KindUUID {
		return a
	}
	if final, ok := remap[a.UUID]; ok {
		return atom.UUIDAtom(final)
	}
	return a
}

func (t *fakeTxn) Rollback(ctx context.Context) error { return nil }

func (t *fakeTxn) InsertedUUID(provisional uuid.UUID) (uuid.UUID, bool) {
	id, ok := t.insertedUUID[provisional]
	return id, ok
}
