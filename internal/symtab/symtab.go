// Package symtab implements the forward-referenced row identity table
// (spec.md §4.D, glossary "Symbol"): user-chosen `@name` bindings scoped
// to a single transaction attempt.
package symtab

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Symbol is one `@name` binding. UUID is assigned lazily: `create` gives
// it a provisional uuid immediately, `get --id` copies the located row's
// uuid once resolved.
type Symbol struct {
	Name      string
	UUID      uuid.UUID
	Created   bool
	StrongRef bool
}

// Table is attempt-scoped: the execution driver (internal/ctl/driver.go)
// creates a fresh Table at the start of every transaction attempt so that
// a `try_again` retry starts symbol resolution from scratch, per
// spec.md §5 and DESIGN NOTES "Forward-referenced row identities".
type Table struct {
	symbols map[string]*Symbol
}

func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Lookup returns the symbol bound to name, if any.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// Create returns the symbol bound to name, creating it if absent, and sets
// its Created flag when markCreated is true. The second result tells the
// caller whether the symbol already existed before this call (used by
// `get --id` to detect a forward reference, per spec.md §4.D). It is fatal
// to call Create on a name not starting with "@", and fatal to create
// (markCreated) a symbol whose Created flag is already true (invariant 3
// in spec.md §3).
func Create(t *Table, name string, markCreated bool) (*Symbol, bool, error) {
	if !strings.HasPrefix(name, "@") {
		return nil, false, fmt.Errorf("symbol name %q must start with @", name)
	}

	existing, existed := t.symbols[name]
	if existed {
		if markCreated {
			if existing.Created {
				return nil, false, fmt.Errorf("symbol %s was already used to create or fetch a row", name)
			}
			existing.Created = true
		}
		return existing, existed, nil
	}

	s := &Symbol{Name: name, Created: markCreated}
	t.symbols[name] = s
	return s, existed, nil
}

// SetUUID binds a uuid to an already-created symbol.
func (s *Symbol) SetUUID(id uuid.UUID) { s.UUID = id }

// MarkStrong suppresses "unreferenced symbol" diagnostics an embedding may
// emit for symbols that were only used transiently.
func (s *Symbol) MarkStrong() { s.StrongRef = true }
