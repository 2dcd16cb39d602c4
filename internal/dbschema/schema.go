// Package dbschema holds the caller-supplied, process-lifetime-immutable
// schema descriptors from spec.md §3: TableClass, CtlTableClass,
// RowIdDescriptor and CmdShowTable. Grounded on the teacher's
// pkg/schema/schema.go map-of-structs shape, generalized from a Postgres
// DDL snapshot to a row-database table/column declaration.
package dbschema

import "github.com/rowctl/rowctl/internal/atom"

// ColumnType is a column's structural type: scalar (ValueKind unset,
// Max==1), set (ValueKind unset, Max>1 or Max==0 for unbounded) or map
// (ValueKind set).
type ColumnType struct {
	KeyKind   atom.Kind
	ValueKind *atom.Kind // nil for scalar/set columns

	Min int
	Max int // 0 means unbounded

	// KeyRefTable / ValueRefTable name the TableClass a uuid-kind key or
	// value refers to, or "" if the kind isn't KindUUID / there's no
	// schema-declared reference.
	KeyRefTable   string
	ValueRefTable string
}

func (t ColumnType) IsMap() bool    { return t.ValueKind != nil }
func (t ColumnType) IsScalar() bool { return !t.IsMap() && t.Max == 1 }
func (t ColumnType) IsSet() bool    { return !t.IsMap() && t.Max != 1 }

// Unbounded returns a copy of t with Max widened to unbounded, used by the
// evaluator (spec.md §4.E) when comparing a row's datum against a
// user-supplied literal of arbitrary cardinality.
func (t ColumnType) Unbounded() ColumnType {
	t.Max = 0
	return t
}

// WithCardinality returns a copy of t with Min/Max overridden, used by
// `add` (n_min=1, n_max=∞) per spec.md §4.F.
func (t ColumnType) WithCardinality(min, max int) ColumnType {
	t.Min, t.Max = min, max
	return t
}

// InBounds reports whether n elements satisfy [Min, Max] (Max==0 means
// unbounded).
func (t ColumnType) InBounds(n int) bool {
	if n < t.Min {
		return false
	}
	if t.Max != 0 && n > t.Max {
		return false
	}
	return true
}

// Column is one column of a TableClass.
type Column struct {
	Name     string
	Type     ColumnType
	ReadOnly bool
}

// TableClass is one table's schema: its name and columns. IsRoot marks a
// table whose rows persist even when unreferenced (spec.md glossary).
type TableClass struct {
	Name    string
	Columns []Column
	IsRoot  bool
}

func (t *TableClass) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

func (t *TableClass) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// RowIdDescriptor is one schema-declared way to name a row of some table
// by a string on a (possibly different) referrer table (spec.md §4.C,
// glossary "Row-id path").
type RowIdDescriptor struct {
	Table       string
	NameColumn  string // "" means: record token must be literal "."
	UUIDColumn  string // "" means the referrer row IS the target
}

// CtlTableClass pairs a TableClass with its row-id resolution paths.
type CtlTableClass struct {
	Class   TableClass
	RowIDs  []RowIdDescriptor
}

// WrefTable describes a weak back-reference table for `show` (spec.md
// §4.H step 4).
type WrefTable struct {
	Table      string
	NameColumn string
	WrefColumn string
}

// CmdShowTable configures how `show` walks one table (spec.md §4.H). The
// first entry in a Schema's ShowTables defines the root of `show`.
type CmdShowTable struct {
	Table      string
	NameColumn string
	Columns    []string
	WrefTable  *WrefTable
}

// Schema is the complete, immutable bundle of descriptors a caller passes
// to ctl.Init (spec.md §4.J): tables[] and cmd_show_tables[].
type Schema struct {
	Version string `json:"schemaVersion" yaml:"schemaVersion"`
	Tables  []CtlTableClass
	ShowTables []CmdShowTable
}

func (s *Schema) Table(name string) *CtlTableClass {
	for i := range s.Tables {
		if s.Tables[i].Class.Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

func (s *Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Class.Name
	}
	return names
}

func (s *Schema) ShowTable(name string) *CmdShowTable {
	for i := range s.ShowTables {
		if s.ShowTables[i].Table == name {
			return &s.ShowTables[i]
		}
	}
	return nil
}
