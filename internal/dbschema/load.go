package dbschema

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/oapi-codegen/nullable"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"sigs.k8s.io/yaml"

	"github.com/rowctl/rowctl/internal/atom"
)

// BinaryVersion is the schemaVersion this build understands. It follows
// the teacher's pgroll/state compatibility check (pkg/state/version.go),
// generalized from "pgroll binary vs. pgroll_version table" to "this
// binary vs. the schema bundle's declared version" — the same role
// OVSDB's schema "version" field plays against a client library.
const BinaryVersion = "v1.0.0"

// wireSchema is the on-disk (YAML or JSON) representation a caller hands
// to Load. It is deliberately flatter than Schema/TableClass so it reads
// naturally as a config file; Load converts it into the runtime
// descriptors in schema.go.
type wireSchema struct {
	SchemaVersion string        `json:"schemaVersion" yaml:"schemaVersion"`
	Tables        []wireTable   `json:"tables" yaml:"tables"`
	ShowTables    []wireShowTbl `json:"showTables,omitempty" yaml:"showTables,omitempty"`
}

type wireTable struct {
	Name    string       `json:"name" yaml:"name"`
	IsRoot  bool         `json:"isRoot,omitempty" yaml:"isRoot,omitempty"`
	Columns []wireColumn `json:"columns" yaml:"columns"`
	RowIDs  []wireRowID  `json:"rowIds,omitempty" yaml:"rowIds,omitempty"`
}

type wireColumn struct {
	Name     string                    `json:"name" yaml:"name"`
	Key      string                    `json:"key" yaml:"key"`
	Value    nullable.Nullable[string] `json:"value,omitempty" yaml:"value,omitempty"`
	Min      int                       `json:"min" yaml:"min"`
	Max      int                       `json:"max" yaml:"max"`
	KeyRef   string                    `json:"keyRef,omitempty" yaml:"keyRef,omitempty"`
	ValueRef string                    `json:"valueRef,omitempty" yaml:"valueRef,omitempty"`
	ReadOnly bool                      `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

type wireRowID struct {
	Table      string `json:"table" yaml:"table"`
	NameColumn string `json:"nameColumn,omitempty" yaml:"nameColumn,omitempty"`
	UUIDColumn string `json:"uuidColumn,omitempty" yaml:"uuidColumn,omitempty"`
}

type wireShowTbl struct {
	Table      string    `json:"table" yaml:"table"`
	NameColumn string    `json:"nameColumn,omitempty" yaml:"nameColumn,omitempty"`
	Columns    []string  `json:"columns,omitempty" yaml:"columns,omitempty"`
	Wref       *wireWref `json:"wref,omitempty" yaml:"wref,omitempty"`
}

type wireWref struct {
	Table      string `json:"table" yaml:"table"`
	NameColumn string `json:"nameColumn" yaml:"nameColumn"`
	WrefColumn string `json:"wrefColumn" yaml:"wrefColumn"`
}

// bundleJSONSchema validates the shape of a schema bundle file before it
// is unmarshalled into Go structs, the same defense-in-depth the teacher
// applied to migration files (its now-removed internal/jsonschema check).
const bundleJSONSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schemaVersion", "tables"],
  "properties": {
    "schemaVersion": {"type": "string"},
    "tables": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "columns"],
        "properties": {
          "name": {"type": "string"},
          "isRoot": {"type": "boolean"},
          "columns": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "key", "min", "max"],
              "properties": {
                "name": {"type": "string"},
                "key": {"type": "string", "enum": ["string", "integer", "boolean", "uuid"]},
                "value": {"type": "string", "enum": ["string", "integer", "boolean", "uuid"]},
                "min": {"type": "integer", "minimum": 0},
                "max": {"type": "integer", "minimum": 0},
                "keyRef": {"type": "string"},
                "valueRef": {"type": "string"},
                "readOnly": {"type": "boolean"}
              }
            }
          },
          "rowIds": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["table"],
              "properties": {
                "table": {"type": "string"},
                "nameColumn": {"type": "string"},
                "uuidColumn": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "showTables": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["table"],
        "properties": {
          "table": {"type": "string"},
          "nameColumn": {"type": "string"},
          "columns": {"type": "array", "items": {"type": "string"}},
          "wref": {
            "type": "object",
            "required": ["table", "nameColumn", "wrefColumn"],
            "properties": {
              "table": {"type": "string"},
              "nameColumn": {"type": "string"},
              "wrefColumn": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

func compiledBundleSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("bundle.json", bytes.NewReader([]byte(bundleJSONSchema))); err != nil {
		return nil, err
	}
	return c.Compile("bundle.json")
}

// Load reads a YAML or JSON schema bundle from r, validates it against
// bundleJSONSchema, checks its schemaVersion for compatibility with
// BinaryVersion, and converts it into a Schema.
func Load(r io.Reader) (*Schema, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading schema bundle: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("schema bundle is not valid YAML/JSON: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(jsonBytes, &generic); err != nil {
		return nil, fmt.Errorf("schema bundle: %w", err)
	}

	sch, err := compiledBundleSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling bundle json schema: %w", err)
	}
	if err := sch.Validate(generic); err != nil {
		return nil, fmt.Errorf("schema bundle failed validation: %w", err)
	}

	var w wireSchema
	if err := yaml.Unmarshal(jsonBytes, &w); err != nil {
		return nil, fmt.Errorf("decoding schema bundle: %w", err)
	}

	if err := checkVersion(w.SchemaVersion); err != nil {
		return nil, err
	}

	return convert(&w)
}

// LoadFile is a convenience wrapper around Load for a path on disk.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func checkVersion(bundleVersion string) error {
	if bundleVersion == "" {
		return fmt.Errorf("schema bundle: schemaVersion is required")
	}
	bv, ours := ensureVPrefix(bundleVersion), ensureVPrefix(BinaryVersion)
	if !semver.IsValid(bv) || !semver.IsValid(ours) {
		// Non-semver versions (e.g. "development") are not compared.
		return nil
	}
	if semver.Compare(bv, ours) > 0 {
		return fmt.Errorf("schema bundle version %s is newer than this binary understands (%s)", bundleVersion, BinaryVersion)
	}
	return nil
}

func ensureVPrefix(v string) string {
	if v == "" || v[0] == 'v' {
		return v
	}
	return "v" + v
}

func kindFromWire(s string) (atom.Kind, error) {
	switch s {
	case "string":
		return atom.KindString, nil
	case "integer":
		return atom.KindInteger, nil
	case "boolean":
		return atom.KindBool, nil
	case "uuid":
		return atom.KindUUID, nil
	default:
		return 0, fmt.Errorf("unknown atomic kind %q", s)
	}
}

func convert(w *wireSchema) (*Schema, error) {
	s := &Schema{Version: w.SchemaVersion}

	for _, wt := range w.Tables {
		tc := TableClass{Name: wt.Name, IsRoot: wt.IsRoot}
		for _, wc := range wt.Columns {
			keyKind, err := kindFromWire(wc.Key)
			if err != nil {
				return nil, fmt.Errorf("table %q column %q: %w", wt.Name, wc.Name, err)
			}
			ct := ColumnType{
				KeyKind:       keyKind,
				Min:           wc.Min,
				Max:           wc.Max,
				KeyRefTable:   wc.KeyRef,
				ValueRefTable: wc.ValueRef,
			}
			if vk, getErr := wc.Value.Get(); getErr == nil && vk != "" {
				vKind, err := kindFromWire(vk)
				if err != nil {
					return nil, fmt.Errorf("table %q column %q: %w", wt.Name, wc.Name, err)
				}
				ct.ValueKind = &vKind
			}
			tc.Columns = append(tc.Columns, Column{Name: wc.Name, Type: ct, ReadOnly: wc.ReadOnly})
		}

		var rowIDs []RowIdDescriptor
		for _, wr := range wt.RowIDs {
			rowIDs = append(rowIDs, RowIdDescriptor{Table: wr.Table, NameColumn: wr.NameColumn, UUIDColumn: wr.UUIDColumn})
		}
		s.Tables = append(s.Tables, CtlTableClass{Class: tc, RowIDs: rowIDs})
	}

	for _, wst := range w.ShowTables {
		st := CmdShowTable{Table: wst.Table, NameColumn: wst.NameColumn, Columns: wst.Columns}
		if wst.Wref != nil {
			st.WrefTable = &WrefTable{Table: wst.Wref.Table, NameColumn: wst.Wref.NameColumn, WrefColumn: wst.Wref.WrefColumn}
		}
		s.ShowTables = append(s.ShowTables, st)
	}

	return s, nil
}
