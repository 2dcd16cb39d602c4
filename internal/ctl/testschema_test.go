package ctl

import (
	"strings"
	"testing"

	"github.com/rowctl/rowctl/internal/dbschema"
)

// bridgeSchemaYAML is the Bridge/Port schema used throughout this
// package's tests: internal/dbschema/testdata/bridge.yaml plus one extra
// Port column, external_mac. A Bridge has a name and a set of Port
// references; a Port has a name, an optional tag, a string-to-string
// external_ids map and an optional external_mac string.
const bridgeSchemaYAML = `
schemaVersion: "1.0.0"
tables:
  - name: Bridge
    isRoot: true
    columns:
      - name: name
        key: string
        min: 1
        max: 1
      - name: ports
        key: uuid
        keyRef: Port
        min: 0
        max: 0
    rowIds:
      - table: Bridge
        nameColumn: name
  - name: Port
    isRoot: false
    columns:
      - name: name
        key: string
        min: 1
        max: 1
      - name: tag
        key: integer
        min: 0
        max: 1
      - name: external_ids
        key: string
        value: string
        min: 0
        max: 0
      - name: external_mac
        key: string
        min: 0
        max: 1
    rowIds:
      - table: Port
        nameColumn: name
showTables:
  - table: Bridge
    nameColumn: name
    columns: [name, ports]
  - table: Port
    nameColumn: name
    columns: [name, tag, external_ids]
    wref:
      table: Bridge
      nameColumn: name
      wrefColumn: ports
`

func loadBridgeSchema(t *testing.T) *dbschema.Schema {
	t.Helper()
	schema, err := dbschema.Load(strings.NewReader(bridgeSchemaYAML))
	if err != nil {
		t.Fatalf("loading bridge test schema: %v", err)
	}
	return schema
}
