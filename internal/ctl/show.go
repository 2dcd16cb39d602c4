package ctl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

// showRow implements spec.md §4.H. shown is the path-local cycle guard:
// a table name is marked while its subtree is being rendered and
// unmarked again before returning, so the same table can still appear on
// a sibling branch (spec.md invariant 8 / scenario S6).
func showRow(ctx *CtlContext, tableName string, row idl.Row, level int, shown map[string]bool) {
	sd := ctx.Schema.ShowTable(tableName)
	indent := strings.Repeat(" ", level*4)

	if sd != nil && sd.NameColumn != "" {
		name, err := ctx.IDL.Read(row, sd.NameColumn)
		if err == nil && !name.IsMap() && name.Len() == 1 && name.Keys[0].Kind == atom.KindString {
			ctx.emit(fmt.Sprintf("%s%s %q", indent, tableName, name.Keys[0].Str))
		} else {
			ctx.emit(fmt.Sprintf("%s%s %s", indent, tableName, row.UUID))
		}
	} else {
		ctx.emit(fmt.Sprintf("%s%s %s", indent, tableName, row.UUID))
	}

	if sd == nil || shown[tableName] {
		return
	}
	shown[tableName] = true
	defer delete(shown, tableName)

	tc := ctx.Schema.Table(tableName)
	for _, colName := range sd.Columns {
		col := tc.Class.Column(colName)
		if col == nil {
			continue
		}
		datum, err := ctx.IDL.Read(row, colName)
		if err != nil {
			continue
		}

		switch {
		case !col.Type.IsMap() && col.Type.KeyKind == atom.KindUUID && col.Type.KeyRefTable != "" && ctx.Schema.ShowTable(col.Type.KeyRefTable) != nil:
			for _, k := range datum.Keys {
				if refRow, ok := ctx.IDL.RowForUUID(col.Type.KeyRefTable, k.UUID); ok {
					showRow(ctx, col.Type.KeyRefTable, refRow, level+1, shown)
				}
			}

		case col.Type.IsMap() && *col.Type.ValueKind == atom.KindUUID && col.Type.ValueRefTable != "" && hasNameColumn(ctx.Schema, col.Type.ValueRefTable):
			ctx.emit(fmt.Sprintf("%s%s:", strings.Repeat(" ", (level+1)*4), colName))
			for i, k := range datum.Keys {
				v := datum.Values[i]
				refName := `"<null>"`
				if refRow, ok := ctx.IDL.RowForUUID(col.Type.ValueRefTable, v.UUID); ok {
					refSd := ctx.Schema.ShowTable(col.Type.ValueRefTable)
					if nd, err := ctx.IDL.Read(refRow, refSd.NameColumn); err == nil && !nd.IsMap() && nd.Len() == 1 {
						refName = fmt.Sprintf("%q", nd.Keys[0].Str)
					}
				}
				ctx.emit(fmt.Sprintf("%s%s=%s", strings.Repeat(" ", (level+2)*4), k.String(), refName))
			}

		default:
			if !isDefaultDatum(datum) {
				ctx.emit(fmt.Sprintf("%s%s: %s", strings.Repeat(" ", (level+1)*4), colName, formatDatum(datum)))
			}
		}
	}

	if sd.WrefTable != nil {
		wref := sd.WrefTable
		rows := ctx.IDL.Rows(wref.Table)
		sort.Slice(rows, func(i, j int) bool { return rows[i].UUID.String() < rows[j].UUID.String() })
		for _, wr := range rows {
			datum, err := ctx.IDL.Read(wr, wref.WrefColumn)
			if err != nil || datum.Len() == 0 {
				continue
			}
			if datum.Keys[0].Kind == atom.KindUUID && datum.Keys[0].UUID == row.UUID {
				showRow(ctx, wref.Table, wr, level+1, shown)
			}
		}
	}
}

func hasNameColumn(s *dbschema.Schema, table string) bool {
	sd := s.ShowTable(table)
	return sd != nil && sd.NameColumn != ""
}

func isDefaultDatum(d atom.Datum) bool {
	return d.Len() == 0
}

func formatDatum(d atom.Datum) string {
	parts := make([]string, d.Len())
	for i, k := range d.Keys {
		if d.IsMap() {
			parts[i] = k.String() + "=" + d.Values[i].String()
		} else {
			parts[i] = k.String()
		}
	}
	return strings.Join(parts, ", ")
}

func runShow(ctx *CtlContext, inv *Invocation) error {
	if len(ctx.Schema.ShowTables) == 0 {
		return nil
	}
	root := ctx.Schema.ShowTables[0]
	rows := ctx.IDL.Rows(root.Table)
	sort.Slice(rows, func(i, j int) bool { return rows[i].UUID.String() < rows[j].UUID.String() })
	for _, row := range rows {
		showRow(ctx, root.Table, row, 0, map[string]bool{})
	}
	return nil
}
