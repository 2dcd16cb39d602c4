package ctl

import (
	"github.com/google/uuid"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

// getRow implements spec.md §4.C: resolve recordID against table either
// as a literal uuid or via one of table's schema-declared row-id paths,
// tried in declaration order.
func getRow(ctx *CtlContext, table *dbschema.CtlTableClass, recordID string, mustExist bool) (idl.Row, bool, error) {
	if id, err := uuid.Parse(recordID); err == nil {
		if row, ok := ctx.IDL.RowForUUID(table.Class.Name, id); ok {
			return row, true, nil
		}
	}

	for _, rid := range table.RowIDs {
		row, ok, err := getRowByID(ctx, table, rid, recordID)
		if err != nil {
			return idl.Row{}, false, err
		}
		if ok {
			return row, true, nil
		}
	}

	if mustExist {
		return idl.Row{}, false, &NoSuchRowError{Table: table.Class.Name, RecordID: recordID}
	}
	return idl.Row{}, false, nil
}

func getRowByID(ctx *CtlContext, table *dbschema.CtlTableClass, rid dbschema.RowIdDescriptor, recordID string) (idl.Row, bool, error) {
	if rid.NameColumn == "" {
		if recordID != "." {
			return idl.Row{}, false, nil
		}
		rows := ctx.IDL.Rows(rid.Table)
		if len(rows) != 1 {
			return idl.Row{}, false, nil
		}
		return dereference(ctx, table, rid, rows[0])
	}

	var matches []idl.Row
	for _, row := range ctx.IDL.Rows(rid.Table) {
		datum, err := ctx.IDL.Read(row, rid.NameColumn)
		if err != nil {
			continue
		}
		if isNameMatch(datum, recordID) {
			matches = append(matches, row)
		}
	}

	switch len(matches) {
	case 0:
		return idl.Row{}, false, nil
	case 1:
		return dereference(ctx, table, rid, matches[0])
	default:
		return idl.Row{}, false, &MultipleRowsError{Table: rid.Table, RecordID: recordID}
	}
}

func isNameMatch(d atom.Datum, want string) bool {
	return !d.IsMap() && d.Len() == 1 && d.Keys[0].Kind == atom.KindString && d.Keys[0].Str == want
}

// dereference resolves a referrer row found by getRowByID into the
// actual target row, following rid.UUIDColumn when set, per spec.md
// §4.C's "the referrer IS the target" / dereference rule.
func dereference(ctx *CtlContext, table *dbschema.CtlTableClass, rid dbschema.RowIdDescriptor, referrer idl.Row) (idl.Row, bool, error) {
	if rid.UUIDColumn == "" {
		return referrer, true, nil
	}
	datum, err := ctx.IDL.Read(referrer, rid.UUIDColumn)
	if err != nil {
		return idl.Row{}, false, nil
	}
	if datum.IsMap() || datum.Len() != 1 || datum.Keys[0].Kind != atom.KindUUID {
		return idl.Row{}, false, nil
	}
	row, ok := ctx.IDL.RowForUUID(table.Class.Name, datum.Keys[0].UUID)
	return row, ok, nil
}
