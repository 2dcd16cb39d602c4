package ctl

import (
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/match"
)

// resolveTable fuzzy-matches name against the schema's table names with
// the same matcher column names use (spec.md §4.A applies to both).
func resolveTable(schema *dbschema.Schema, name string) (*dbschema.CtlTableClass, error) {
	best, err := match.Best(schema.TableNames(), name)
	if err != nil {
		if amb, ok := err.(*match.ErrAmbiguous); ok {
			return nil, &AmbiguousNameError{Kind: "table", Query: amb.Query, Candidates: amb.Candidates}
		}
		return nil, &UnknownTableError{Table: name}
	}
	return schema.Table(best), nil
}

// declareForTable registers table's own columns plus every column a
// row-id path might dereference through, so a caching IDL's Refresh
// fetches everything getRow (resolve.go) could need this attempt.
func declareForTable(ctx *CtlContext, table *dbschema.CtlTableClass) {
	ctx.IDL.Declare(table.Class.Name, table.Class.ColumnNames()...)
	for _, rid := range table.RowIDs {
		cols := []string{}
		if rid.NameColumn != "" {
			cols = append(cols, rid.NameColumn)
		}
		if rid.UUIDColumn != "" {
			cols = append(cols, rid.UUIDColumn)
		}
		ctx.IDL.Declare(rid.Table, cols...)
	}
}
