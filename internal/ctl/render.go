package ctl

import (
	"strings"

	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
	"github.com/rowctl/rowctl/internal/match"
)

// pickColumns resolves the --columns=a,b,c option (or, if absent, every
// column of table prefixed by the _uuid pseudo-column) for list/find.
func pickColumns(table *dbschema.CtlTableClass, columnsOpt string, hasOpt bool) ([]string, error) {
	if !hasOpt || columnsOpt == "" {
		return append([]string{"_uuid"}, table.Class.ColumnNames()...), nil
	}
	requested := strings.Split(columnsOpt, ",")
	cols := make([]string, 0, len(requested))
	names := append([]string{"_uuid"}, table.Class.ColumnNames()...)
	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "_uuid" || r == "-uuid" {
			cols = append(cols, "_uuid")
			continue
		}
		best, err := match.Best(names, r)
		if err != nil {
			if amb, ok := err.(*match.ErrAmbiguous); ok {
				return nil, &AmbiguousNameError{Kind: "column", Owner: table.Class.Name, Query: amb.Query, Candidates: amb.Candidates}
			}
			return nil, &UsageError{Msg: "table " + table.Class.Name + " has no column matching \"" + r + "\""}
		}
		cols = append(cols, best)
	}
	return cols, nil
}

// renderTable prints one line per row, each a space-joined sequence of
// cell values in column order — this interpreter's rendering of
// spec.md §4.F's "table of cells" for `list`/`find`; the source grammar
// doesn't pin an exact cell-separator format, so this follows the
// teacher's plain single-line-per-record CLI output style.
func renderTable(ctx *CtlContext, rows []idl.Row, columns []string) {
	ctx.emit(strings.Join(columns, " "))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if col == "_uuid" {
				cells[i] = row.UUID.String()
				continue
			}
			datum, err := ctx.IDL.Read(row, col)
			if err != nil {
				cells[i] = "<null>"
				continue
			}
			cells[i] = formatDatum(datum)
		}
		ctx.emit(strings.Join(cells, " "))
	}
}

// Render joins every command's output group as the driver's final
// stdout text: one line per line normally, or one line per command with
// embedded "\n" escapes when ctx.Oneline is set (spec.md §4.Q
// supplement, carried from the original tool's --oneline flag).
func Render(ctx *CtlContext) string {
	if !ctx.Oneline {
		var lines []string
		for _, group := range ctx.out {
			lines = append(lines, group...)
		}
		return strings.Join(lines, "\n")
	}

	groupLines := make([]string, 0, len(ctx.out))
	for _, group := range ctx.out {
		groupLines = append(groupLines, strings.Join(group, `\n`))
	}
	return strings.Join(groupLines, "\n")
}
