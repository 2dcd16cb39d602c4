package ctl

import (
	"github.com/google/uuid"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

// applyAssignment implements the COL[:KEY]=VALUE grammar shared by `set`
// and `create` (spec.md §4.F): parses arg against table, type-checks the
// value against the resolved column's declared type, and stages the
// write via ctx.Txn.
func applyAssignment(ctx *CtlContext, table *dbschema.CtlTableClass, row idl.Row, arg string) error {
	parsed, err := parseColumnKeyValue(arg, table, nil, true)
	if err != nil {
		return err
	}
	col := table.Class.Column(parsed.Column)
	if col.ReadOnly {
		return &ReadOnlyColumnError{Table: table.Class.Name, Column: col.Name}
	}

	if parsed.Key != nil {
		if !col.Type.IsMap() {
			return &TypeError{Msg: "cannot specify key to " + col.Name + " for non-map column"}
		}
		valDatum, err := parseDatumLiteral(parsed.Value, dbschema.ColumnType{KeyKind: *col.Type.ValueKind}, ctx.Symtab)
		if err != nil {
			return err
		}
		if valDatum.Len() != 1 {
			return &TypeError{Msg: "expected exactly one value for key-qualified assignment to " + col.Name}
		}
		existing, err := ctx.IDL.Read(row, col.Name)
		if err != nil {
			return err
		}
		overlay := atom.NewMap([]atom.Atom{*parsed.Key}, []atom.Atom{valDatum.Keys[0]})
		return ctx.Txn.Write(row, col.Name, existing.Union(overlay))
	}

	datum, err := parseDatumLiteral(parsed.Value, col.Type, ctx.Symtab)
	if err != nil {
		return err
	}
	if !col.Type.InBounds(datum.Len()) {
		return &CardinalityError{Table: table.Class.Name, Column: col.Name, N: datum.Len(), Min: col.Type.Min, Max: col.Type.Max}
	}
	return ctx.Txn.Write(row, col.Name, datum)
}

func newSetCommand() *CtlCommand {
	return &CtlCommand{
		Name: "set", MinArgs: 2, MaxArgs: -1, Syntax: "set TABLE RECORD COL[:KEY]=VALUE...",
		OptionsSpec: "--if-exists", Mode: ModeRW,
		Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			row, found, err := getRow(ctx, table, inv.Args[1], !inv.hasOption("if-exists"))
			if err != nil {
				return err
			}
			if !found {
				return nil
			}
			for _, arg := range inv.Args[2:] {
				if err := applyAssignment(ctx, table, row, arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAddCommand() *CtlCommand {
	return &CtlCommand{
		Name: "add", MinArgs: 3, MaxArgs: -1, Syntax: "add TABLE RECORD COLUMN VALUE...",
		Mode: ModeRW, Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			row, _, err := getRow(ctx, table, inv.Args[1], true)
			if err != nil {
				return err
			}
			colName, err := resolveColumnName(table, inv.Args[2])
			if err != nil {
				return err
			}
			col := table.Class.Column(colName)

			existing, err := ctx.IDL.Read(row, colName)
			if err != nil {
				return err
			}
			result := existing
			for _, value := range inv.Args[3:] {
				parsed, err := parseDatumLiteral(value, col.Type.WithCardinality(1, 0), ctx.Symtab)
				if err != nil {
					return err
				}
				result = result.Union(parsed)
			}
			if !col.Type.InBounds(result.Len()) {
				return &CardinalityError{Table: table.Class.Name, Column: col.Name, N: result.Len(), Min: col.Type.Min, Max: col.Type.Max}
			}
			return ctx.Txn.Write(row, colName, result)
		},
	}
}

func newRemoveCommand() *CtlCommand {
	return &CtlCommand{
		Name: "remove", MinArgs: 3, MaxArgs: -1, Syntax: "remove TABLE RECORD COLUMN VALUE...",
		Mode: ModeRW, Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			row, _, err := getRow(ctx, table, inv.Args[1], true)
			if err != nil {
				return err
			}
			colName, err := resolveColumnName(table, inv.Args[2])
			if err != nil {
				return err
			}
			col := table.Class.Column(colName)

			result, err := ctx.IDL.Read(row, colName)
			if err != nil {
				return err
			}
			for _, value := range inv.Args[3:] {
				parsed, err := parseDatumLiteral(value, col.Type, ctx.Symtab)
				if err != nil {
					if !col.Type.IsMap() {
						return err
					}
					keys, kerr := parseKeySetLiteral(value, col.Type.KeyKind, ctx.Symtab)
					if kerr != nil {
						return err
					}
					parsed = keys
				}
				result = result.Subtract(parsed)
			}
			if !col.Type.InBounds(result.Len()) {
				return &CardinalityError{Table: table.Class.Name, Column: col.Name, N: result.Len(), Min: col.Type.Min, Max: col.Type.Max}
			}
			return ctx.Txn.Write(row, colName, result)
		},
	}
}

func newClearCommand() *CtlCommand {
	return &CtlCommand{
		Name: "clear", MinArgs: 2, MaxArgs: -1, Syntax: "clear TABLE RECORD COLUMN...",
		Mode: ModeRW, Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			row, _, err := getRow(ctx, table, inv.Args[1], true)
			if err != nil {
				return err
			}
			for _, colArg := range inv.Args[2:] {
				colName, err := resolveColumnName(table, colArg)
				if err != nil {
					return err
				}
				col := table.Class.Column(colName)
				if col.Type.Min > 0 {
					return &CardinalityError{Table: table.Class.Name, Column: col.Name, N: 0, Min: col.Type.Min, Max: col.Type.Max}
				}
				empty := atom.EmptySet()
				if col.Type.IsMap() {
					empty = atom.EmptyMap()
				}
				if err := ctx.Txn.Write(row, colName, empty); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// createScratch is what create's Run stashes for its own Post to pick
// up: the provisional uuid and where its textual representation landed
// in ctx.out, so Post can rewrite it to the committed uuid (spec.md §4.F
// "post (only create) rewrites provisional UUIDs to committed ones").
type createScratch struct {
	provisional       uuid.UUID
	groupIdx, lineIdx int
	sym               symbolBinder
}

type symbolBinder interface{ SetUUID(uuid.UUID) }

func newCreateCommand() *CtlCommand {
	return &CtlCommand{
		Name: "create", MinArgs: 1, MaxArgs: -1, Syntax: "create TABLE COL[:KEY]=VALUE...",
		OptionsSpec: "--id=", Mode: ModeRW, Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}

			var sym symbolBinder
			if symName, ok := inv.Options["id"]; ok {
				s, _, err := symtabCreate(ctx, symName, true)
				if err != nil {
					return err
				}
				sym = s
			}

			if !table.Class.IsRoot && sym == nil {
				ctx.Logger.Info("row will be garbage-collected: not reachable from any root and no --id given", "table", table.Class.Name)
			}

			row, err := ctx.Txn.Insert(table.Class.Name, nil)
			if err != nil {
				return err
			}
			if sym != nil {
				sym.SetUUID(row.UUID)
			}

			for _, arg := range inv.Args[1:] {
				if err := applyAssignment(ctx, table, row, arg); err != nil {
					return err
				}
			}

			ctx.emit(row.UUID.String())
			groupIdx := len(ctx.out) - 1
			lineIdx := len(ctx.out[groupIdx]) - 1
			inv.Scratch = &createScratch{provisional: row.UUID, groupIdx: groupIdx, lineIdx: lineIdx, sym: sym}
			return nil
		},
		Post: func(ctx *CtlContext, inv *Invocation) error {
			scratch, ok := inv.Scratch.(*createScratch)
			if !ok {
				return nil
			}
			final, ok := ctx.Txn.InsertedUUID(scratch.provisional)
			if !ok {
				return nil
			}
			ctx.out[scratch.groupIdx][scratch.lineIdx] = final.String()
			return nil
		},
	}
}

func newDestroyCommand() *CtlCommand {
	return &CtlCommand{
		Name: "destroy", MinArgs: 1, MaxArgs: -1, Syntax: "destroy TABLE [RECORD]...",
		OptionsSpec: "--if-exists,--all", Mode: ModeRW, Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			all := inv.hasOption("all")
			ifExists := inv.hasOption("if-exists")
			if all && len(inv.Args) > 1 {
				return &UsageError{Msg: "--all and explicit records are mutually exclusive"}
			}
			if all && ifExists {
				return &UsageError{Msg: "--all and --if-exists are mutually exclusive"}
			}

			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}

			if all {
				for _, row := range ctx.IDL.Rows(table.Class.Name) {
					if err := ctx.Txn.Delete(row); err != nil {
						return err
					}
				}
				return nil
			}

			for _, recordID := range inv.Args[1:] {
				row, found, err := getRow(ctx, table, recordID, !ifExists)
				if err != nil {
					return err
				}
				if found {
					if err := ctx.Txn.Delete(row); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func declareAllColumns(ctx *CtlContext, inv *Invocation) error {
	table, err := resolveTable(ctx.Schema, inv.Args[0])
	if err != nil {
		return err
	}
	declareForTable(ctx, table)
	return nil
}

func resolveColumnName(table *dbschema.CtlTableClass, tok string) (string, error) {
	parsed, err := parseColumnKeyValue(tok, table, nil, false)
	if err != nil {
		return "", err
	}
	return parsed.Column, nil
}
