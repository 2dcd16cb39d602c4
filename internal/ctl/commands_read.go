package ctl

import (
	"sort"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

func newCommentCommand() *CtlCommand {
	return &CtlCommand{
		Name: "comment", MinArgs: 0, MaxArgs: -1, Syntax: "comment ...", Mode: ModeRO,
		Run: func(ctx *CtlContext, inv *Invocation) error { return nil },
	}
}

func newGetCommand() *CtlCommand {
	return &CtlCommand{
		Name: "get", MinArgs: 2, MaxArgs: -1, Syntax: "get TABLE RECORD [COLUMN[:KEY]]...",
		OptionsSpec: "--if-exists,--id=", Mode: ModeRO,
		Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			if inv.hasOption("if-exists") && inv.hasOption("id") {
				return &UsageError{Msg: "--if-exists and --id are mutually exclusive"}
			}
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			mustExist := !inv.hasOption("if-exists")
			row, found, err := getRow(ctx, table, inv.Args[1], mustExist)
			if err != nil {
				return err
			}
			if !found {
				return nil
			}

			if symName, ok := inv.Options["id"]; ok {
				sym, existed, err := symtabCreate(ctx, symName, true)
				if err != nil {
					return err
				}
				if existed {
					return &ForwardUsedSymbolError{Name: symName}
				}
				sym.SetUUID(row.UUID)
			}

			for _, colArg := range inv.Args[2:] {
				if colArg == "_uuid" || colArg == "-uuid" {
					ctx.emit(row.UUID.String())
					continue
				}
				parsed, err := parseColumnKeyValue(colArg, table, nil, false)
				if err != nil {
					return err
				}
				datum, err := ctx.IDL.Read(row, parsed.Column)
				if err != nil {
					return err
				}
				if parsed.Key != nil {
					v, ok := datum.Lookup(*parsed.Key)
					if !ok {
						ctx.emit("<null>")
						continue
					}
					ctx.emit(v.String())
					continue
				}
				ctx.emit(formatDatum(datum))
			}
			return nil
		},
	}
}

func newListCommand() *CtlCommand {
	return &CtlCommand{
		Name: "list", MinArgs: 1, MaxArgs: -1, Syntax: "list TABLE [RECORD]...",
		OptionsSpec: "--if-exists,--columns=", Mode: ModeRO,
		Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			columnsOpt, hasOpt := inv.Options["columns"]
			columns, err := pickColumns(table, columnsOpt, hasOpt)
			if err != nil {
				return err
			}

			var rows []idl.Row
			if len(inv.Args) > 1 {
				mustExist := !inv.hasOption("if-exists")
				for _, recordID := range inv.Args[1:] {
					row, found, err := getRow(ctx, table, recordID, mustExist)
					if err != nil {
						return err
					}
					if found {
						rows = append(rows, row)
					}
				}
			} else {
				rows = ctx.IDL.Rows(table.Class.Name)
				sort.Slice(rows, func(i, j int) bool { return rows[i].UUID.String() < rows[j].UUID.String() })
			}

			renderTable(ctx, rows, columns)
			return nil
		},
	}
}

func newFindCommand() *CtlCommand {
	return &CtlCommand{
		Name: "find", MinArgs: 1, MaxArgs: -1, Syntax: "find TABLE [COND]...",
		OptionsSpec: "--columns=", Mode: ModeRO,
		Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			columnsOpt, hasOpt := inv.Options["columns"]
			columns, err := pickColumns(table, columnsOpt, hasOpt)
			if err != nil {
				return err
			}

			conds, err := parseConditions(ctx, inv.Args[1:], table)
			if err != nil {
				return err
			}

			all := ctx.IDL.Rows(table.Class.Name)
			sort.Slice(all, func(i, j int) bool { return all[i].UUID.String() < all[j].UUID.String() })

			var matched []idl.Row
			for _, row := range all {
				ok, err := rowMatchesAll(ctx, row, conds)
				if err != nil {
					return err
				}
				if ok {
					matched = append(matched, row)
				}
			}

			renderTable(ctx, matched, columns)
			return nil
		},
	}
}

type condition struct {
	column string
	key    *atom.Atom
	op     string
	lit    atom.Datum
}

func parseConditions(ctx *CtlContext, args []string, table *dbschema.CtlTableClass) ([]condition, error) {
	conds := make([]condition, 0, len(args))
	for _, arg := range args {
		parsed, err := parseColumnKeyValue(arg, table, allOps, true)
		if err != nil {
			return nil, err
		}
		col := table.Class.Column(parsed.Column)
		ct := col.Type.Unbounded()
		if parsed.Key != nil {
			ct = dbschema.ColumnType{KeyKind: *col.Type.ValueKind}.Unbounded()
		}
		lit, err := parseDatumLiteral(parsed.Value, ct, ctx.Symtab)
		if err != nil {
			return nil, err
		}
		conds = append(conds, condition{column: parsed.Column, key: parsed.Key, op: parsed.Op, lit: lit})
	}
	return conds, nil
}

func rowMatchesAll(ctx *CtlContext, row idl.Row, conds []condition) (bool, error) {
	for _, c := range conds {
		datum, err := ctx.IDL.Read(row, c.column)
		if err != nil {
			return false, err
		}
		ok, err := evalColumnCondition(datum, c.key, c.op, c.lit)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
