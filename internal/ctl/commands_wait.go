package ctl

func newWaitUntilCommand() *CtlCommand {
	return &CtlCommand{
		Name: "wait-until", MinArgs: 2, MaxArgs: -1, Syntax: "wait-until TABLE RECORD [COND]...",
		Mode: ModeRO, Pre: declareAllColumns,
		Run: func(ctx *CtlContext, inv *Invocation) error {
			table, err := resolveTable(ctx.Schema, inv.Args[0])
			if err != nil {
				return err
			}
			row, found, err := getRow(ctx, table, inv.Args[1], false)
			if err != nil {
				return err
			}
			if !found {
				ctx.TryAgain = true
				return nil
			}

			conds, err := parseConditions(ctx, inv.Args[2:], table)
			if err != nil {
				return err
			}
			ok, err := rowMatchesAll(ctx, row, conds)
			if err != nil {
				return err
			}
			if !ok {
				ctx.TryAgain = true
			}
			return nil
		},
	}
}
