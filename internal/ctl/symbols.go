package ctl

import "github.com/rowctl/rowctl/internal/symtab"

// symtabCreate wraps symtab.Create against the current attempt's symbol
// table, translating its fatal conditions into the ctl package's typed
// errors.
func symtabCreate(ctx *CtlContext, name string, markCreated bool) (*symtab.Symbol, bool, error) {
	sym, existed, err := symtab.Create(ctx.Symtab, name, markCreated)
	if err != nil {
		return nil, false, &SymbolRedefinedError{Name: name}
	}
	return sym, existed, nil
}
