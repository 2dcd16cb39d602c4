// Package ctl is the command interpreter core: argument parsing, row
// resolution, the type-aware evaluator, the eleven built-in verbs plus
// `show`, the command-stream parser and the transactional execution
// driver. It depends only on internal/atom, internal/dbschema,
// internal/symtab and internal/idl — never on a concrete IDL backend.
package ctl

import (
	"fmt"
	"strings"

	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

// Interpreter is the immutable value spec.md §4.J's init builds, in
// place of the source's global mutable registries (DESIGN NOTES).
type Interpreter struct {
	Schema   *dbschema.Schema
	Commands map[string]*CtlCommand
	Order    []string // registration order; bash-completion lists these names
}

// Init registers the eleven built-in verbs, and `show` if schema carries
// any cmd_show_tables, against schema.
func Init(schema *dbschema.Schema) *Interpreter {
	it := &Interpreter{Schema: schema, Commands: map[string]*CtlCommand{}}
	builtins := []*CtlCommand{
		newCommentCommand(),
		newGetCommand(),
		newListCommand(),
		newFindCommand(),
		newSetCommand(),
		newAddCommand(),
		newRemoveCommand(),
		newClearCommand(),
		newCreateCommand(),
		newDestroyCommand(),
		newWaitUntilCommand(),
	}
	for _, c := range builtins {
		it.mustRegister(c)
	}
	if len(schema.ShowTables) > 0 {
		it.mustRegister(&CtlCommand{
			Name: "show", MinArgs: 0, MaxArgs: 0, Syntax: "show", Mode: ModeRO,
			Run: runShow,
		})
	}
	return it
}

func (it *Interpreter) mustRegister(c *CtlCommand) {
	if err := it.RegisterCommands(c); err != nil {
		panic(err)
	}
}

// RegisterCommands lets an embedding add verbs (spec.md §4.J); each name
// must be unique.
func (it *Interpreter) RegisterCommands(cmds ...*CtlCommand) error {
	for _, c := range cmds {
		if _, exists := it.Commands[c.Name]; exists {
			return fmt.Errorf("command %q already registered", c.Name)
		}
		it.Commands[c.Name] = c
		it.Order = append(it.Order, c.Name)
	}
	return nil
}

// MightWriteToDB returns true if any token in argv equals a registered
// RW verb name — a conservative hint for callers choosing between a
// read-only and read-write session (spec.md §4.J).
func (it *Interpreter) MightWriteToDB(argv []string) bool {
	for _, tok := range argv {
		if c, ok := it.Commands[tok]; ok && c.Mode == ModeRW {
			return true
		}
	}
	return false
}

func (it *Interpreter) newContext(client idl.Client, logger Logger, oneline, noWait bool) *CtlContext {
	return &CtlContext{Schema: it.Schema, IDL: client, Logger: logger, Oneline: oneline, NoWait: noWait}
}

func (it *Interpreter) lookup(verb string) (*CtlCommand, error) {
	c, ok := it.Commands[verb]
	if !ok {
		return nil, &UsageError{Msg: "unknown command " + strings.TrimSpace(verb)}
	}
	return c, nil
}
