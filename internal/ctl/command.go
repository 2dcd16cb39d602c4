package ctl

import (
	"strconv"

	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
	"github.com/rowctl/rowctl/internal/symtab"
)

// Mode marks whether a command ever stages a write, per spec.md §4.F.
type Mode int

const (
	ModeRO Mode = iota
	ModeRW
)

// CtlContext is the per-attempt state threaded through pre/run/post, the
// "immutable Interpreter value... passed into parsing and execution" the
// DESIGN NOTES ask for in place of global mutable registries. Schema and
// Logger are set once at construction; Txn and Symtab are rebound at the
// start of every transaction attempt by the driver.
type CtlContext struct {
	Schema *dbschema.Schema
	IDL    idl.Client
	Logger Logger

	Oneline bool
	NoWait  bool

	Txn      idl.Txn
	Symtab   *symtab.Table
	TryAgain bool

	// out groups emitted lines by command, so render.go's --oneline mode
	// can collapse each command's own output to one line independently.
	out [][]string
}

// emit appends line to the currently-running command's output group.
func (c *CtlContext) emit(line string) {
	if len(c.out) == 0 {
		c.out = append(c.out, nil)
	}
	last := len(c.out) - 1
	c.out[last] = append(c.out[last], line)
}

// beginCommandOutput starts a new output group for the next command.
func (c *CtlContext) beginCommandOutput() { c.out = append(c.out, nil) }

func (c *CtlContext) resetAttempt() {
	c.Symtab = symtab.New()
	c.TryAgain = false
	c.out = nil
}

// Invocation is one parsed command in a stream: its registered verb, its
// positional arguments, its per-command options, and scratch state a
// command's run phase stashes for its own post phase to pick back up
// (only `create` uses Scratch today, for the provisional-uuid rewrite).
type Invocation struct {
	Command *CtlCommand
	Args    []string
	Options map[string]string
	Scratch any
}

func (inv *Invocation) hasOption(name string) bool {
	_, ok := inv.Options[name]
	return ok
}

// CtlCommand is the registration tuple spec.md §4.F describes for each
// verb: name, arity bounds, syntax text (used by bash-completion),
// options_spec, mode, and the pre/run/post triple.
type CtlCommand struct {
	Name        string
	MinArgs     int
	MaxArgs     int // -1 means unbounded
	Syntax      string
	OptionsSpec string
	Mode        Mode

	Pre  func(ctx *CtlContext, inv *Invocation) error
	Run  func(ctx *CtlContext, inv *Invocation) error
	Post func(ctx *CtlContext, inv *Invocation) error
}

func (c *CtlCommand) checkArity(n int) error {
	if n < c.MinArgs || (c.MaxArgs >= 0 && n > c.MaxArgs) {
		return &UsageError{Msg: "\"" + c.Name + "\" requires " + arityText(c.MinArgs, c.MaxArgs) + ", syntax: " + c.Syntax}
	}
	return nil
}

func arityText(min, max int) string {
	switch {
	case max < 0:
		return "at least " + strconv.Itoa(min) + " argument(s)"
	case min == max:
		return "exactly " + strconv.Itoa(min) + " argument(s)"
	default:
		return "between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " argument(s)"
	}
}
