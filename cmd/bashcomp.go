// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowctl/rowctl/cmd/flags"
	"github.com/rowctl/rowctl/internal/ctl"
	"github.com/rowctl/rowctl/internal/dbschema"
)

var bashCompCmd = &cobra.Command{
	Use:    "bash-completion",
	Short:  "print one annotated-argument line per registered command",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := &dbschema.Schema{}
		if path := flags.SchemaFile(); path != "" {
			loaded, err := dbschema.LoadFile(path)
			if err != nil {
				return err
			}
			schema = loaded
		}
		it := ctl.Init(schema)
		printBashCompletion(it)
		return nil
	},
}

// printBashCompletion prints, for every registered command sorted by
// name, a line `[--opt]… ,name, <annotated-args>`
// (spec.md §6).
func printBashCompletion(it *ctl.Interpreter) {
	names := append([]string{}, it.Order...)
	sort.Strings(names)
	for _, name := range names {
		c := it.Commands[name]
		fmt.Println(formatCompletionLine(c))
	}
}

func formatCompletionLine(c *ctl.CtlCommand) string {
	var b strings.Builder
	for _, opt := range optionNames(c.OptionsSpec) {
		b.WriteString("[--")
		b.WriteString(opt)
		b.WriteString("]… ")
	}
	b.WriteString(",")
	b.WriteString(c.Name)
	b.WriteString(", ")

	annotated := annotateArgs(c.Syntax, c.Name)
	b.WriteString(strings.Join(annotated, " "))
	return b.String()
}

func optionNames(spec string) []string {
	if spec == "" {
		return nil
	}
	var names []string
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "--")
		names = append(names, strings.TrimSuffix(part, "="))
	}
	return names
}

// annotateArgs scans syntax token by token, front to back (its first
// whitespace-separated token is the verb itself and is dropped), and
// annotates each remaining
// token with a leading sigil: "!" required, "?" optional, "*"
// zero-or-more, "+" one-or-more, tracking "[ ]" nesting and a trailing
// "..." per token (spec.md §6).
func annotateArgs(syntax, verb string) []string {
	fields := strings.Fields(syntax)
	if len(fields) > 0 && fields[0] == verb {
		fields = fields[1:]
	}

	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if tok == "..." {
			out = append(out, "*...")
			continue
		}

		repeated := strings.HasSuffix(tok, "...")
		tok = strings.TrimSuffix(tok, "...")

		optional := false
		if strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]") {
			// Track "[ ]" nesting scanning forward; the outer brackets
			// wrap the whole token only if depth first returns to 0 at
			// the final character, so "[COLUMN[:KEY]]" strips just the
			// outermost pair and keeps the inner "[:KEY]" intact.
			depth := 0
			for i := 0; i < len(tok); i++ {
				switch tok[i] {
				case '[':
					depth++
				case ']':
					depth--
					if depth == 0 {
						optional = i == len(tok)-1
					}
				}
			}
			if optional {
				tok = tok[1 : len(tok)-1]
			}
		}

		var sigil string
		switch {
		case optional && repeated:
			sigil = "*"
		case optional:
			sigil = "?"
		case repeated:
			sigil = "+"
		default:
			sigil = "!"
		}
		out = append(out, sigil+tok)
	}
	return out
}
