package ctl

import "strings"

// splitOnDashDash splits argv on bare "--" tokens into segments,
// spec.md §4.G.
func splitOnDashDash(argv []string) [][]string {
	var segments [][]string
	cur := []string{}
	for _, tok := range argv {
		if tok == "--" {
			segments = append(segments, cur)
			cur = []string{}
			continue
		}
		cur = append(cur, tok)
	}
	segments = append(segments, cur)
	return segments
}

type rawOption struct {
	value string
	hasEq bool
}

func parseOptionsSpec(spec string) map[string]bool {
	m := map[string]bool{}
	if spec == "" {
		return m
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "--")
		takesValue := strings.HasSuffix(part, "=")
		m[strings.TrimSuffix(part, "=")] = takesValue
	}
	return m
}

// ParseStream implements spec.md §4.G: split argv on "--", and for each
// segment consume its leading option tokens before resolving the verb
// and its positional arguments. localOptions are merged into the first
// command's option map (stream-wide options).
func ParseStream(it *Interpreter, argv []string, localOptions map[string]string) ([]*Invocation, error) {
	segments := splitOnDashDash(argv)
	var invocations []*Invocation

	for _, seg := range segments {
		i := 0
		raw := map[string]rawOption{}
		for i < len(seg) && strings.HasPrefix(seg[i], "-") {
			tok := strings.TrimPrefix(seg[i], "--")
			name, value, hasEq := strings.Cut(tok, "=")
			if _, dup := raw[name]; dup {
				return nil, &UsageError{Msg: "duplicate option --" + name}
			}
			raw[name] = rawOption{value: value, hasEq: hasEq}
			i++
		}

		if i >= len(seg) {
			if len(seg) == 0 {
				continue
			}
			return nil, &UsageError{Msg: "command segment has options but no command name"}
		}

		verb := seg[i]
		cmd, err := it.lookup(verb)
		if err != nil {
			return nil, err
		}
		i++
		args := seg[i:]

		if err := cmd.checkArity(len(args)); err != nil {
			if len(args) > 0 && strings.HasPrefix(args[len(args)-1], "-") {
				return nil, &UsageError{Msg: cmd.Name + ": option " + args[len(args)-1] + " appears after the command's arguments; options must precede the verb"}
			}
			return nil, err
		}

		spec := parseOptionsSpec(cmd.OptionsSpec)
		options := map[string]string{}
		for name, r := range raw {
			takesValue, ok := spec[name]
			if !ok {
				return nil, &UsageError{Msg: "\"" + cmd.Name + "\" does not accept option --" + name}
			}
			if takesValue && !r.hasEq {
				return nil, &UsageError{Msg: "option --" + name + " requires a value"}
			}
			if !takesValue && r.hasEq {
				return nil, &UsageError{Msg: "option --" + name + " does not take a value"}
			}
			options[name] = r.value
		}

		invocations = append(invocations, &Invocation{Command: cmd, Args: args, Options: options})
	}

	if len(invocations) > 0 {
		for k, v := range localOptions {
			if _, dup := invocations[0].Options[k]; dup {
				return nil, &UsageError{Msg: "duplicate option --" + k}
			}
			invocations[0].Options[k] = v
		}
	}

	return invocations, nil
}
