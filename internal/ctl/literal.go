package ctl

import (
	"strings"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/symtab"
)

// splitTopLevel splits s on sep, treating a double-quoted run as opaque
// (commas inside a quoted string never split it).
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	start := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if !inQuote || i == 0 || s[i-1] != '\\' {
				inQuote = !inQuote
			}
		case sep:
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// parseDatumLiteral parses VALUE (the text following a command's `=` or
// a bare element given to `add`/`remove`) into a Datum typed by ct.
// Comma separates multiple elements; within a map element, the first
// unescaped '=' separates key from value, grounded on the ovs-vsctl-style
// comma-and-equals literal this interpreter's command line inherits. A
// uuid-kind element spelled "@name" is resolved against syms instead of
// parsed as a literal uuid (spec.md §4.D's forward-referenced row
// identities: a `create ... --id=@p` in an earlier command, read back by
// a later command's `ports=@p`).
func parseDatumLiteral(value string, ct dbschema.ColumnType, syms *symtab.Table) (atom.Datum, error) {
	if value == "" {
		if ct.IsMap() {
			return atom.EmptyMap(), nil
		}
		return atom.EmptySet(), nil
	}

	elems := splitTopLevel(value, ',')

	if ct.IsMap() {
		keys := make([]atom.Atom, 0, len(elems))
		vals := make([]atom.Atom, 0, len(elems))
		for _, e := range elems {
			kTok, vTok, ok := splitOnceUnquoted(e, '=')
			if !ok {
				return atom.Datum{}, &TypeError{Msg: "expected KEY=VALUE in map literal, got " + e}
			}
			k, err := parseOneAtom(kTok, ct.KeyKind, syms)
			if err != nil {
				return atom.Datum{}, err
			}
			v, err := parseOneAtom(vTok, *ct.ValueKind, syms)
			if err != nil {
				return atom.Datum{}, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		return atom.NewMap(keys, vals), nil
	}

	keys := make([]atom.Atom, 0, len(elems))
	for _, e := range elems {
		k, err := parseOneAtom(e, ct.KeyKind, syms)
		if err != nil {
			return atom.Datum{}, err
		}
		keys = append(keys, k)
	}
	return atom.NewSet(keys), nil
}

// parseKeySetLiteral parses value as a bare set of keys, used by
// `remove` when its map-typed argument doesn't parse as a full KEY=VALUE
// map literal (spec.md §4.F, remove-by-key fallback).
func parseKeySetLiteral(value string, keyKind atom.Kind, syms *symtab.Table) (atom.Datum, error) {
	if value == "" {
		return atom.EmptySet(), nil
	}
	elems := splitTopLevel(value, ',')
	keys := make([]atom.Atom, 0, len(elems))
	for _, e := range elems {
		k, err := parseOneAtom(e, keyKind, syms)
		if err != nil {
			return atom.Datum{}, err
		}
		keys = append(keys, k)
	}
	return atom.NewSet(keys), nil
}

func parseOneAtom(tok string, kind atom.Kind, syms *symtab.Table) (atom.Atom, error) {
	if kind == atom.KindUUID && strings.HasPrefix(tok, "@") {
		if syms == nil {
			return atom.Atom{}, &TypeError{Msg: "symbol " + tok + " used outside a transaction attempt"}
		}
		sym, ok := syms.Lookup(tok)
		if !ok {
			return atom.Atom{}, &TypeError{Msg: tok + " is not a bound symbol"}
		}
		return atom.UUIDAtom(sym.UUID), nil
	}
	if strings.HasPrefix(tok, `"`) {
		decoded, rest, err := scanQuotedToken(tok)
		if err != nil || rest != "" {
			return atom.Atom{}, &TypeError{Msg: "invalid quoted literal " + tok}
		}
		return atom.FromString(kind, decoded)
	}
	a, err := atom.FromString(kind, tok)
	if err != nil {
		return atom.Atom{}, &TypeError{Msg: err.Error()}
	}
	return a, nil
}

func splitOnceUnquoted(s string, sep byte) (before, after string, ok bool) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if !inQuote || i == 0 || s[i-1] != '\\' {
				inQuote = !inQuote
			}
		case sep:
			if !inQuote {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}
