package ctl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/match"
)

// ParsedArg is the result of parseColumnKeyValue (spec.md §4.B).
type ParsedArg struct {
	Column   string
	Key      *atom.Atom
	OpIndex  int    // index into allowedOps, -1 if no operator matched
	Op       string // allowedOps[OpIndex], "" if none matched
	Value    string // raw text after the operator, unparsed
}

var defaultOps = []string{"="}

// scanBareToken consumes a run of identifier-ish characters (the column
// and key name alphabet used throughout the schema examples) from s,
// returning the token and what's left.
func scanBareToken(s string) (tok, rest string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ':' {
			break
		}
		if isNameByte(c) {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanQuotedToken consumes a JSON-style double-quoted token from s
// (which must start with '"'), returning the decoded token text and the
// remainder.
func scanQuotedToken(s string) (tok, rest string, err error) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			decoded, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", fmt.Errorf("invalid quoted token %q: %w", s[:i+1], err)
			}
			return decoded, s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("unterminated quoted token %q", s)
}

func scanToken(s string) (tok, rest string, err error) {
	if strings.HasPrefix(s, `"`) {
		return scanQuotedToken(s)
	}
	tok, rest = scanBareToken(s)
	return tok, rest, nil
}

// findOp returns the longest entry of allowedOps that prefixes s and
// leaves at least one character of remainder, or -1 if none does.
func findOp(s string, allowedOps []string) int {
	best := -1
	for i, op := range allowedOps {
		if !strings.HasPrefix(s, op) {
			continue
		}
		if len(s) <= len(op) {
			continue
		}
		if best == -1 || len(op) > len(allowedOps[best]) {
			best = i
		}
	}
	return best
}

// parseColumnKeyValue implements spec.md §4.B: TOKEN [':' TOKEN] [OP
// REMAINDER], resolving TOKEN against table's columns with the fuzzy
// matcher in internal/match.
func parseColumnKeyValue(arg string, table *dbschema.CtlTableClass, allowedOps []string, wantValue bool) (ParsedArg, error) {
	if len(allowedOps) == 0 && wantValue {
		allowedOps = defaultOps
	}

	colTok, rest, err := scanToken(arg)
	if err != nil {
		return ParsedArg{}, err
	}
	colName, err := match.Best(table.Class.ColumnNames(), colTok)
	if err != nil {
		return ParsedArg{}, ambiguityToColumnError(err, table.Class.Name, colTok)
	}
	col := table.Class.Column(colName)

	result := ParsedArg{Column: colName, OpIndex: -1}

	if strings.HasPrefix(rest, ":") {
		rest = rest[1:]
		keyTok, r2, err := scanToken(rest)
		if err != nil {
			return ParsedArg{}, err
		}
		rest = r2
		keyAtom, err := atom.FromString(col.Type.KeyKind, keyTok)
		if err != nil {
			return ParsedArg{}, &TypeError{Msg: err.Error()}
		}
		result.Key = &keyAtom
	}

	if !wantValue {
		if rest != "" {
			return ParsedArg{}, &UsageError{Msg: fmt.Sprintf("trailing garbage %q in argument %q", rest, arg)}
		}
		return result, nil
	}

	idx := findOp(rest, allowedOps)
	if idx == -1 {
		return ParsedArg{}, &UsageError{Msg: fmt.Sprintf(
			"%q: argument does not end in %s or one of those followed by a value", arg, quoteOpList(allowedOps))}
	}
	result.OpIndex = idx
	result.Op = allowedOps[idx]
	result.Value = rest[len(allowedOps[idx]):]
	return result, nil
}

func quoteOpList(ops []string) string {
	quoted := make([]string, len(ops))
	for i, op := range ops {
		quoted[i] = strconv.Quote(op)
	}
	return strings.Join(quoted, ", ")
}

func ambiguityToColumnError(err error, tableName, query string) error {
	var amb *match.ErrAmbiguous
	if as, ok := err.(*match.ErrAmbiguous); ok {
		amb = as
		return &AmbiguousNameError{Kind: "column", Owner: tableName, Query: amb.Query, Candidates: amb.Candidates}
	}
	return &UsageError{Msg: fmt.Sprintf("table %s has no column matching %q", tableName, query)}
}
