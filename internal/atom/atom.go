// Package atom implements the tagged-union scalar value ("Atom") and the
// sorted key/value collection ("Datum") that rowctl's schema columns are
// typed over. A single dispatch point (Compare3Way) backs ordering,
// comparison and the set operations the evaluator needs.
package atom

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Kind is the atomic type tag of a column's key or value.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindBool
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindBool:
		return "boolean"
	case KindUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Atom is a single scalar value of one of the four atomic kinds.
type Atom struct {
	Kind Kind
	Str  string
	Int  int64
	Bool bool
	UUID uuid.UUID
}

func String(s string) Atom           { return Atom{Kind: KindString, Str: s} }
func Integer(i int64) Atom           { return Atom{Kind: KindInteger, Int: i} }
func Boolean(b bool) Atom            { return Atom{Kind: KindBool, Bool: b} }
func UUIDAtom(id uuid.UUID) Atom     { return Atom{Kind: KindUUID, UUID: id} }

// FromString parses a single token already extracted by the caller's
// lexer (internal/ctl's arg.go and literal.go) into an Atom of the given
// kind. JSON-style escapes inside
// quoted string tokens are assumed to have already been resolved by the
// caller's tokenizer; FromString only converts the unquoted text.
func FromString(kind Kind, text string) (Atom, error) {
	switch kind {
	case KindString:
		return String(text), nil
	case KindInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Atom{}, fmt.Errorf("%q is not an integer", text)
		}
		return Integer(n), nil
	case KindBool:
		switch text {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		default:
			return Atom{}, fmt.Errorf("%q is not a boolean (expected true or false)", text)
		}
	case KindUUID:
		id, err := uuid.Parse(text)
		if err != nil {
			return Atom{}, fmt.Errorf("%q is not a uuid", text)
		}
		return UUIDAtom(id), nil
	default:
		return Atom{}, fmt.Errorf("unknown atomic kind %v", kind)
	}
}

func (a Atom) String() string {
	switch a.Kind {
	case KindString:
		b, _ := json.Marshal(a.Str)
		return string(b)
	case KindInteger:
		return strconv.FormatInt(a.Int, 10)
	case KindBool:
		if a.Bool {
			return "true"
		}
		return "false"
	case KindUUID:
		return a.UUID.String()
	default:
		return ""
	}
}

// Compare3Way is the single dispatch point every other operation in this
// package and in the evaluator (internal/ctl/eval.go) builds on. It panics
// if a and b have different kinds: callers are expected to have already
// unified both sides against one column's declared atomic type.
func Compare3Way(a, b Atom) int {
	if a.Kind != b.Kind {
		panic(fmt.Sprintf("atom: comparing incompatible kinds %v and %v", a.Kind, b.Kind))
	}
	switch a.Kind {
	case KindString:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	case KindInteger:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case KindBool:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool && b.Bool {
			return -1
		}
		return 1
	case KindUUID:
		return [3]int{-1, 0, 1}[1+compareBytes(a.UUID[:], b.UUID[:])]
	default:
		panic("atom: unknown kind")
	}
}

func compareBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func Equal(a, b Atom) bool { return a.Kind == b.Kind && Compare3Way(a, b) == 0 }
