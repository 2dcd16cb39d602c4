package ctl

import (
	"fmt"

	"github.com/rowctl/rowctl/internal/atom"
)

// allOps lists the twelve operators spec.md §4.E defines. arg.go's findOp
// picks the longest matching entry regardless of list order, so "<=" wins
// over "<" and "{<=}" over "{<}".
var allOps = []string{"{!=}", "{<=}", "{>=}", "{=}", "{<}", "{>}", "!=", "<=", ">=", "=", "<", ">"}

// evaluate implements spec.md §4.E: given the operator text, the row's
// datum for one column (or one key within it) and a literal to compare
// against, report whether the condition holds. Key-qualified evaluation
// (rowDatum being the single-entry extraction at KEY) is the caller's
// responsibility (see evalColumnCondition below); this function handles
// the twelve-operator dispatch only.
func evaluate(op string, rowDatum, literal atom.Datum) (bool, error) {
	switch op {
	case "=":
		return atom.DatumCompare3Way(rowDatum, literal) == 0, nil
	case "!=":
		return atom.DatumCompare3Way(rowDatum, literal) != 0, nil
	case "<":
		return atom.DatumCompare3Way(rowDatum, literal) < 0, nil
	case ">":
		return atom.DatumCompare3Way(rowDatum, literal) > 0, nil
	case "<=":
		return atom.DatumCompare3Way(rowDatum, literal) <= 0, nil
	case ">=":
		return atom.DatumCompare3Way(rowDatum, literal) >= 0, nil
	case "{=}":
		return rowDatum.Equal(literal), nil
	case "{!=}":
		return !rowDatum.Equal(literal), nil
	case "{<}":
		return rowDatum.SubsetOf(literal) && rowDatum.Len() < literal.Len() && !rowDatum.Equal(literal), nil
	case "{>}":
		return literal.SubsetOf(rowDatum) && rowDatum.Len() > literal.Len() && !rowDatum.Equal(literal), nil
	case "{<=}":
		return rowDatum.SubsetOf(literal), nil
	case "{>=}":
		return literal.SubsetOf(rowDatum), nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

// evalColumnCondition extracts the value to compare (the whole column
// datum, or the single entry at KEY for a key-qualified condition) and
// applies evaluate. For non-set operators, an absent key short-circuits
// to false; for set operators the empty datum is compared as-is, per
// spec.md §4.E.
func evalColumnCondition(rowDatum atom.Datum, key *atom.Atom, op string, literal atom.Datum) (bool, error) {
	if key == nil {
		return evaluate(op, rowDatum, literal)
	}

	v, ok := rowDatum.Lookup(*key)
	isSetOp := len(op) > 0 && op[0] == '{'
	if !ok {
		if !isSetOp {
			return false, nil
		}
		return evaluate(op, atom.EmptySet(), literal)
	}
	return evaluate(op, atom.NewSet([]atom.Atom{v}), literal)
}
