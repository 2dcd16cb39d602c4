package ctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowctl/rowctl/internal/atom"
)

func ints(vs ...int64) atom.Datum {
	keys := make([]atom.Atom, len(vs))
	for i, v := range vs {
		keys[i] = atom.Integer(v)
	}
	return atom.NewSet(keys)
}

func TestEvaluateScalarOperators(t *testing.T) {
	tests := []struct {
		Name string
		Op   string
		Row  atom.Datum
		Lit  atom.Datum
		Want bool
	}{
		{"equal true", "=", ints(5), ints(5), true},
		{"equal false", "=", ints(5), ints(6), false},
		{"not-equal true", "!=", ints(5), ints(6), true},
		{"less than", "<", ints(5), ints(6), true},
		{"less than false", "<", ints(6), ints(5), false},
		{"greater than", ">", ints(6), ints(5), true},
		{"less-or-equal equal case", "<=", ints(5), ints(5), true},
		{"greater-or-equal equal case", ">=", ints(5), ints(5), true},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got, err := evaluate(tt.Op, tt.Row, tt.Lit)
			require.NoError(t, err)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestEvaluateSetOperators(t *testing.T) {
	tests := []struct {
		Name string
		Op   string
		Row  atom.Datum
		Lit  atom.Datum
		Want bool
	}{
		{"set-equal true", "{=}", ints(1, 2), ints(2, 1), true},
		{"set-equal false", "{=}", ints(1, 2), ints(1, 2, 3), false},
		{"set-not-equal", "{!=}", ints(1, 2), ints(1, 2, 3), true},
		{"proper subset true", "{<}", ints(1), ints(1, 2), true},
		{"proper subset false on equal sets", "{<}", ints(1, 2), ints(1, 2), false},
		{"proper superset true", "{>}", ints(1, 2), ints(1), true},
		{"subset-or-equal true on equal", "{<=}", ints(1, 2), ints(1, 2), true},
		{"subset-or-equal true proper", "{<=}", ints(1), ints(1, 2), true},
		{"subset-or-equal false", "{<=}", ints(1, 3), ints(1, 2), false},
		{"superset-or-equal true", "{>=}", ints(1, 2), ints(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got, err := evaluate(tt.Op, tt.Row, tt.Lit)
			require.NoError(t, err)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestEvaluateUnknownOperator(t *testing.T) {
	_, err := evaluate("???", ints(1), ints(1))
	assert.Error(t, err)
}

func TestEvalColumnConditionKeyQualified(t *testing.T) {
	m := atom.NewMap([]atom.Atom{atom.String("color")}, []atom.Atom{atom.String("red")})

	ok, err := evalColumnCondition(m, ptr(atom.String("color")), "=", atom.NewSet([]atom.Atom{atom.String("red")}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = evalColumnCondition(m, ptr(atom.String("color")), "=", atom.NewSet([]atom.Atom{atom.String("blue")}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalColumnConditionAbsentKeyScalarShortCircuits(t *testing.T) {
	m := atom.NewMap([]atom.Atom{atom.String("color")}, []atom.Atom{atom.String("red")})

	ok, err := evalColumnCondition(m, ptr(atom.String("missing")), "=", atom.NewSet([]atom.Atom{atom.String("red")}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalColumnConditionAbsentKeySetOperatorUsesEmpty(t *testing.T) {
	m := atom.NewMap([]atom.Atom{atom.String("color")}, []atom.Atom{atom.String("red")})

	ok, err := evalColumnCondition(m, ptr(atom.String("missing")), "{<=}", atom.NewSet([]atom.Atom{atom.String("red")}))
	require.NoError(t, err)
	assert.True(t, ok, "empty set is a subset of any literal")
}

func ptr(a atom.Atom) *atom.Atom { return &a }
