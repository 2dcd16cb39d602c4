package ctl

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/symtab"
)

func TestParseDatumLiteralSet(t *testing.T) {
	ct := dbschema.ColumnType{KeyKind: atom.KindString, Max: 0}
	d, err := parseDatumLiteral(`eth0,"has space",eth1`, ct, nil)
	require.NoError(t, err)
	assert.False(t, d.IsMap())
	assert.Equal(t, 3, d.Len())
}

func TestParseDatumLiteralMap(t *testing.T) {
	vk := atom.KindString
	ct := dbschema.ColumnType{KeyKind: atom.KindString, ValueKind: &vk}
	d, err := parseDatumLiteral("color=red,speed=fast", ct, nil)
	require.NoError(t, err)
	assert.True(t, d.IsMap())
	v, ok := d.Lookup(atom.String("color"))
	require.True(t, ok)
	assert.Equal(t, "red", v.Str)
}

func TestParseDatumLiteralEmpty(t *testing.T) {
	ct := dbschema.ColumnType{KeyKind: atom.KindString}
	d, err := parseDatumLiteral("", ct, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
	assert.False(t, d.IsMap())

	vk := atom.KindString
	mapCT := dbschema.ColumnType{KeyKind: atom.KindString, ValueKind: &vk}
	d, err = parseDatumLiteral("", mapCT, nil)
	require.NoError(t, err)
	assert.True(t, d.IsMap())
}

func TestParseDatumLiteralUUIDSymbol(t *testing.T) {
	syms := symtab.New()
	sym, existed, err := symtab.Create(syms, "@p", true)
	require.NoError(t, err)
	require.False(t, existed)
	want := uuid.New()
	sym.SetUUID(want)

	ct := dbschema.ColumnType{KeyKind: atom.KindUUID}
	d, err := parseDatumLiteral("@p", ct, syms)
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
	assert.Equal(t, want, d.Keys[0].UUID)
}

func TestParseDatumLiteralUUIDSymbolUnbound(t *testing.T) {
	syms := symtab.New()
	ct := dbschema.ColumnType{KeyKind: atom.KindUUID}
	_, err := parseDatumLiteral("@missing", ct, syms)
	require.Error(t, err)
	_, ok := err.(*TypeError)
	assert.True(t, ok)
}

func TestParseDatumLiteralUUIDSymbolNoTable(t *testing.T) {
	ct := dbschema.ColumnType{KeyKind: atom.KindUUID}
	_, err := parseDatumLiteral("@p", ct, nil)
	require.Error(t, err)
	_, ok := err.(*TypeError)
	assert.True(t, ok)
}

func TestParseKeySetLiteral(t *testing.T) {
	d, err := parseKeySetLiteral("color,speed", atom.KindString, nil)
	require.NoError(t, err)
	assert.False(t, d.IsMap())
	assert.Equal(t, 2, d.Len())
}
