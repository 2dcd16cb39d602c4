package ctl

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

func newTestContext(schema *dbschema.Schema, client idl.Client) *CtlContext {
	return &CtlContext{Schema: schema, IDL: client, Logger: NewNoopLogger()}
}

func TestGetRowByUUID(t *testing.T) {
	schema := loadBridgeSchema(t)
	fake := idl.NewFake()
	id := uuid.New()
	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
	})

	ctx := newTestContext(schema, fake)
	table := schema.Table("Port")

	row, found, err := getRow(ctx, table, id.String(), true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, row.UUID)
}

func TestGetRowByName(t *testing.T) {
	schema := loadBridgeSchema(t)
	fake := idl.NewFake()
	id := uuid.New()
	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
	})

	ctx := newTestContext(schema, fake)
	table := schema.Table("Port")

	row, found, err := getRow(ctx, table, "eth0", true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, row.UUID)
}

func TestGetRowNotFoundMustExist(t *testing.T) {
	schema := loadBridgeSchema(t)
	fake := idl.NewFake()
	ctx := newTestContext(schema, fake)
	table := schema.Table("Port")

	_, found, err := getRow(ctx, table, "nonexistent", true)
	require.Error(t, err)
	assert.False(t, found)
	_, ok := err.(*NoSuchRowError)
	assert.True(t, ok)
}

func TestGetRowNotFoundOptional(t *testing.T) {
	schema := loadBridgeSchema(t)
	fake := idl.NewFake()
	ctx := newTestContext(schema, fake)
	table := schema.Table("Port")

	row, found, err := getRow(ctx, table, "nonexistent", false)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, idl.Row{}, row)
}

func TestGetRowAmbiguousName(t *testing.T) {
	schema := loadBridgeSchema(t)
	fake := idl.NewFake()
	fake.SeedRow("Port", uuid.New(), map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
	})
	fake.SeedRow("Port", uuid.New(), map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
	})

	ctx := newTestContext(schema, fake)
	table := schema.Table("Port")

	_, _, err := getRow(ctx, table, "eth0", true)
	require.Error(t, err)
	_, ok := err.(*MultipleRowsError)
	assert.True(t, ok)
}
