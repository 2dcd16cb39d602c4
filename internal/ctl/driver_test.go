package ctl

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/idl"
)

func runStream(t *testing.T, it *Interpreter, client idl.Client, argv []string) (string, error) {
	t.Helper()
	invocations, err := ParseStream(it, argv, nil)
	require.NoError(t, err)
	driver := &Driver{Interpreter: it, IDL: client, Logger: NewNoopLogger()}
	return driver.Run(context.Background(), invocations, false, true, 0)
}

// TestScenarioS1CreateWithForwardReference exercises spec.md scenario
// S1: a Port is created with a symbol bound to --id, and a later command
// in the same stream reads that symbol back as a VALUE literal.
func TestScenarioS1CreateWithForwardReference(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()

	out, err := runStream(t, it, fake, []string{
		"--id=@p", "create", "Port", "name=eth0",
		"--", "create", "Bridge", "name=br0", "ports=@p",
	})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	portUUID, err := uuid.Parse(lines[0])
	require.NoError(t, err)
	_, err = uuid.Parse(lines[1])
	require.NoError(t, err)

	bridges := fake.Rows("Bridge")
	require.Len(t, bridges, 1)
	ports, err := fake.Read(bridges[0], "ports")
	require.NoError(t, err)
	require.Equal(t, 1, ports.Len())
	assert.Equal(t, portUUID, ports.Keys[0].UUID)
}

// TestScenarioS2Find exercises spec.md scenario S2: `find` matches a
// key-qualified condition against the seeded rows it's true for.
func TestScenarioS2Find(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()

	seedPort := func(name string, color string) uuid.UUID {
		id := uuid.New()
		fake.SeedRow("Port", id, map[string]atom.Datum{
			"name":         atom.NewSet([]atom.Atom{atom.String(name)}),
			"external_ids": atom.NewMap([]atom.Atom{atom.String("color")}, []atom.Atom{atom.String(color)}),
		})
		return id
	}
	id1 := seedPort("p1", "red")
	seedPort("p2", "blue")
	id3 := seedPort("p3", "red")

	out, err := runStream(t, it, fake, []string{"find", "Port", "external_ids:color=red"})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3) // header + 2 matches
	assert.Contains(t, out, id1.String())
	assert.Contains(t, out, id3.String())
}

// TestScenarioS3WaitUntil exercises spec.md scenario S3: while the
// condition is unmet wait-until sets try_again, which --no-wait turns into
// an immediate error; once the row satisfies it the same stream succeeds.
func TestScenarioS3WaitUntil(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()

	id := uuid.New()
	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
		"tag":  atom.NewSet([]atom.Atom{atom.Integer(1)}),
	})

	invocations, err := ParseStream(it, []string{"wait-until", "Port", "eth0", "tag=10"}, nil)
	require.NoError(t, err)
	driver := &Driver{Interpreter: it, IDL: fake, Logger: NewNoopLogger()}

	_, err = driver.Run(context.Background(), invocations, false, true, 0)
	require.Error(t, err, "--no-wait must fail fast when the condition is unmet")

	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
		"tag":  atom.NewSet([]atom.Atom{atom.Integer(10)}),
	})
	_, err = driver.Run(context.Background(), invocations, false, true, 0)
	require.NoError(t, err)
}

// TestScenarioS4AmbiguousColumn exercises spec.md scenario S4: `get`
// with a column token that fuzzy-matches two columns fails fatally.
func TestScenarioS4AmbiguousColumn(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()
	id := uuid.New()
	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name":         atom.NewSet([]atom.Atom{atom.String("eth0")}),
		"external_ids": atom.EmptyMap(),
		"external_mac": atom.NewSet([]atom.Atom{atom.String("00:00:00:00:00:01")}),
	})

	_, err := runStream(t, it, fake, []string{"get", "Port", "eth0", "external"})
	require.Error(t, err)
	amb, ok := err.(*AmbiguousNameError)
	require.True(t, ok, "expected *AmbiguousNameError, got %T: %v", err, err)
	assert.Contains(t, amb.Error(), "Port")
	assert.Contains(t, amb.Error(), "external")
}

// TestScenarioS5CardinalityViolation exercises spec.md scenario S5:
// `clear` on a column whose min is 1 fails fatally and performs no
// write.
func TestScenarioS5CardinalityViolation(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()
	id := uuid.New()
	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
	})

	_, err := runStream(t, it, fake, []string{"clear", "Port", "eth0", "name"})
	require.Error(t, err)
	_, ok := err.(*CardinalityError)
	assert.True(t, ok, "expected *CardinalityError, got %T: %v", err, err)

	row, ok := fake.RowForUUID("Port", id)
	require.True(t, ok)
	name, err := fake.Read(row, "name")
	require.NoError(t, err)
	assert.Equal(t, 1, name.Len(), "clear must not have written through on cardinality failure")
}

// TestScenarioS6ShowAcyclic exercises spec.md scenario S6: a schema
// whose show-tables form a cycle (A referencing B, B weak-referencing
// back to A) still terminates, visiting each table at most once per
// recursion branch.
func TestScenarioS6ShowAcyclic(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()

	bridgeID := uuid.New()
	portID := uuid.New()
	fake.SeedRow("Bridge", bridgeID, map[string]atom.Datum{
		"name":  atom.NewSet([]atom.Atom{atom.String("br0")}),
		"ports": atom.NewSet([]atom.Atom{atom.UUIDAtom(portID)}),
	})
	fake.SeedRow("Port", portID, map[string]atom.Datum{
		"name":         atom.NewSet([]atom.Atom{atom.String("eth0")}),
		"external_ids": atom.EmptyMap(),
	})

	out, err := runStream(t, it, fake, []string{"show"})
	require.NoError(t, err)
	assert.Contains(t, out, "Bridge")
	assert.Contains(t, out, "Port")
}

// TestSymbolRedefinitionFails covers spec.md invariant 3: a symbol can be
// bound to a create/get-with-id at most once per attempt.
func TestSymbolRedefinitionFails(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()

	_, err := runStream(t, it, fake, []string{
		"--id=@p", "create", "Port", "name=eth0",
		"--", "--id=@p", "create", "Port", "name=eth1",
	})
	require.Error(t, err)
	_, ok := err.(*SymbolRedefinedError)
	assert.True(t, ok, "expected *SymbolRedefinedError, got %T: %v", err, err)
}

// TestGetWithIdOnAlreadyBoundSymbolFails covers the same attempt-scoped
// uniqueness rule from the other direction: `get --id=@p` rejects a name
// a prior `create --id=@p` in the same attempt already bound.
func TestGetWithIdOnAlreadyBoundSymbolFails(t *testing.T) {
	schema := loadBridgeSchema(t)
	it := Init(schema)
	fake := idl.NewFake()
	id := uuid.New()
	fake.SeedRow("Port", id, map[string]atom.Datum{
		"name": atom.NewSet([]atom.Atom{atom.String("eth0")}),
	})

	_, err := runStream(t, it, fake, []string{
		"--id=@p", "create", "Port", "name=eth1",
		"--", "--id=@p", "get", "Port", "eth0",
	})
	require.Error(t, err)
	_, ok := err.(*SymbolRedefinedError)
	assert.True(t, ok, "expected *SymbolRedefinedError, got %T: %v", err, err)
}
