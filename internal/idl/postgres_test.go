package idl_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowctl/rowctl/internal/atom"
	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
	"github.com/rowctl/rowctl/internal/idltest"
)

func TestMain(m *testing.M) {
	idltest.SharedTestMain(m)
}

const portSchemaYAML = `
schemaVersion: "1.0.0"
tables:
  - name: Port
    isRoot: true
    columns:
      - name: name
        key: string
        min: 1
        max: 1
      - name: tag
        key: integer
        min: 0
        max: 1
`

func loadPortSchema(t *testing.T) *dbschema.Schema {
	t.Helper()
	schema, err := dbschema.Load(strings.NewReader(portSchemaYAML))
	require.NoError(t, err)
	return schema
}

// TestPostgresInsertWriteCommitRead exercises the real Postgres-backed
// IDL end to end: bootstrap, insert a row inside a transaction, write a
// column, commit, and read the committed value back.
func TestPostgresInsertWriteCommitRead(t *testing.T) {
	schema := loadPortSchema(t)
	idltest.WithPostgres(t, schema, "rowctl_test", func(client *idl.Postgres) {
		ctx := context.Background()

		txn, err := client.Begin(ctx)
		require.NoError(t, err)

		row, err := txn.Insert("Port", nil)
		require.NoError(t, err)

		require.NoError(t, txn.Write(row, "name", atom.NewSet([]atom.Atom{atom.String("eth0")})))
		require.NoError(t, txn.Write(row, "tag", atom.NewSet([]atom.Atom{atom.Integer(10)})))

		outcome, err := txn.Commit(ctx)
		require.NoError(t, err)
		assert.Equal(t, idl.CommitOK, outcome)

		found, ok := client.RowForUUID("Port", row.UUID)
		require.True(t, ok)

		name, err := client.Read(found, "name")
		require.NoError(t, err)
		require.Equal(t, 1, name.Len())
		assert.Equal(t, "eth0", name.Keys[0].Str)

		tag, err := client.Read(found, "tag")
		require.NoError(t, err)
		require.Equal(t, 1, tag.Len())
		assert.Equal(t, int64(10), tag.Keys[0].Int)
	})
}

// TestPostgresDeleteRemovesRow checks that a committed Delete is no
// longer visible via RowForUUID.
func TestPostgresDeleteRemovesRow(t *testing.T) {
	schema := loadPortSchema(t)
	idltest.WithPostgres(t, schema, "rowctl_test", func(client *idl.Postgres) {
		ctx := context.Background()

		txn, err := client.Begin(ctx)
		require.NoError(t, err)
		row, err := txn.Insert("Port", nil)
		require.NoError(t, err)
		require.NoError(t, txn.Write(row, "name", atom.NewSet([]atom.Atom{atom.String("eth1")})))
		_, err = txn.Commit(ctx)
		require.NoError(t, err)

		txn2, err := client.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, txn2.Delete(row))
		_, err = txn2.Commit(ctx)
		require.NoError(t, err)

		_, ok := client.RowForUUID("Port", row.UUID)
		assert.False(t, ok)
	})
}
