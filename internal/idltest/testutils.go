// SPDX-License-Identifier: Apache-2.0

// Package idltest provides the testcontainers-backed harness the
// Postgres IDL's one integration test runs against, adapted from the
// teacher's pkg/testutils: a single shared postgres container for the
// whole test binary, with each test getting its own throwaway database.
package idltest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rowctl/rowctl/internal/dbschema"
	"github.com/rowctl/rowctl/internal/idl"
)

const defaultPostgresVersion = "15.3"

var tConnStr string

// SharedTestMain starts one postgres container for every test in the
// calling package; each test then opens its own database within it.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(5 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:"+pgVersion),
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	if err != nil {
		os.Exit(1)
	}

	tConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := ctr.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %v", err)
	}

	os.Exit(exitCode)
}

func randomDBName() string {
	const length = 15
	const charset = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))] // #nosec G404
	}
	return "testdb_" + string(b)
}

// setupTestDatabase creates a fresh database inside the shared container
// and returns its connection string.
func setupTestDatabase(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	tDB, err := sql.Open("postgres", tConnStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { tDB.Close() })

	dbName := randomDBName()
	if _, err := tDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName))); err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(tConnStr)
	if err != nil {
		t.Fatal(err)
	}
	u.Path = "/" + dbName
	return u.String()
}

// WithPostgres opens a fresh database in the shared container, builds a
// Postgres-backed IDL against schema in the given pgSchema, and hands it
// to fn.
func WithPostgres(t *testing.T, schema *dbschema.Schema, pgSchema string, fn func(*idl.Postgres)) {
	t.Helper()
	ctx := context.Background()

	connStr := setupTestDatabase(t)
	client, err := idl.NewPostgres(ctx, connStr, pgSchema, schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })

	fn(client)
}
