package iotesting

import (
	"context"
	"strings"
	"testing"

	"github.com/gnames/gnviews/internal/iodb"
	"github.com/gnames/gnviews/pkg/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// SchemaPrefix starts names of schemas created by NewSchema.
const SchemaPrefix = "viewsync_"

// Schema is a connection to the test database with the search_path set
// to a schema that exists only during one test.
type Schema struct {
	Name string
	Cfg  *config.Config
	Pool *pgxpool.Pool
}

// NewSchema creates a uniquely named schema in the test database and a
// connection pool that uses it. The schema and everything in it are
// dropped when the test finishes.
func NewSchema(t *testing.T) *Schema {
	t.Helper()
	ctx := context.Background()

	name := SchemaPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	cfg := GetTestConfig()
	cfg.Update([]config.Option{config.OptDatabaseSchema(name)})

	op := iodb.NewPgxOperator()
	err := op.Connect(ctx, &cfg.Database)
	if err != nil {
		t.Skipf("Test database is not available: %v", err)
	}

	pool := op.Pool()
	ident := pgx.Identifier{name}.Sanitize()
	_, err = pool.Exec(ctx, "CREATE SCHEMA "+ident)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := pool.Exec(context.Background(),
			"DROP SCHEMA IF EXISTS "+ident+" CASCADE")
		if err != nil {
			t.Logf("cannot drop schema %s: %v", name, err)
		}
		_ = op.Close()
	})

	return &Schema{Name: name, Cfg: cfg, Pool: pool}
}

// Conn acquires a connection from the pool and releases it when the test
// finishes.
func (s *Schema) Conn(t *testing.T) *pgxpool.Conn {
	t.Helper()
	conn, err := s.Pool.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(conn.Release)
	return conn
}
