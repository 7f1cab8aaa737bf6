package db

import (
	"context"

	"github.com/gnames/gnviews/pkg/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is the part of a PostgreSQL connection GNviews needs to run
// DDL and catalog queries. It is satisfied by *pgxpool.Pool,
// *pgxpool.Conn, *pgx.Conn and pgx.Tx, so the same code runs on a
// pool, on a checked out connection or inside a caller's transaction.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Operator defines the interface for basic database management operations.
// It provides connection lifecycle management and exposes the pgxpool.Pool
// to the metadata store, catalog inspector and view synchronizer.
type Operator interface {
	// Connect establishes a connection pool to the database. The
	// search_path of every connection is set to the configured schema.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the configured schema.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// SchemaExists checks if the configured schema exists.
	SchemaExists(ctx context.Context) (bool, error)
}

var (
	_ Conn = (*pgxpool.Pool)(nil)
	_ Conn = (*pgxpool.Conn)(nil)
	_ Conn = (*pgx.Conn)(nil)
	_ Conn = (pgx.Tx)(nil)
)
