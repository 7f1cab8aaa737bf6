// Package views describes declared database views and the contracts of
// their synchronization with a PostgreSQL database.
//
// A view is declared by a Declaration: a logical name (the relation name),
// an owner identifier, a SQL body and Options. The synchronizer keeps a
// Record per managed view and uses it to decide whether anything has to be
// done for a declaration.
package views

import (
	"context"
	"time"

	"github.com/gnames/gnviews/pkg/db"
)

// Declaration is a view definition supplied by a declaration source.
type Declaration struct {
	// Name is the relation name of the view.
	Name string `yaml:"name"`

	// Owner is a stable identifier of the declaring entity. Dependencies
	// between views are declared and checked in terms of owners.
	Owner string `yaml:"owner"`

	// SQL is the defining query of the view.
	SQL string `yaml:"-"`

	// Options describe materialization, indexes and dependencies.
	Options Options `yaml:"-"`
}

// Record is the persisted state of a managed view.
type Record struct {
	Name     string
	Owner    string
	Checksum string
	Options  Options

	// RefreshedAt is the UTC time of the last refresh of a materialized
	// view. It is nil for plain views and for views never refreshed.
	RefreshedAt *time.Time
}

// NewRecord creates a record for a declaration.
func NewRecord(d Declaration) Record {
	return Record{
		Name:     d.Name,
		Owner:    d.Owner,
		Checksum: Checksum(d.SQL),
		Options:  d.Options,
	}
}

// Matches returns true if the record describes the same owner, SQL
// checksum and options as the other one. Refresh time is ignored.
func (r Record) Matches(other Record) bool {
	return r.Owner == other.Owner &&
		r.Checksum == other.Checksum &&
		r.Options.Equal(other.Options)
}

// Dependent is a managed view that depends on another view through the
// rewrite rules of the database.
type Dependent struct {
	Name  string
	Owner string

	// Definition is the current query of the view as reported by
	// pg_get_viewdef.
	Definition string

	Options Options
}

// Registry tells if an owner identifier is still declared.
type Registry interface {
	Resolves(owner string) bool
}

// RegistryFunc adapts a function to the Registry interface.
type RegistryFunc func(owner string) bool

// Resolves calls f(owner).
func (f RegistryFunc) Resolves(owner string) bool {
	return f(owner)
}

// Synchronizer keeps declared views and the database in agreement.
// Every method accepts a connection that may be inside a caller's
// transaction, view bookkeeping survives the rollback of that
// transaction.
type Synchronizer interface {
	// CreateView creates or updates a view according to its declaration.
	// It does nothing if the stored record matches the declaration.
	CreateView(ctx context.Context, conn db.Conn, d Declaration) error

	// DropView drops the view if it exists and forgets its record.
	DropView(ctx context.Context, conn db.Conn, name string) error

	// DropAllViews drops every managed view, dependents first.
	DropAllViews(ctx context.Context, conn db.Conn) error

	// DropUnregistered drops managed views whose owners do not resolve
	// anymore. It returns the names of dropped views.
	DropUnregistered(ctx context.Context, conn db.Conn) ([]string, error)

	// Flush applies declarations collected in enqueue mode in the order
	// they were received.
	Flush(ctx context.Context, conn db.Conn) error

	// Pending returns declarations waiting for Flush.
	Pending() []Declaration

	// Refresh refreshes a materialized view and stamps its refresh time.
	Refresh(
		ctx context.Context, conn db.Conn, name string, mode RefreshMode,
	) error

	// EnsurePopulated makes sure the view and all its managed
	// dependencies are populated.
	EnsurePopulated(ctx context.Context, conn db.Conn, name string) error
}
