// Package ioviews creates, replaces and drops declared views in
// PostgreSQL. Views that depend on a view being recreated are dropped
// and rebuilt around it, and all bookkeeping runs outside of the
// caller's transaction.
package ioviews

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/gnames/gnviews/internal/iocatalog"
	"github.com/gnames/gnviews/internal/ioisolate"
	"github.com/gnames/gnviews/internal/iometa"
	"github.com/gnames/gnviews/pkg/db"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type synchronizer struct {
	iso  *ioisolate.Isolator
	cat  *iocatalog.Inspector
	meta *iometa.Store

	// registry knows owners that are still declared. When it is nil
	// every owner is considered declared.
	registry views.Registry
	mode     views.Mode

	mu    sync.Mutex
	queue []views.Declaration
}

// Option configures the synchronizer.
type Option func(*synchronizer)

// OptRegistry sets the registry of declared owners. It is used to
// validate dependencies and to recognize retired dependents.
func OptRegistry(r views.Registry) Option {
	return func(s *synchronizer) {
		s.registry = r
	}
}

// OptMode sets whether declarations are applied right away or queued
// until Flush.
func OptMode(m views.Mode) Option {
	return func(s *synchronizer) {
		s.mode = m
	}
}

// New creates a views.Synchronizer.
func New(
	iso *ioisolate.Isolator,
	cat *iocatalog.Inspector,
	meta *iometa.Store,
	opts ...Option,
) views.Synchronizer {
	res := &synchronizer{
		iso:  iso,
		cat:  cat,
		meta: meta,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// CreateView implements views.Synchronizer.
func (s *synchronizer) CreateView(
	ctx context.Context, conn db.Conn, d views.Declaration,
) error {
	d.Options = d.Options.Normalize()
	if err := d.Options.Validate(d.Name); err != nil {
		return err
	}
	if err := s.checkRefs(d); err != nil {
		return err
	}

	if s.mode == views.ModeEnqueue {
		s.mu.Lock()
		s.queue = append(s.queue, d)
		s.mu.Unlock()
		slog.Debug("Queued view", "view", d.Name)
		return nil
	}

	return s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		return s.apply(ctx, c, d)
	})
}

// checkRefs makes sure declared dependencies are declared views.
func (s *synchronizer) checkRefs(d views.Declaration) error {
	if s.registry == nil {
		return nil
	}
	for _, owner := range d.Options.Dependencies {
		if !s.registry.Resolves(owner) {
			return views.DependencyRefError(d.Name, owner)
		}
	}
	return nil
}

func (s *synchronizer) apply(
	ctx context.Context, c db.Conn, d views.Declaration,
) error {
	rec := views.NewRecord(d)

	old, err := s.meta.Get(ctx, c, d.Name)
	if err != nil {
		return err
	}
	if old != nil && old.Matches(rec) {
		slog.Debug("View is up to date", "view", d.Name)
		return nil
	}

	recreate := d.Options.Materialized
	if !recreate {
		recreate, err = s.replace(ctx, c, d, rec)
		if err != nil {
			return err
		}
	}

	if recreate {
		slog.Info("Recreating view", "view", d.Name,
			"materialized", d.Options.Materialized)
		// The record is saved before dependents are repopulated, their
		// refresh may populate this view too.
		err = pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
			return s.protectDependents(ctx, tx, d.Name,
				func(ctx context.Context, tx db.Conn) error {
					if err := s.dropRelation(ctx, tx, d.Name); err != nil {
						return err
					}
					err := s.createRelation(ctx, tx, d.Name, d.SQL, d.Options)
					if err != nil {
						return err
					}
					if err = s.checkDependencies(ctx, tx, d); err != nil {
						return err
					}
					return s.meta.Set(ctx, tx, d.Name, &rec)
				})
		})
		if err != nil {
			return err
		}
	}

	invalidateStatements(ctx, c)
	slog.Info("View is synchronized", "view", d.Name, "owner", d.Owner)
	return nil
}

// replace tries CREATE OR REPLACE VIEW. It returns true when PostgreSQL
// refuses to replace the view in place and it has to be recreated.
func (s *synchronizer) replace(
	ctx context.Context, c db.Conn, d views.Declaration, rec views.Record,
) (bool, error) {
	err := pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
		q := "CREATE OR REPLACE VIEW " + s.ident(d.Name) + " AS\n" +
			views.TrimSQL(d.SQL)
		if _, err := tx.Exec(ctx, q); err != nil {
			return err
		}
		if err := s.checkDependencies(ctx, tx, d); err != nil {
			return err
		}
		return s.meta.Set(ctx, tx, d.Name, &rec)
	})
	if err == nil {
		slog.Debug("Replaced view in place", "view", d.Name)
		return false, nil
	}
	if isReplaceRejection(err) {
		slog.Info("View cannot be replaced in place",
			"view", d.Name, "reason", err.Error())
		return true, nil
	}
	return false, err
}

// checkDependencies compares declared dependencies with the catalog.
func (s *synchronizer) checkDependencies(
	ctx context.Context, c db.Conn, d views.Declaration,
) error {
	actual, err := s.cat.DirectManagedDependencies(ctx, c, d.Name)
	if err != nil {
		return err
	}
	return views.CheckDependencies(d.Owner, d.Options.Dependencies, actual)
}

// Replace rejections:
// 42P16 invalid_table_definition (columns dropped, renamed or retyped),
// 42804 datatype_mismatch,
// 2BP01 dependent_objects_still_exist,
// 42809 wrong_object_type (a materialized view has the name).
var replaceRejections = []string{"42P16", "42804", "2BP01", "42809"}

func isReplaceRejection(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return slices.Contains(replaceRejections, pgErr.Code)
}

// DropView implements views.Synchronizer.
func (s *synchronizer) DropView(
	ctx context.Context, conn db.Conn, name string,
) error {
	return s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		return s.dropView(ctx, c, name)
	})
}

func (s *synchronizer) dropView(ctx context.Context, c db.Conn, name string) error {
	err := pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
		if err := s.dropRelation(ctx, tx, name); err != nil {
			return err
		}
		return s.meta.Set(ctx, tx, name, nil)
	})
	if err != nil {
		return err
	}
	slog.Info("Dropped view", "view", name)
	return nil
}

// Pending implements views.Synchronizer.
func (s *synchronizer) Pending() []views.Declaration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queue)
}

// Flush implements views.Synchronizer. Declarations that were not
// applied because of an error stay in the queue.
func (s *synchronizer) Flush(ctx context.Context, conn db.Conn) error {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	if len(queue) == 0 {
		return nil
	}

	slog.Info("Applying queued views", "count", len(queue))
	return s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		for i, d := range queue {
			if err := s.apply(ctx, c, d); err != nil {
				s.mu.Lock()
				s.queue = append(slices.Clone(queue[i:]), s.queue...)
				s.mu.Unlock()
				return err
			}
		}
		return nil
	})
}
