package ioviews

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gnames/gnviews/pkg/db"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5"
)

// protectDependents drops managed views that depend on name, calls
// mutate and creates the dependents again from their current
// definitions. Dependents are dropped deepest first and created in the
// reverse order, each in its own nested transaction.
//
// A dependent that cannot be created again is skipped if its owner is not
// declared anymore. Otherwise the error is returned.
func (s *synchronizer) protectDependents(
	ctx context.Context,
	c db.Conn,
	name string,
	mutate func(context.Context, db.Conn) error,
) error {
	exists, err := s.cat.RelationExists(ctx, c, name)
	if err != nil {
		return err
	}
	if !exists {
		return mutate(ctx, c)
	}

	deps, err := s.cat.DependentsClosure(ctx, c, name)
	if err != nil {
		return err
	}

	saved := make(map[string]*views.Record, len(deps))
	populated := make(map[string]bool)
	for _, dep := range deps {
		rec, err := s.meta.Get(ctx, c, dep.Name)
		if err != nil {
			return err
		}
		saved[dep.Name] = rec

		if dep.Options.Materialized {
			ok, err := s.cat.IsPopulated(ctx, c, dep.Name)
			if err != nil {
				return err
			}
			populated[dep.Name] = ok
		}

		slog.Info("Dropping dependent view", "view", dep.Name, "dependency", name)
		if err = s.dropRelation(ctx, c, dep.Name); err != nil {
			return err
		}
		if err = s.meta.Set(ctx, c, dep.Name, nil); err != nil {
			return err
		}
	}

	if err = mutate(ctx, c); err != nil {
		return err
	}

	var rebuilt []string
	for i := len(deps) - 1; i >= 0; i-- {
		dep := deps[i]
		err = pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
			err := s.createRelation(ctx, tx, dep.Name, dep.Definition, dep.Options)
			if err != nil {
				return err
			}
			if rec := saved[dep.Name]; rec != nil {
				return s.meta.Set(ctx, tx, dep.Name, rec)
			}
			return nil
		})

		if err != nil {
			if s.registry != nil && !s.registry.Resolves(dep.Owner) {
				slog.Warn("Dependent view is not declared anymore, skipping it",
					"view", dep.Name, "owner", dep.Owner, "error", err.Error())
				continue
			}
			return err
		}

		slog.Info("Recreated dependent view", "view", dep.Name)
		if populated[dep.Name] {
			rebuilt = append(rebuilt, dep.Name)
		}
	}

	visited := make(map[string]struct{})
	for _, v := range rebuilt {
		if err = s.ensurePopulated(ctx, c, v, visited); err != nil {
			return err
		}
	}

	return nil
}

// createRelation creates a view with its indexes.
func (s *synchronizer) createRelation(
	ctx context.Context,
	c db.Conn,
	name, sql string,
	opts views.Options,
) error {
	var q string
	sql = views.TrimSQL(sql)
	if opts.Materialized {
		q = "CREATE MATERIALIZED VIEW " + s.ident(name) + " AS\n" +
			sql + "\nWITH NO DATA"
	} else {
		q = "CREATE VIEW " + s.ident(name) + " AS\n" + sql
	}
	if _, err := c.Exec(ctx, q); err != nil {
		return err
	}

	for _, col := range opts.Indexes {
		q = "CREATE INDEX " +
			pgx.Identifier{name + "_" + col + "_index"}.Sanitize() +
			" ON " + s.ident(name) + " (" + pgx.Identifier{col}.Sanitize() + ")"
		if _, err := c.Exec(ctx, q); err != nil {
			return err
		}
	}

	if len(opts.UniqueColumns) > 0 {
		cols := make([]string, len(opts.UniqueColumns))
		for i, col := range opts.UniqueColumns {
			cols[i] = pgx.Identifier{col}.Sanitize()
		}
		q = "CREATE UNIQUE INDEX " + pgx.Identifier{name + "_pkey"}.Sanitize() +
			" ON " + s.ident(name) + " (" + strings.Join(cols, ", ") + ")"
		if _, err := c.Exec(ctx, q); err != nil {
			return err
		}
	}

	return nil
}

// dropRelation drops a view or a materialized view if it exists.
// Unmanaged dependents make it fail.
func (s *synchronizer) dropRelation(ctx context.Context, c db.Conn, name string) error {
	mat, err := s.cat.IsMaterialized(ctx, c, name)
	if err != nil {
		return err
	}
	q := "DROP VIEW IF EXISTS "
	if mat {
		q = "DROP MATERIALIZED VIEW IF EXISTS "
	}
	_, err = c.Exec(ctx, q+s.ident(name))
	return err
}

// ident returns a schema qualified quoted name of a relation.
func (s *synchronizer) ident(name string) string {
	return pgx.Identifier{s.cat.Schema(), name}.Sanitize()
}
