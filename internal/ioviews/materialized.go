package ioviews

import (
	"context"
	"log/slog"

	"github.com/gnames/gnviews/pkg/db"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5"
)

// Refresh implements views.Synchronizer.
func (s *synchronizer) Refresh(
	ctx context.Context, conn db.Conn, name string, mode views.RefreshMode,
) error {
	return s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		populated, err := s.cat.IsPopulated(ctx, c, name)
		if err != nil {
			return err
		}

		concurrently, err := s.concurrently(ctx, c, name, mode, populated)
		if err != nil {
			return err
		}
		return s.refresh(ctx, c, name, concurrently)
	})
}

// concurrently decides how to refresh a view.
func (s *synchronizer) concurrently(
	ctx context.Context,
	c db.Conn,
	name string,
	mode views.RefreshMode,
	populated bool,
) (bool, error) {
	switch mode {
	case views.RefreshNever:
		return false, nil
	case views.RefreshAlways:
		return true, nil
	}

	if !populated {
		return false, nil
	}
	ok, err := s.cat.SupportsConcurrentRefresh(ctx, c)
	if err != nil || !ok {
		return false, err
	}
	return s.cat.HasUniqueIndex(ctx, c, name)
}

// refresh refreshes a materialized view and stamps its refresh time in
// one transaction.
func (s *synchronizer) refresh(
	ctx context.Context, c db.Conn, name string, concurrently bool,
) error {
	q := "REFRESH MATERIALIZED VIEW "
	if concurrently {
		q += "CONCURRENTLY "
	}
	q += s.ident(name)

	err := pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q); err != nil {
			return err
		}
		return s.meta.Touch(ctx, tx, name)
	})
	if err != nil {
		return err
	}

	invalidateStatements(ctx, c)
	slog.Info("Refreshed materialized view",
		"view", name, "concurrently", concurrently)
	return nil
}

// EnsurePopulated implements views.Synchronizer.
func (s *synchronizer) EnsurePopulated(
	ctx context.Context, conn db.Conn, name string,
) error {
	return s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		return s.ensurePopulated(ctx, c, name, make(map[string]struct{}))
	})
}

// ensurePopulated populates managed dependencies of a view first and
// then the view, if it is a materialized view without data.
func (s *synchronizer) ensurePopulated(
	ctx context.Context,
	c db.Conn,
	name string,
	visited map[string]struct{},
) error {
	if _, ok := visited[name]; ok {
		return nil
	}
	visited[name] = struct{}{}

	rec, err := s.meta.Get(ctx, c, name)
	if err != nil {
		return err
	}
	if rec != nil {
		for _, owner := range rec.Options.Dependencies {
			depName, ok, err := s.meta.NameByOwner(ctx, c, owner)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err = s.ensurePopulated(ctx, c, depName, visited); err != nil {
				return err
			}
		}
	}

	mat, err := s.cat.IsMaterialized(ctx, c, name)
	if err != nil || !mat {
		return err
	}
	populated, err := s.cat.IsPopulated(ctx, c, name)
	if err != nil || populated {
		return err
	}
	return s.refresh(ctx, c, name, false)
}

// invalidateStatements forgets prepared statements of the connection, so
// statements prepared before a view changed do not return stale result
// types. Pools are left alone.
func invalidateStatements(ctx context.Context, c db.Conn) {
	var conn *pgx.Conn
	switch v := c.(type) {
	case *pgx.Conn:
		conn = v
	case interface{ Conn() *pgx.Conn }:
		conn = v.Conn()
	}
	if conn == nil || conn.PgConn().TxStatus() != 'I' {
		return
	}
	if err := conn.DeallocateAll(ctx); err != nil {
		slog.Warn("Cannot deallocate prepared statements", "error", err.Error())
	}
}
