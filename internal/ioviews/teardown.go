package ioviews

import (
	"context"
	"log/slog"

	"github.com/gnames/gnviews/pkg/db"
	"github.com/jackc/pgx/v5"
)

// DropAllViews implements views.Synchronizer.
func (s *synchronizer) DropAllViews(ctx context.Context, conn db.Conn) error {
	return s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		names, err := s.meta.Names(ctx, c)
		if err != nil {
			return err
		}

		// all or nothing: an unmanaged dependent rolls back every drop
		dropped := make(map[string]struct{})
		err = pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
			for _, name := range names {
				if err := s.dropWithDependents(ctx, tx, name, dropped); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		slog.Info("Dropped all managed views", "count", len(dropped))
		return nil
	})
}

// DropUnregistered implements views.Synchronizer.
func (s *synchronizer) DropUnregistered(
	ctx context.Context, conn db.Conn,
) ([]string, error) {
	if s.registry == nil {
		return nil, nil
	}

	var res []string
	err := s.iso.Run(ctx, conn, func(ctx context.Context, c db.Conn) error {
		recs, err := s.meta.List(ctx, c)
		if err != nil {
			return err
		}

		dropped := make(map[string]struct{})
		err = pgx.BeginFunc(ctx, c, func(tx pgx.Tx) error {
			for _, rec := range recs {
				if s.registry.Resolves(rec.Owner) {
					continue
				}
				if _, ok := dropped[rec.Name]; ok {
					continue
				}
				slog.Info("Dropping view that is not declared anymore",
					"view", rec.Name, "owner", rec.Owner)
				err := s.dropWithDependents(ctx, tx, rec.Name, dropped)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, rec := range recs {
			if _, ok := dropped[rec.Name]; ok {
				res = append(res, rec.Name)
			}
		}
		return nil
	})
	return res, err
}

// dropWithDependents drops managed dependents of a view depth first and
// then the view itself. Records of views that do not exist anymore are
// removed.
func (s *synchronizer) dropWithDependents(
	ctx context.Context,
	c db.Conn,
	name string,
	dropped map[string]struct{},
) error {
	if _, ok := dropped[name]; ok {
		return nil
	}

	exists, err := s.cat.RelationExists(ctx, c, name)
	if err != nil {
		return err
	}
	if !exists {
		slog.Warn("Removing record of missing view", "view", name)
		if err = s.meta.Set(ctx, c, name, nil); err != nil {
			return err
		}
		dropped[name] = struct{}{}
		return nil
	}

	deps, err := s.cat.DependentsClosure(ctx, c, name)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if err = s.dropWithDependents(ctx, c, dep.Name, dropped); err != nil {
			return err
		}
	}

	if err = s.dropView(ctx, c, name); err != nil {
		return err
	}
	dropped[name] = struct{}{}
	return nil
}
