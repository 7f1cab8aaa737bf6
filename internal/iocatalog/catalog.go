// Package iocatalog reads PostgreSQL system catalogs to find out what
// views exist in a schema and how they depend on each other.
package iocatalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnames/gnviews/pkg/db"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5"
)

// ConcurrentRefreshVersion is the first server_version_num that
// supports REFRESH MATERIALIZED VIEW CONCURRENTLY.
const ConcurrentRefreshVersion = 90400

// Inspector runs read-only catalog queries for one schema. Managed views
// are the ones that have a row in the metadata table.
type Inspector struct {
	schema string
	meta   string
}

// New creates an Inspector for the schema. metaTable is the name of the
// metadata table in that schema.
func New(schema, metaTable string) *Inspector {
	return &Inspector{
		schema: schema,
		meta:   pgx.Identifier{schema, metaTable}.Sanitize(),
	}
}

// Schema returns the inspected schema.
func (i *Inspector) Schema() string {
	return i.schema
}

// RelationExists is true if a view or a materialized view with the name
// exists.
func (i *Inspector) RelationExists(
	ctx context.Context, c db.Conn, name string,
) (bool, error) {
	q := `
SELECT EXISTS (
  SELECT 1 FROM pg_catalog.pg_views
    WHERE schemaname = $1 AND viewname = $2
  UNION ALL
  SELECT 1 FROM pg_catalog.pg_matviews
    WHERE schemaname = $1 AND matviewname = $2
)`
	var res bool
	err := c.QueryRow(ctx, q, i.schema, name).Scan(&res)
	if err != nil {
		return false, fmt.Errorf("check view %s: %w", name, err)
	}
	return res, nil
}

// IsMaterialized is true if the name belongs to a materialized view.
func (i *Inspector) IsMaterialized(
	ctx context.Context, c db.Conn, name string,
) (bool, error) {
	q := `
SELECT EXISTS (
  SELECT 1 FROM pg_catalog.pg_matviews
    WHERE schemaname = $1 AND matviewname = $2
)`
	var res bool
	err := c.QueryRow(ctx, q, i.schema, name).Scan(&res)
	if err != nil {
		return false, fmt.Errorf("check materialized view %s: %w", name, err)
	}
	return res, nil
}

// IsPopulated returns the population flag of a materialized view.
// It fails with a configuration error if the name is not a materialized
// view.
func (i *Inspector) IsPopulated(
	ctx context.Context, c db.Conn, name string,
) (bool, error) {
	q := `
SELECT ispopulated FROM pg_catalog.pg_matviews
  WHERE schemaname = $1 AND matviewname = $2`
	var res bool
	err := c.QueryRow(ctx, q, i.schema, name).Scan(&res)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, views.NotMaterializedError(name)
	}
	if err != nil {
		return false, fmt.Errorf("check population of %s: %w", name, err)
	}
	return res, nil
}

// DirectManagedDependencies returns sorted owners of managed views the
// query of the view reads directly.
func (i *Inspector) DirectManagedDependencies(
	ctx context.Context, c db.Conn, name string,
) ([]string, error) {
	q := fmt.Sprintf(`
WITH dependencies AS (
  SELECT DISTINCT dc.relname AS name
  FROM pg_catalog.pg_depend d
  JOIN pg_catalog.pg_rewrite r ON r.oid = d.objid
  JOIN pg_catalog.pg_class dc ON dc.oid = d.refobjid
  JOIN pg_catalog.pg_namespace dn ON dn.oid = dc.relnamespace
  WHERE d.classid = 'pg_catalog.pg_rewrite'::regclass
    AND d.refclassid = 'pg_catalog.pg_class'::regclass
    AND d.deptype = 'n'
    AND d.refobjid <> r.ev_class
    AND r.ev_class = to_regclass(quote_ident($1::text) || '.' || quote_ident($2::text))
    AND dn.nspname = $1::text
)
SELECT m.owner
FROM dependencies
JOIN %s m USING (name)
ORDER BY m.owner`, i.meta)

	rows, err := c.Query(ctx, q, i.schema, name)
	if err != nil {
		return nil, fmt.Errorf("query dependencies of %s: %w", name, err)
	}
	res, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read dependencies of %s: %w", name, err)
	}
	return res, nil
}

// DependentsClosure returns managed views that depend on the view
// directly or through other views. Deepest dependents come first, so the
// list can be used to drop them in order, and reversed to create them
// again.
//
// Dependents are found through 'normal' pg_depend records of rewrite
// rules, the same records that make DROP without CASCADE fail.
func (i *Inspector) DependentsClosure(
	ctx context.Context, c db.Conn, name string,
) ([]views.Dependent, error) {
	q := fmt.Sprintf(`
WITH RECURSIVE dependents AS (
  SELECT
    to_regclass(quote_ident($1::text) || '.' || quote_ident($2::text))::oid AS oid,
    0 AS level

  UNION ALL

  SELECT DISTINCT r.ev_class AS oid, dependents.level + 1 AS level
  FROM pg_catalog.pg_depend d
  JOIN pg_catalog.pg_rewrite r ON r.oid = d.objid
  JOIN dependents ON dependents.oid = d.refobjid
  WHERE r.ev_class <> d.refobjid
    AND d.deptype = 'n'
)
SELECT
  cl.relname,
  MIN(m.owner),
  pg_catalog.pg_get_viewdef(dependents.oid),
  MIN(m.options::text)
FROM dependents
JOIN pg_catalog.pg_class cl ON cl.oid = dependents.oid
JOIN pg_catalog.pg_namespace n ON n.oid = cl.relnamespace
JOIN %s m ON m.name = cl.relname
WHERE dependents.level > 0
  AND n.nspname = $1::text
GROUP BY dependents.oid, cl.relname
ORDER BY MAX(dependents.level) DESC, cl.relname`, i.meta)

	rows, err := c.Query(ctx, q, i.schema, name)
	if err != nil {
		return nil, fmt.Errorf("query dependents of %s: %w", name, err)
	}
	defer rows.Close()

	var res []views.Dependent
	for rows.Next() {
		var dep views.Dependent
		var opts string
		err = rows.Scan(&dep.Name, &dep.Owner, &dep.Definition, &opts)
		if err != nil {
			return nil, fmt.Errorf("read dependents of %s: %w", name, err)
		}
		dep.Options, err = views.UnmarshalOptions([]byte(opts))
		if err != nil {
			return nil, fmt.Errorf("decode options of %s: %w", dep.Name, err)
		}
		res = append(res, dep)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read dependents of %s: %w", name, err)
	}
	return res, nil
}

// HasUniqueIndex is true if the relation has at least one unique index,
// a requirement of concurrent refresh.
func (i *Inspector) HasUniqueIndex(
	ctx context.Context, c db.Conn, name string,
) (bool, error) {
	q := `
SELECT EXISTS (
  SELECT 1
  FROM pg_catalog.pg_index ix
  JOIN pg_catalog.pg_class cl ON cl.oid = ix.indrelid
  JOIN pg_catalog.pg_namespace n ON n.oid = cl.relnamespace
  WHERE n.nspname = $1 AND cl.relname = $2 AND ix.indisunique
)`
	var res bool
	err := c.QueryRow(ctx, q, i.schema, name).Scan(&res)
	if err != nil {
		return false, fmt.Errorf("check unique index of %s: %w", name, err)
	}
	return res, nil
}

// ServerVersion returns server_version_num, for example 160002.
func (i *Inspector) ServerVersion(
	ctx context.Context, c db.Conn,
) (int, error) {
	var res int
	q := "SELECT current_setting('server_version_num')::int"
	if err := c.QueryRow(ctx, q).Scan(&res); err != nil {
		return 0, fmt.Errorf("get server version: %w", err)
	}
	return res, nil
}

// SupportsConcurrentRefresh is true for PostgreSQL 9.4 and later.
func (i *Inspector) SupportsConcurrentRefresh(
	ctx context.Context, c db.Conn,
) (bool, error) {
	v, err := i.ServerVersion(ctx, c)
	if err != nil {
		return false, err
	}
	return v >= ConcurrentRefreshVersion, nil
}
