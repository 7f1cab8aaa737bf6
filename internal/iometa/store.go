// Package iometa keeps records of managed views in a PostgreSQL table.
// GORM migrator keeps the table layout current, reads and writes go
// through pgx on the connection given by the caller, so they become part
// of the caller's transaction.
package iometa

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gnames/gnviews/pkg/db"
	"github.com/gnames/gnviews/pkg/schema"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads and writes records of managed views.
type Store struct {
	schema string
	table  string
	ident  string
}

// Open makes sure the schema and the metadata table exist and have the
// current layout, and returns a Store for them.
func Open(ctx context.Context, pool *pgxpool.Pool, schemaName string) (*Store, error) {
	if pool == nil {
		return nil, NotConnectedError()
	}

	if err := ensureSchema(ctx, pool, schemaName); err != nil {
		return nil, err
	}

	gormDB, err := openGORM(pool)
	if err != nil {
		return nil, err
	}
	if err = migrate(gormDB.WithContext(ctx), schemaName); err != nil {
		return nil, err
	}

	return New(schemaName), nil
}

// New returns a Store for a metadata table that is known to be current.
func New(schemaName string) *Store {
	table := schema.ManagedView{}.TableName()
	return &Store{
		schema: schemaName,
		table:  table,
		ident:  pgx.Identifier{schemaName, table}.Sanitize(),
	}
}

// Table returns the name of the metadata table.
func (s *Store) Table() string {
	return s.table
}

const columns = "name, owner, checksum, options::text, refreshed_at"

func scanRecord(row pgx.Row) (views.Record, error) {
	var res views.Record
	var opts string
	err := row.Scan(&res.Name, &res.Owner, &res.Checksum, &opts, &res.RefreshedAt)
	if err != nil {
		return res, err
	}
	res.Options, err = views.UnmarshalOptions([]byte(opts))
	if err != nil {
		return res, DecodeError(res.Name, err)
	}
	if res.RefreshedAt != nil {
		t := res.RefreshedAt.UTC()
		res.RefreshedAt = &t
	}
	return res, nil
}

// Get returns the record of a view, or nil if the view is not managed.
func (s *Store) Get(ctx context.Context, c db.Conn, name string) (*views.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE name = $1", columns, s.ident)
	res, err := scanRecord(c.QueryRow(ctx, q, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record of %s: %w", name, err)
	}
	return &res, nil
}

// Set creates or replaces the record of a view. A nil record deletes it.
func (s *Store) Set(ctx context.Context, c db.Conn, name string, rec *views.Record) error {
	if rec == nil {
		q := fmt.Sprintf("DELETE FROM %s WHERE name = $1", s.ident)
		if _, err := c.Exec(ctx, q, name); err != nil {
			return fmt.Errorf("delete record of %s: %w", name, err)
		}
		return nil
	}

	opts, err := views.MarshalOptions(rec.Options)
	if err != nil {
		return fmt.Errorf("encode options of %s: %w", name, err)
	}

	q := fmt.Sprintf(`
INSERT INTO %s (name, owner, checksum, options, refreshed_at)
VALUES ($1, $2, $3, $4::json, $5)
ON CONFLICT (name) DO UPDATE SET
  owner = EXCLUDED.owner,
  checksum = EXCLUDED.checksum,
  options = EXCLUDED.options,
  refreshed_at = EXCLUDED.refreshed_at`, s.ident)

	var refreshed any
	if rec.RefreshedAt != nil {
		refreshed = rec.RefreshedAt.UTC()
	}
	_, err = c.Exec(ctx, q, name, rec.Owner, rec.Checksum, string(opts), refreshed)
	if err != nil {
		return fmt.Errorf("set record of %s: %w", name, err)
	}
	return nil
}

// Touch stamps the refresh time of a view with the current UTC time.
func (s *Store) Touch(ctx context.Context, c db.Conn, name string) error {
	q := fmt.Sprintf(
		"UPDATE %s SET refreshed_at = (now() AT TIME ZONE 'UTC') WHERE name = $1",
		s.ident,
	)
	if _, err := c.Exec(ctx, q, name); err != nil {
		return fmt.Errorf("touch record of %s: %w", name, err)
	}
	return nil
}

// Names returns sorted names of all managed views.
func (s *Store) Names(ctx context.Context, c db.Conn) ([]string, error) {
	q := fmt.Sprintf("SELECT name FROM %s ORDER BY name", s.ident)
	rows, err := c.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list managed views: %w", err)
	}
	res, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list managed views: %w", err)
	}
	return res, nil
}

// List returns all records sorted by name.
func (s *Store) List(ctx context.Context, c db.Conn) ([]views.Record, error) {
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY name", columns, s.ident)
	rows, err := c.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list managed views: %w", err)
	}
	defer rows.Close()

	var res []views.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list managed views: %w", err)
	}
	return res, nil
}

// NameByOwner finds the name of the view declared by the owner.
func (s *Store) NameByOwner(
	ctx context.Context, c db.Conn, owner string,
) (string, bool, error) {
	q := fmt.Sprintf("SELECT name FROM %s WHERE owner = $1", s.ident)
	var res string
	err := c.QueryRow(ctx, q, owner).Scan(&res)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find view of %s: %w", owner, err)
	}
	return res, true, nil
}

// Export writes all records as data of the metadata table for a
// structure dump.
func (s *Store) Export(ctx context.Context, c db.Conn, w io.Writer) error {
	recs, err := s.List(ctx, c)
	if err != nil {
		return err
	}
	dump, err := FormatDump(s.schema, s.table, recs)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(w, dump); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}
