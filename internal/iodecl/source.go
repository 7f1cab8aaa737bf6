// Package iodecl reads view declarations from a YAML manifest and the SQL
// files it points to.
//
// Manifest layout:
//
//	vars:
//	  min_year: 1990
//	views:
//	  - name: accounts_v
//	    sql: SELECT id, login FROM accounts
//	  - name: recent_mv
//	    owner: Recent
//	    sql_file: sql/recent.sql.tmpl
//	    options:
//	      materialized: true
//	      unique_columns: [id]
//	      dependencies: [accounts_v]
//
// SQL files ending with ".tmpl" are expanded with text/template. The
// template receives Name, Owner and Vars of the declaration.
package iodecl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gnames/gnviews/pkg/views"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type manifest struct {
	Vars  map[string]any `yaml:"vars"`
	Views []entry        `yaml:"views"`
}

type entry struct {
	Name    string         `yaml:"name"`
	Owner   string         `yaml:"owner"`
	SQL     string         `yaml:"sql"`
	SQLFile string         `yaml:"sql_file"`
	Options map[string]any `yaml:"options"`
}

// Source keeps declarations of one manifest in dependency order.
type Source struct {
	path   string
	decls  []views.Declaration
	owners map[string]struct{}
	byName map[string]int
}

// Load reads the manifest at path and SQL files it refers to. Relative
// file paths are resolved against the directory of the manifest. Up to
// jobs files are read at the same time.
func Load(ctx context.Context, path string, jobs int) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ManifestError(path, err)
	}
	return parse(ctx, path, data, filepath.Dir(path), jobs)
}

// Parse reads a manifest from memory. Relative SQL file paths are resolved
// against dir.
func Parse(ctx context.Context, data []byte, dir string, jobs int) (*Source, error) {
	return parse(ctx, "", data, dir, jobs)
}

func parse(
	ctx context.Context,
	path string,
	data []byte,
	dir string,
	jobs int,
) (*Source, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, ManifestError(path, err)
	}

	decls := make([]views.Declaration, len(m.Views))
	for i, e := range m.Views {
		d, err := e.declaration(path)
		if err != nil {
			return nil, err
		}
		decls[i] = d
	}

	res := &Source{
		path:   path,
		owners: make(map[string]struct{}, len(decls)),
		byName: make(map[string]int, len(decls)),
	}
	for i, d := range decls {
		if _, ok := res.byName[d.Name]; ok {
			return nil, DuplicateError("name", d.Name)
		}
		if _, ok := res.owners[d.Owner]; ok {
			return nil, DuplicateError("owner", d.Owner)
		}
		res.byName[d.Name] = i
		res.owners[d.Owner] = struct{}{}
	}
	for _, d := range decls {
		for _, dep := range d.Options.Dependencies {
			if _, ok := res.owners[dep]; !ok {
				return nil, views.DependencyRefError(d.Name, dep)
			}
		}
	}

	err := readSQL(ctx, m, decls, dir, jobs)
	if err != nil {
		return nil, err
	}

	if res.decls, err = sortByDependencies(path, decls); err != nil {
		return nil, err
	}
	for i, d := range res.decls {
		res.byName[d.Name] = i
	}
	return res, nil
}

func (e entry) declaration(path string) (views.Declaration, error) {
	var res views.Declaration
	if e.Name == "" {
		return res, ManifestError(path, fmt.Errorf("view without a name"))
	}
	if (e.SQL == "") == (e.SQLFile == "") {
		return res, ManifestError(path,
			fmt.Errorf("view '%s' needs either sql or sql_file", e.Name))
	}

	opts, err := views.OptionsFromMap(e.Name, e.Options)
	if err != nil {
		return res, err
	}
	if err = opts.Validate(e.Name); err != nil {
		return res, err
	}

	res = views.Declaration{
		Name:    e.Name,
		Owner:   e.Owner,
		SQL:     e.SQL,
		Options: opts,
	}
	if res.Owner == "" {
		res.Owner = e.Name
	}
	return res, nil
}

// readSQL fills SQL of declarations that point to files.
func readSQL(
	ctx context.Context,
	m manifest,
	decls []views.Declaration,
	dir string,
	jobs int,
) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))

	for i, e := range m.Views {
		if e.SQLFile == "" {
			continue
		}
		path := e.SQLFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			sql, err := readFile(path, templateData{
				Name:  decls[i].Name,
				Owner: decls[i].Owner,
				Vars:  m.Vars,
			})
			if err != nil {
				return err
			}
			decls[i].SQL = sql
			return nil
		})
	}

	return g.Wait()
}

// Path returns the manifest path, empty for manifests parsed from memory.
func (s *Source) Path() string {
	return s.path
}

// Declarations returns declarations sorted so that dependencies come
// before views that read from them.
func (s *Source) Declarations() []views.Declaration {
	res := make([]views.Declaration, len(s.decls))
	copy(res, s.decls)
	return res
}

// Resolves is true if a declaration with the owner exists.
func (s *Source) Resolves(owner string) bool {
	_, ok := s.owners[owner]
	return ok
}

// Lookup finds a declaration by view name.
func (s *Source) Lookup(name string) (views.Declaration, bool) {
	i, ok := s.byName[name]
	if !ok {
		return views.Declaration{}, false
	}
	return s.decls[i], true
}
