package iodecl

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
)

// ManifestError is returned when the views manifest cannot be read or
// describes invalid declarations.
func ManifestError(path string, err error) error {
	msg := `Cannot load views manifest <em>%s</em>

<em>Possible causes:</em>
  - File does not exist
  - Invalid YAML format
  - A view has no name, or has both or none of sql and sql_file
  - Dependencies form a cycle

<em>How to fix:</em>
  1. Check the path in <em>views.manifest</em> of config.yaml
  2. Validate YAML syntax`

	if path == "" {
		path = "(in memory)"
	}
	return &gn.Error{
		Code: errcode.DeclManifestError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot load views manifest: %w", err),
	}
}

// SQLFileError is returned when a SQL file of a declaration cannot be
// read.
func SQLFileError(name, path string, err error) error {
	msg := "Cannot read SQL of view <em>%s</em> from <em>%s</em>"
	return &gn.Error{
		Code: errcode.DeclSQLFileError,
		Msg:  msg,
		Vars: []any{name, path},
		Err:  fmt.Errorf("cannot read SQL file %s: %w", path, err),
	}
}

// TemplateError is returned when a SQL template cannot be expanded.
func TemplateError(name, path string, err error) error {
	msg := `Cannot expand SQL template of view <em>%s</em>

<em>Template:</em> %s

Variables are available as <em>{{.Vars.name}}</em>, every variable
used by the template must be defined in <em>vars</em> of the manifest.`
	return &gn.Error{
		Code: errcode.DeclTemplateError,
		Msg:  msg,
		Vars: []any{name, path},
		Err:  fmt.Errorf("cannot expand template %s: %w", path, err),
	}
}

// DuplicateError is returned when two declarations share a name or an
// owner.
func DuplicateError(field, value string) error {
	msg := "Views manifest declares %s <em>%s</em> more than once"
	return &gn.Error{
		Code: errcode.DeclDuplicateError,
		Msg:  msg,
		Vars: []any{field, value},
		Err:  fmt.Errorf("duplicate view %s '%s'", field, value),
	}
}
