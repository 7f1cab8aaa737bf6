package views

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
)

// UnknownOptionError is returned when a declaration uses an option that
// is not supported.
func UnknownOptionError(name, key string) error {
	msg := `Unknown option <em>%s</em> of view <em>%s</em>

<em>Valid options:</em>
  dependencies, indexes, materialized, unique_columns`
	return &gn.Error{
		Code: errcode.ViewOptionsError,
		Msg:  msg,
		Vars: []any{key, name},
		Err:  fmt.Errorf("unknown option '%s' of view '%s'", key, name),
	}
}

// OptionValueError is returned when an option has a value of a wrong type.
func OptionValueError(name string, err error) error {
	msg := "Invalid options of view <em>%s</em>"
	return &gn.Error{
		Code: errcode.ViewOptionsError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("invalid options of view '%s': %w", name, err),
	}
}

// UniqueColumnsError is returned when unique_columns are given for a
// plain view.
func UniqueColumnsError(name string) error {
	msg := "View <em>%s</em>: unique_columns option requires view to be materialized"
	return &gn.Error{
		Code: errcode.ViewOptionsError,
		Msg:  msg,
		Vars: []any{name},
		Err: fmt.Errorf(
			"unique_columns option requires view to be materialized (%s)", name,
		),
	}
}

// IndexesError is returned when indexes are given for a plain view.
func IndexesError(name string) error {
	msg := "View <em>%s</em>: indexes option requires view to be materialized"
	return &gn.Error{
		Code: errcode.ViewOptionsError,
		Msg:  msg,
		Vars: []any{name},
		Err: fmt.Errorf(
			"indexes option requires view to be materialized (%s)", name,
		),
	}
}

// DependencyRefError is returned when a declared dependency does not name
// a known declaration.
func DependencyRefError(name, owner string) error {
	msg := `View <em>%s</em> declares unknown dependency <em>%s</em>

Dependencies must be owners of other declared views.`
	return &gn.Error{
		Code: errcode.ViewDependencyRefError,
		Msg:  msg,
		Vars: []any{name, owner},
		Err: fmt.Errorf("dependency '%s' of view '%s' is not a declared view",
			owner, name),
	}
}

// NotMaterializedError is returned when a materialized view operation is
// called on a plain view or on a missing relation.
func NotMaterializedError(name string) error {
	msg := "<em>%s</em> is not a materialized view"
	return &gn.Error{
		Code: errcode.ViewNotMaterializedError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("invalid argument: %s is not a materialized view", name),
	}
}

// NotFoundError is returned when a view is not managed.
func NotFoundError(name string) error {
	msg := "View <em>%s</em> is not managed by gnviews"
	return &gn.Error{
		Code: errcode.ViewNotFoundError,
		Msg:  msg,
		Vars: []any{name},
		Err:  fmt.Errorf("view '%s' is not managed", name),
	}
}
