package views_test

import (
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		msg  string
		opts views.Options
		err  bool
	}{
		{"empty", views.Options{}, false},
		{"materialized", views.Options{Materialized: true}, false},
		{
			"unique columns on materialized",
			views.Options{Materialized: true, UniqueColumns: []string{"id"}},
			false,
		},
		{
			"unique columns on plain view",
			views.Options{UniqueColumns: []string{"id"}},
			true,
		},
		{
			"indexes on materialized",
			views.Options{Materialized: true, Indexes: []string{"year"}},
			false,
		},
		{
			"indexes on plain view",
			views.Options{Indexes: []string{"year"}},
			true,
		},
		{
			"empty dependency",
			views.Options{Dependencies: []string{""}},
			true,
		},
	}

	for _, v := range tests {
		err := v.opts.Validate("totals")
		if !v.err {
			assert.NoError(t, err, v.msg)
			continue
		}
		require.Error(t, err, v.msg)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok, v.msg)
		assert.Equal(t, errcode.ViewOptionsError, gnErr.Code, v.msg)
	}

	err := views.Options{UniqueColumns: []string{"id"}}.Validate("totals")
	gnErr := err.(*gn.Error)
	assert.Contains(t, gnErr.Err.Error(),
		"unique_columns option requires view to be materialized")

	err = views.Options{Indexes: []string{"year"}}.Validate("totals")
	gnErr = err.(*gn.Error)
	assert.Contains(t, gnErr.Err.Error(),
		"indexes option requires view to be materialized")
}

func TestOptionsNormalize(t *testing.T) {
	opts := views.Options{
		Indexes:      []string{},
		Dependencies: []string{"Orders", "Accounts", "Orders"},
	}
	res := opts.Normalize()
	assert.Nil(t, res.Indexes)
	assert.Equal(t, []string{"Accounts", "Orders"}, res.Dependencies)
	// original is untouched
	assert.Equal(t, []string{"Orders", "Accounts", "Orders"}, opts.Dependencies)
}

func TestOptionsEqual(t *testing.T) {
	a := views.Options{Materialized: true, Indexes: []string{}}
	b := views.Options{Materialized: true}
	assert.True(t, a.Equal(b))

	c := views.Options{Materialized: true, UniqueColumns: []string{"id"}}
	assert.False(t, b.Equal(c))

	d := views.Options{Dependencies: []string{"A"}}
	assert.False(t, d.Equal(views.Options{Dependencies: []string{"B"}}))
}

func TestOptionsFromMap(t *testing.T) {
	t.Run("valid map", func(t *testing.T) {
		m := map[string]any{
			"materialized":   true,
			"unique_columns": []any{"id"},
			"indexes":        []any{"name", "year"},
			"dependencies":   []any{"Orders", "Accounts"},
		}
		res, err := views.OptionsFromMap("totals", m)
		require.NoError(t, err)
		assert.True(t, res.Materialized)
		assert.Equal(t, []string{"id"}, res.UniqueColumns)
		assert.Equal(t, []string{"name", "year"}, res.Indexes)
		assert.Equal(t, []string{"Accounts", "Orders"}, res.Dependencies)
	})

	t.Run("empty map", func(t *testing.T) {
		res, err := views.OptionsFromMap("totals", nil)
		require.NoError(t, err)
		assert.True(t, res.Equal(views.Options{}))
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := views.OptionsFromMap("totals", map[string]any{"cached": true})
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.ViewOptionsError, gnErr.Code)
		assert.Equal(t, []any{"cached", "totals"}, gnErr.Vars)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := views.OptionsFromMap("totals", map[string]any{"indexes": 5})
		require.Error(t, err)
	})
}

func TestOptionsJSON(t *testing.T) {
	bs, err := views.MarshalOptions(views.Options{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(bs))

	opts := views.Options{
		Materialized:  true,
		UniqueColumns: []string{"id"},
		Dependencies:  []string{"Accounts"},
	}
	bs, err = views.MarshalOptions(opts)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"materialized":true,"unique_columns":["id"],"dependencies":["Accounts"]}`,
		string(bs))

	res, err := views.UnmarshalOptions(bs)
	require.NoError(t, err)
	assert.True(t, opts.Equal(res))

	res, err = views.UnmarshalOptions(nil)
	require.NoError(t, err)
	assert.True(t, res.Equal(views.Options{}))
}
