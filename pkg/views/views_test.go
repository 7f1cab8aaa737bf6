package views_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnviews/pkg/errcode"
	"github.com/gnames/gnviews/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	assert := assert.New(t)
	a := views.Checksum("SELECT 1 AS id")
	assert.Equal(a, views.Checksum("SELECT 1 AS id"))
	assert.NotEqual(a, views.Checksum("SELECT 2 AS id"))
	assert.Len(a, 36)
}

func TestTrimSQL(t *testing.T) {
	tests := []struct {
		msg, sql, res string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"semicolon", "SELECT 1;", "SELECT 1"},
		{"spaces", "  SELECT 1 ;\n\n", "SELECT 1"},
		{"several", "SELECT 1;;", "SELECT 1"},
		{"inner", "SELECT ';' AS x", "SELECT ';' AS x"},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, views.TrimSQL(v.sql), v.msg)
	}
}

func TestRecordMatches(t *testing.T) {
	d := views.Declaration{
		Name:    "totals",
		Owner:   "Totals",
		SQL:     "SELECT 1 AS id",
		Options: views.Options{Indexes: []string{"id"}},
	}
	rec := views.NewRecord(d)

	t.Run("same declaration", func(t *testing.T) {
		assert.True(t, rec.Matches(views.NewRecord(d)))
	})

	t.Run("sql change", func(t *testing.T) {
		d2 := d
		d2.SQL = "SELECT 2 AS id"
		assert.False(t, rec.Matches(views.NewRecord(d2)))
	})

	t.Run("owner change", func(t *testing.T) {
		d2 := d
		d2.Owner = "Sums"
		assert.False(t, rec.Matches(views.NewRecord(d2)))
	})

	t.Run("options change", func(t *testing.T) {
		d2 := d
		d2.Options = views.Options{Materialized: true, Indexes: []string{"id"}}
		assert.False(t, rec.Matches(views.NewRecord(d2)))
	})

	t.Run("refresh time is ignored", func(t *testing.T) {
		rec2 := views.NewRecord(d)
		assert.Nil(t, rec2.RefreshedAt)
		now := time.Now().UTC()
		rec2.RefreshedAt = &now
		assert.True(t, rec.Matches(rec2))
	})
}

func TestRegistryFunc(t *testing.T) {
	var reg views.Registry = views.RegistryFunc(func(owner string) bool {
		return owner == "Known"
	})
	assert.True(t, reg.Resolves("Known"))
	assert.False(t, reg.Resolves("Gone"))
}

func TestModes(t *testing.T) {
	tests := []struct {
		s    string
		mode views.RefreshMode
		err  bool
	}{
		{"never", views.RefreshNever, false},
		{"ALWAYS", views.RefreshAlways, false},
		{"auto", views.RefreshAuto, false},
		{"", views.RefreshAuto, false},
		{"often", views.RefreshAuto, true},
	}
	for _, v := range tests {
		res, err := views.ParseRefreshMode(v.s)
		if v.err {
			assert.Error(t, err, v.s)
			continue
		}
		require.NoError(t, err, v.s)
		assert.Equal(t, v.mode, res, v.s)
	}
	assert.Equal(t, "always", views.RefreshAlways.String())

	m, err := views.ParseMode("enqueue")
	require.NoError(t, err)
	assert.Equal(t, views.ModeEnqueue, m)
	assert.Equal(t, "enqueue", m.String())
	_, err = views.ParseMode("later")
	assert.Error(t, err)
}

func TestNotMaterializedError(t *testing.T) {
	err := views.NotMaterializedError("totals")
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.ViewNotMaterializedError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "totals is not a materialized view")
}
