package iometa

import (
	"testing"
	"time"

	"github.com/gnames/gnviews/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDump(t *testing.T) {
	refreshed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	recs := []views.Record{
		{
			Name:        "users_mv",
			Owner:       "Users\tMV",
			Checksum:    "c2",
			Options:     views.Options{Materialized: true},
			RefreshedAt: &refreshed,
		},
		{
			Name:     "accounts_v",
			Owner:    "Accounts",
			Checksum: "c1",
		},
	}

	res, err := FormatDump("public", "managed_views", recs)
	require.NoError(t, err)

	exp := `COPY "public"."managed_views" (name, owner, checksum, options, refreshed_at) FROM stdin;
accounts_v	Accounts	c1	{}	\N
users_mv	Users\tMV	c2	{"materialized":true}	\N
\.
`
	assert.Equal(t, exp, res)
	assert.Equal(t, "users_mv", recs[0].Name, "input is not reordered")
}

func TestCopyEscape(t *testing.T) {
	tests := []struct {
		msg, in, out string
	}{
		{"plain", "abc", "abc"},
		{"backslash", `a\b`, `a\\b`},
		{"newline", "a\nb", `a\nb`},
		{"tab", "a\tb", `a\tb`},
		{"carriage return", "a\rb", `a\rb`},
	}
	for _, v := range tests {
		assert.Equal(t, v.out, copyEscape(v.in), v.msg)
	}
}

func TestSchemaVersionString(t *testing.T) {
	assert.Equal(t, "legacy", SchemaLegacy.String())
	assert.Equal(t, "current", SchemaCurrent.String())
	assert.Equal(t, "SchemaVersion(42)", SchemaVersion(42).String())
}
