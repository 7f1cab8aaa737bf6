package views_test

import (
	"errors"
	"testing"

	"github.com/gnames/gnviews/pkg/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDependencies(t *testing.T) {
	tests := []struct {
		msg      string
		declared []string
		actual   []string
		missing  []string
		extra    []string
		text     string
	}{
		{
			msg:      "exact set",
			declared: []string{"Orders", "Accounts"},
			actual:   []string{"Accounts", "Orders"},
		},
		{
			msg: "no dependencies",
		},
		{
			msg:     "one missing",
			actual:  []string{"Accounts"},
			missing: []string{"Accounts"},
			text: "Accounts must be specified as a dependency of Report: " +
				"`dependencies: [Accounts]`",
		},
		{
			msg:      "two missing",
			declared: []string{"Orders"},
			actual:   []string{"Accounts", "Orders", "Users"},
			missing:  []string{"Accounts", "Users"},
			text: "Accounts and Users must be specified as dependencies of " +
				"Report: `dependencies: [Accounts, Orders, Users]`",
		},
		{
			msg:      "one extra",
			declared: []string{"Orders"},
			extra:    []string{"Orders"},
			text:     "Orders is not a dependency of Report",
		},
		{
			msg:      "three extra",
			declared: []string{"A", "B", "C"},
			extra:    []string{"A", "B", "C"},
			text:     "A, B, and C are not dependencies of Report",
		},
		{
			msg:      "missing wins over extra",
			declared: []string{"Orders"},
			actual:   []string{"Accounts"},
			missing:  []string{"Accounts"},
			extra:    []string{"Orders"},
			text: "Accounts must be specified as a dependency of Report: " +
				"`dependencies: [Accounts]`",
		},
	}

	for _, v := range tests {
		err := views.CheckDependencies("Report", v.declared, v.actual)
		if v.text == "" {
			assert.NoError(t, err, v.msg)
			continue
		}
		require.Error(t, err, v.msg)
		assert.Equal(t, v.text, err.Error(), v.msg)

		var depErr *views.DependencyMismatchError
		require.True(t, errors.As(err, &depErr), v.msg)
		assert.Equal(t, "Report", depErr.Owner, v.msg)
		assert.Equal(t, v.missing, depErr.Missing, v.msg)
		assert.Equal(t, v.extra, depErr.Extra, v.msg)
	}
}
