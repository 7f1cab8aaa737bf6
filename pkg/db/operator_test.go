package db_test

import (
	"testing"

	"github.com/gnames/gnviews/internal/iodb"
	"github.com/gnames/gnviews/pkg/db"
)

// TestPgxOperatorImplementsInterface verifies that the pgx operator
// implements the db.Operator interface.
func TestPgxOperatorImplementsInterface(t *testing.T) {
	var _ db.Operator = iodb.NewPgxOperator()
}
