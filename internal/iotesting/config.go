// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"

	"github.com/gnames/gnviews/internal/ioconfig"
	"github.com/gnames/gnviews/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "gnviews_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// It loads the standard config (from file and environment) and overrides
// the database name to TestDatabaseName for safety.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()

	var cfgPath string
	if home, err := os.UserHomeDir(); err == nil {
		cfgPath = config.ConfigFilePath(home)
	}
	if loaded, err := ioconfig.Load(cfgPath); err == nil {
		cfg.Update(loaded.ToOptions())
	}

	// Always use test database for safety
	cfg.Update([]config.Option{config.OptDatabaseDatabase(TestDatabaseName)})
	return cfg
}
