// Package config provides configuration management for GNviews.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: host, port, user, password, database, ssl_mode, schema,
//     max_connections
//   - Views: manifest, mode, refresh
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNVIEWS_ prefix with underscores for nesting:
//
//	GNVIEWS_DATABASE_HOST=localhost
//	GNVIEWS_DATABASE_SCHEMA=public
//	GNVIEWS_VIEWS_MODE=enqueue
//	GNVIEWS_LOG_LEVEL=info
package config

import (
	"runtime"
)

// Config represents the complete GNviews configuration.
type Config struct {
	// Database contains PostgreSQL connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Views contains settings of view synchronization.
	Views ViewsConfig `mapstructure:"views" yaml:"views"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers used to read
	// declaration files.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// Schema is the PostgreSQL schema where managed views and the
	// metadata table live. The connection search_path is set to it.
	Schema string `mapstructure:"schema" yaml:"schema"`

	// MaxConnections limits the size of the connection pool. Isolated
	// connections for bookkeeping are checked out from the same pool,
	// so it must be at least 2.
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections"`
}

// ViewsConfig contains settings of view synchronization.
type ViewsConfig struct {
	// Manifest is the path to the YAML file with view declarations.
	// Relative SQL file paths are resolved against its directory.
	Manifest string `mapstructure:"manifest" yaml:"manifest"`

	// Mode is either "apply" (run DDL as soon as a view is declared) or
	// "enqueue" (collect declarations and apply them on explicit flush).
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Refresh is the default concurrency of materialized view refresh:
	// "never", "always" or "auto".
	Refresh string `mapstructure:"refresh" yaml:"refresh"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "postgres",
			Password:       "postgres",
			Database:       "gnames",
			SSLMode:        "disable",
			Schema:         "public",
			MaxConnections: 10,
		},
		Views: ViewsConfig{
			Manifest: "views.yaml",
			Mode:     "apply",
			Refresh:  "auto",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}
