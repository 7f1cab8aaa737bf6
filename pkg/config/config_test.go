package config_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gnames/gnviews/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirs(t *testing.T) {
	tempHome := t.TempDir()

	tests := []struct {
		msg string
		fn  func(string) string
		res string
	}{
		{
			msg: "config dir",
			fn:  config.ConfigDir,
			res: filepath.Join(tempHome, ".config", "gnviews"),
		},
		{
			msg: "config file",
			fn:  config.ConfigFilePath,
			res: filepath.Join(tempHome, ".config", "gnviews", "config.yaml"),
		},
		{
			msg: "log dir",
			fn:  config.LogDir,
			res: filepath.Join(tempHome, ".local", "share", "gnviews", "logs"),
		},
	}

	for _, v := range tests {
		res := v.fn(tempHome)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestNew(t *testing.T) {
	cfg := config.New()
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "public", cfg.Database.Schema)
	assert.Equal(t, 10, cfg.Database.MaxConnections)

	assert.Equal(t, "views.yaml", cfg.Views.Manifest)
	assert.Equal(t, "apply", cfg.Views.Mode)
	assert.Equal(t, "auto", cfg.Views.Refresh)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Log.Destination)

	assert.Equal(t, runtime.NumCPU(), cfg.JobsNumber)
}

func TestOptionDatabaseHost(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sets valid host", "db.example.com", "db.example.com"},
		{"trims whitespace", "  db.example.com  ", "db.example.com"},
		{"ignores empty string", "", "localhost"},
		{"ignores whitespace-only", "   ", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseHost(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.Host)
		})
	}
}

func TestOptionDatabaseSSLMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"disable", "disable", "disable"},
		{"require", "require", "require"},
		{"verify-full", "verify-full", "verify-full"},
		{"normalizes to lowercase", "REQUIRE", "require"},
		{"ignores invalid value", "invalid", "disable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseSSLMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.SSLMode)
		})
	}
}

func TestOptionDatabaseMaxConnections(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"sets valid size", 4, 4},
		{"accepts minimum", 2, 2},
		{"ignores single connection", 1, 10},
		{"ignores zero", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptDatabaseMaxConnections(tt.input)})
			assert.Equal(t, tt.expected, cfg.Database.MaxConnections)
		})
	}
}

func TestOptionViews(t *testing.T) {
	t.Run("mode", func(t *testing.T) {
		tests := []struct {
			input, expected string
		}{
			{"apply", "apply"},
			{"ENQUEUE", "enqueue"},
			{"later", "apply"},
		}
		for _, tt := range tests {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptViewsMode(tt.input)})
			assert.Equal(t, tt.expected, cfg.Views.Mode, tt.input)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		tests := []struct {
			input, expected string
		}{
			{"never", "never"},
			{"always", "always"},
			{" Auto ", "auto"},
			{"sometimes", "auto"},
		}
		for _, tt := range tests {
			cfg := config.New()
			cfg.Update([]config.Option{config.OptViewsRefresh(tt.input)})
			assert.Equal(t, tt.expected, cfg.Views.Refresh, tt.input)
		}
	})

	t.Run("manifest", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptViewsManifest(" db/views.yaml ")})
		assert.Equal(t, "db/views.yaml", cfg.Views.Manifest)
		cfg.Update([]config.Option{config.OptViewsManifest("")})
		assert.Equal(t, "db/views.yaml", cfg.Views.Manifest)
	})
}

func TestOptionLog(t *testing.T) {
	tests := []struct {
		name     string
		opt      config.Option
		field    func(*config.Config) string
		expected string
	}{
		{
			name:     "level debug",
			opt:      config.OptLogLevel("DEBUG"),
			field:    func(c *config.Config) string { return c.Log.Level },
			expected: "debug",
		},
		{
			name:     "level invalid",
			opt:      config.OptLogLevel("trace"),
			field:    func(c *config.Config) string { return c.Log.Level },
			expected: "info",
		},
		{
			name:     "format tint",
			opt:      config.OptLogFormat("tint"),
			field:    func(c *config.Config) string { return c.Log.Format },
			expected: "tint",
		},
		{
			name:     "destination stderr",
			opt:      config.OptLogDestination("stderr"),
			field:    func(c *config.Config) string { return c.Log.Destination },
			expected: "stderr",
		},
		{
			name:     "destination invalid",
			opt:      config.OptLogDestination("stdin"),
			field:    func(c *config.Config) string { return c.Log.Destination },
			expected: "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			cfg.Update([]config.Option{tt.opt})
			assert.Equal(t, tt.expected, tt.field(cfg))
		})
	}
}

func TestMultipleOptions(t *testing.T) {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabaseHost("first.host.com"),
		config.OptDatabaseHost("second.host.com"),
		config.OptJobsNumber(16),
	})

	assert.Equal(t, "second.host.com", cfg.Database.Host)
	assert.Equal(t, 16, cfg.JobsNumber)
	assert.Equal(t, "postgres", cfg.Database.Password)
}

func TestToOptions(t *testing.T) {
	t.Run("converts config to options correctly", func(t *testing.T) {
		original := config.New()
		original.Update([]config.Option{
			config.OptDatabaseHost("test.host.com"),
			config.OptDatabasePort(5433),
			config.OptDatabaseUser("testuser"),
			config.OptDatabasePassword("testpass"),
			config.OptDatabaseDatabase("testdb"),
			config.OptDatabaseSSLMode("require"),
			config.OptDatabaseSchema("reporting"),
			config.OptDatabaseMaxConnections(4),
			config.OptViewsManifest("reporting.yaml"),
			config.OptViewsMode("enqueue"),
			config.OptViewsRefresh("never"),
			config.OptLogLevel("debug"),
			config.OptLogFormat("text"),
			config.OptLogDestination("stdout"),
			config.OptJobsNumber(8),
		})

		newCfg := config.New()
		newCfg.Update(original.ToOptions())

		assert.Equal(t, original.Database, newCfg.Database)
		assert.Equal(t, original.Views, newCfg.Views)
		assert.Equal(t, original.Log, newCfg.Log)
		assert.Equal(t, original.JobsNumber, newCfg.JobsNumber)
	})

	t.Run("excludes runtime-only fields", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{config.OptHomeDir("/custom/home")})

		newCfg := config.New()
		newCfg.Update(cfg.ToOptions())
		assert.Equal(t, "", newCfg.HomeDir)
	})
}
