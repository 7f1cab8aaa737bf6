// Package ioconfig loads configuration from config.yaml and environment
// variables. This is an impure package that handles file system
// operations.
package ioconfig

import (
	"os"
	"strings"

	"github.com/gnames/gnviews/internal/iofs"
	"github.com/gnames/gnviews/pkg/config"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override
// config.yaml settings.
const EnvPrefix = "GNVIEWS"

// Load reads configuration from a YAML file and environment variables.
// Fields that are not set stay at zero values, so the result is meant to
// be converted with ToOptions and applied to config.New().
// If cfgPath is empty or the file does not exist, only environment
// variables are used.
func Load(cfgPath string) (*config.Config, error) {
	var err error
	v := viper.New()
	v.SetConfigType("yaml")

	initEnvVars(v)

	if cfgPath != "" {
		if _, err = os.Stat(cfgPath); err == nil {
			v.SetConfigFile(cfgPath)
			if err = v.ReadInConfig(); err != nil {
				return nil, iofs.ReadFileError(cfgPath, err)
			}
		}
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	_ = v.BindEnv("database.host", EnvPrefix+"_DATABASE_HOST")
	_ = v.BindEnv("database.port", EnvPrefix+"_DATABASE_PORT")
	_ = v.BindEnv("database.user", EnvPrefix+"_DATABASE_USER")
	_ = v.BindEnv("database.password", EnvPrefix+"_DATABASE_PASSWORD")
	_ = v.BindEnv("database.database", EnvPrefix+"_DATABASE_DATABASE")
	_ = v.BindEnv("database.ssl_mode", EnvPrefix+"_DATABASE_SSL_MODE")
	_ = v.BindEnv("database.schema", EnvPrefix+"_DATABASE_SCHEMA")
	_ = v.BindEnv("database.max_connections",
		EnvPrefix+"_DATABASE_MAX_CONNECTIONS")

	// Views configuration
	_ = v.BindEnv("views.manifest", EnvPrefix+"_VIEWS_MANIFEST")
	_ = v.BindEnv("views.mode", EnvPrefix+"_VIEWS_MODE")
	_ = v.BindEnv("views.refresh", EnvPrefix+"_VIEWS_REFRESH")

	// Log configuration
	_ = v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL")
	_ = v.BindEnv("log.format", EnvPrefix+"_LOG_FORMAT")
	_ = v.BindEnv("log.destination", EnvPrefix+"_LOG_DESTINATION")

	// General configuration
	_ = v.BindEnv("jobs_number", EnvPrefix+"_JOBS_NUMBER")

	v.AutomaticEnv()
}
