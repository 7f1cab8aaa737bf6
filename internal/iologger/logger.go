// Package iologger provides slog-based logging initialization and configuration.
package iologger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gnviews/pkg/config"
)

// LogFile is the name of the log file in the log directory.
const LogFile = "gnviews.log"

// Init initializes the global slog logger with the given configuration.
// Creates log file in logDir if destination is "file", the file is
// rewritten every time the logger is initialized.
func Init(logDir string, cfg config.LogConfig) error {
	var writer io.Writer

	switch cfg.Destination {
	case "stdout":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	case "file":
		logPath := filepath.Join(logDir, LogFile)
		file, err := os.Create(logPath)
		if err != nil {
			return CreateLogFileError(logPath, err)
		}
		writer = file
	default:
		writer = os.Stderr
	}

	slog.SetDefault(slog.New(newHandler(writer, cfg)))

	return nil
}

func newHandler(writer io.Writer, cfg config.LogConfig) slog.Handler {
	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	switch cfg.Format {
	case "text":
		return slog.NewTextHandler(writer, handlerOpts)
	case "tint":
		// TODO: switch to github.com/lmittmann/tint once colored output
		// is needed, for now tint is plain text.
		return slog.NewTextHandler(writer, handlerOpts)
	default:
		return slog.NewJSONHandler(writer, handlerOpts)
	}
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
