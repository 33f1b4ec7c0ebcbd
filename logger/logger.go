// Package logger provides structured logging for the application.
// It integrates zerolog with an optional size-rotated log file.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the global logger output.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	FilePath   string // empty disables the rotating file sink
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init configures the global zerolog logger. Logs always go to stderr; when a
// file path is configured they are duplicated into a rotating file.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var console io.Writer = os.Stderr
	if cfg.Format == "console" {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	writer := console
	if cfg.FilePath != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(console, rotated)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}

// For returns a logger scoped to a component name.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
