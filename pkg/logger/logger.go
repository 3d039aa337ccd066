// Package logger builds the root zerolog instance for the overlay
// engine. Every component logger is derived from it, so level and
// output format are decided once at startup.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the root logger's level and output format.
type Config struct {
	Level   string // zerolog level name; unknown values fall back to info
	Pretty  bool   // human console output instead of JSON
	Service string // stamped on every line, defaults to "overlay"
}

// New builds the root logger. Components derive theirs with
// With().Str("component", ...).
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	service := cfg.Service
	if service == "" {
		service = "overlay"
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

// SetGlobal replaces the package-level zerolog logger so code using
// log.Info() shares the root configuration.
func SetGlobal(l zerolog.Logger) {
	log.Logger = l
}
