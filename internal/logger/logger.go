package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogerio-castellano/inventory-shell/internal/config"
)

const appName = "inventory-shell"

// New builds the process logger. Logs go to stderr so they never mix with
// the shell's output on stdout.
func New(cfg config.Log) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

func NewWithWriter(w io.Writer, cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", appName).
		Logger()
}
