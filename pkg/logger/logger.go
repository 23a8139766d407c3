// Package logger builds the application's zerolog logger. The TUI owns
// the terminal, so logs always go to a file, never stdout or stderr.
package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const filePermission = 0o664

// New opens (or creates) a log file at path and returns a logger
// appending structured lines to it. level is case-insensitive (trace,
// debug, info, warn, error); unrecognized values fall back to info.
// The caller owns closing the returned file.
func New(path, level string) (zerolog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	log := zerolog.New(zerolog.SyncWriter(f)).
		Level(parseLevel(level)).
		With().Timestamp().Logger()
	return log, f, nil
}

// Discard returns a logger that drops everything, for callers that do
// not want a log file.
func Discard() zerolog.Logger {
	return zerolog.Nop()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
