// Package applog wires the repository's structured logging: log/slog with
// github.com/lmittmann/tint's colorized terminal handler, matching the
// retrieval pack's own CLI-plus-slog precedent (gavincarr/seedkit's
// runCLI, which maps a repeatable -v/--verbose counter to an slog level and
// installs a tint handler as the default logger).
package applog

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// LevelForVerbosity maps a kong `counter`-type -v flag to an slog level,
// following seedkit's own verbose-count convention: 0 = warnings only,
// 1 = info, 2+ = debug.
func LevelForVerbosity(verbose int) slog.Level {
	switch {
	case verbose >= 2:
		return slog.LevelDebug
	case verbose == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// New builds a tint-backed logger writing to w at the given level and
// installs it as slog's default, exactly as seedkit's runCLI does with
// os.Stderr.
func New(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: " ",
	}))
	slog.SetDefault(logger)
	return logger
}

// NewForVerbosity is New composed with LevelForVerbosity, writing to
// os.Stderr — the common case for cmd/mnemonic-stencil-recover.
func NewForVerbosity(verbose int) *slog.Logger {
	return New(os.Stderr, LevelForVerbosity(verbose))
}
