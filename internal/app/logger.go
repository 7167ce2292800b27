package app

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// NewLogger writes human readable text to a terminal and JSON everywhere else.
func NewLogger(debug bool, out *os.File) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return slog.New(slog.NewTextHandler(out, opts))
	}

	return slog.New(slog.NewJSONHandler(out, opts))
}
