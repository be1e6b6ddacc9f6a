// Package logging builds the structured logger termchatd and
// termchat-client run with. It is a slimmed adaptation of the
// dittofs project's internal/logger: a text handler (the default) that
// colors the level only when writing to a terminal, plus a JSON handler
// selected by Format "json", both built on log/slog rather than a
// hand-rolled formatter.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the logger's minimum level and output format.
type Config struct {
	Level  string // debug, info, warn, error (default info)
	Format string // text, json (default text)
	Output io.Writer
}

// New builds a ready-to-use *slog.Logger from cfg.
func New(cfg Config) *slog.Logger {
	level := parseLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		useColor := false
		if f, ok := out.(*os.File); ok {
			useColor = isTerminal(f)
		}
		handler = newTextHandler(out, opts, useColor)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
