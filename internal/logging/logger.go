// Package logging builds the structured logger used by the CLI.
//
// Run lifecycle events (start, finish, failures) are logged here. Per-step
// diagnostics are printed as tables by the CLI and are not logged.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type Config struct {
	Level Level
	// JSON selects the JSON handler instead of logfmt-style text.
	JSON bool
	// Writer defaults to os.Stderr.
	Writer  io.Writer
	Service string
	Quiet   bool
}

func New(config Config) *slog.Logger {
	if config.Quiet {
		return Discard()
	}
	w := config.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
