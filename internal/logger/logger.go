// Package logger builds the process-wide *slog.Logger from configuration.
//
// The logger is created once in main and passed down explicitly; nothing in
// this package is global.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sakif/matchboard/internal/config"
)

// Format selects the slog handler.
type Format string

// Supported formats. Anything else falls back to text.
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options mirrors config.Config.Log so the logger can be built without a full Config.
type Options struct {
	Level      string
	Format     Format
	Component  string
	WithSource bool
}

// FromConfig converts the Log section of the app config to Options.
func FromConfig(c *config.Config) Options {
	if c == nil {
		return Options{Level: "info", Format: FormatText}
	}
	return Options{
		Level:      c.Log.Level,
		Format:     Format(strings.ToLower(c.Log.Format)),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	}
}

// New returns a logger writing to stdout.
func New(opts Options) *slog.Logger {
	return NewWithWriter(os.Stdout, opts)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.WithSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Shorter timestamps for humans; JSON keeps RFC 3339.
			if a.Key == slog.TimeKey && len(groups) == 0 && opts.Format != FormatJSON {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.DateTime))
			}
			return a
		},
	}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	l := slog.New(handler)
	if opts.Component != "" {
		l = l.With("component", opts.Component)
	}
	return l
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
