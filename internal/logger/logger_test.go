package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sakif/matchboard/internal/config"
)

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: "debug", Format: FormatText, Component: "test"})

	log.Info("hello matchboard", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello matchboard") {
		t.Errorf("expected message, got: %s", out)
	}
	if !strings.Contains(out, "component=test") {
		t.Errorf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected structured field, got: %s", out)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: "info", Format: FormatJSON, Component: "json_test"})

	log.Info("json log", "foo", "bar")

	out := buf.String()
	if !strings.Contains(out, `"msg":"json log"`) {
		t.Errorf("expected JSON message, got: %s", out)
	}
	if !strings.Contains(out, `"component":"json_test"`) {
		t.Errorf("expected component in JSON, got: %s", out)
	}
	if !strings.Contains(out, `"foo":"bar"`) {
		t.Errorf("expected structured field in JSON, got: %s", out)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: "error", Format: FormatText})

	log.Info("should not appear")
	log.Error("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info log should not appear, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("error log should appear, got: %s", out)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "JSON"
	cfg.Log.Component = "cfg_test"
	cfg.Log.Source = true

	opts := FromConfig(cfg)

	if opts.Format != FormatJSON {
		t.Errorf("Format = %q, want %q", opts.Format, FormatJSON)
	}
	if !opts.WithSource {
		t.Error("WithSource = false, want true")
	}

	var buf bytes.Buffer
	NewWithWriter(&buf, opts).Debug("cfg-based log")
	if !strings.Contains(buf.String(), `"component":"cfg_test"`) {
		t.Errorf("expected component from config, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
