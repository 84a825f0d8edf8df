package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"":        zapcore.InfoLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" warn ":  zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewFormats(t *testing.T) {
	for _, format := range []string{"", "json", "console"} {
		logger, err := New(Config{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("format %q: debug should be enabled", format)
		}
	}
}

func TestNewLevelFilters(t *testing.T) {
	logger, err := New(Config{Level: "warn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be filtered at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should pass at warn level")
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(Config{Level: "trace"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
