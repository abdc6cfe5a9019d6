package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("menu fetched", "restaurant", "spice-route")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["msg"] != "menu fetched" {
		t.Errorf("msg = %v, want %q", entry["msg"], "menu fetched")
	}
	if entry["restaurant"] != "spice-route" {
		t.Errorf("restaurant = %v, want %q", entry["restaurant"], "spice-route")
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "").Debug("scroll", "y", 120)
	if out := buf.String(); !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "y=120") {
		t.Errorf("log = %q", out)
	}
}
