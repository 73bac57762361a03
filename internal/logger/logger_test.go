package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/polkiloo/orderengine/internal/config"
)

func TestNewProvidesJSONLogger(t *testing.T) {
	l := New(&config.Config{LogLevel: "info"})
	if l == nil {
		t.Fatal("expected logger, got nil")
	}

	if !l.Enabled(context.Background(), slog.LevelInfo) {
		t.Errorf("expected info level to be enabled")
	}
	if l.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("did not expect debug level to be enabled")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"WARN", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"loud", slog.LevelInfo, slog.LevelDebug},
		{"", slog.LevelInfo, slog.LevelDebug},
	}
	for _, tc := range cases {
		l := newLogger(&bytes.Buffer{}, tc.level)
		if !l.Enabled(context.Background(), tc.enabled) {
			t.Errorf("level %q: expected %s enabled", tc.level, tc.enabled)
		}
		if l.Enabled(context.Background(), tc.muted) {
			t.Errorf("level %q: expected %s muted", tc.level, tc.muted)
		}
	}
}

func TestNewLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info").Info("order placed", slog.String("order", "ORD20260101000001"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["service"] != serviceName || entry["order"] != "ORD20260101000001" || entry["msg"] != "order placed" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
