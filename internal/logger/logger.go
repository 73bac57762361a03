package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/polkiloo/orderengine/internal/config"
)

const serviceName = "orderengine"

// New creates the service logger. Unknown levels fall back to info.
func New(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg.LogLevel)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With(slog.String("service", serviceName))
}
