package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nitinder-api/internal/config"
)

// Setup builds the process logger from config and installs it as the slog default.
func Setup(cfg *config.Config) *slog.Logger {
	l := New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("env", cfg.AppEnv)
	slog.SetDefault(l)
	return l
}

// New returns a logger writing to w. format is "json" or "text" (default).
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

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
