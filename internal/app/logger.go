package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/vk/congestsim/internal/config"
)

// newLogger creates a slog.Logger from the logging settings. It does not set
// the global logger, allowing for isolated logger instances in tests.
func newLogger(s config.Logging, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Level)); err != nil {
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(s.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
