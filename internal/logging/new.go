package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Supported values of the log_format setting.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatZerolog = "zerolog"
	FormatConsole = "console"
)

// New builds a Logger writing to w. level is one of debug, info, warn, error.
// json and text select slog handlers, zerolog and console select zerolog.
func New(w io.Writer, level, format string) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON, FormatText:
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(orDefault(level, "info"))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		opts := &slog.HandlerOptions{Level: lvl}
		var h slog.Handler = slog.NewJSONHandler(w, opts)
		if strings.EqualFold(format, FormatText) {
			h = slog.NewTextHandler(w, opts)
		}
		return NewSlogLogger(slog.New(h)), nil

	case FormatZerolog, FormatConsole:
		lvl, err := zerolog.ParseLevel(strings.ToLower(orDefault(level, "info")))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		out := w
		if strings.EqualFold(format, FormatConsole) {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
		return NewZerologLogger(zerolog.New(out).Level(lvl).With().Timestamp().Logger()), nil
	}

	return nil, fmt.Errorf("unknown log format %q", format)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
