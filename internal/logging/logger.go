// Package logging builds the structured logger shared by the resolver,
// the declaration loader and the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	DEBUG = "DEBUG"
	INFO  = "INFO"
	WARN  = "WARN"
	ERROR = "ERROR"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel maps DEBUG, INFO, WARN and ERROR (any case) to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case DEBUG:
		return slog.LevelDebug, nil
	case INFO, "":
		return slog.LevelInfo, nil
	case WARN, "WARNING":
		return slog.LevelWarn, nil
	case ERROR:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New creates a logger writing to dest (stderr when nil) at the given level.
// format is "text" or "json".
func New(level, format string, dest io.Writer) (*slog.Logger, error) {
	if dest == nil {
		dest = os.Stderr
	}

	logLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "timestamp"
			}

			return a
		},
	}

	var handler slog.Handler

	switch strings.ToLower(format) {
	case FormatText, "":
		handler = slog.NewTextHandler(dest, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(dest, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return slog.New(handler), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
