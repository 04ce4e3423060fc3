// Package log builds the zerolog loggers used across album-downloader.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/handiism/album-downloader/internal/config"
)

// FromConfig returns a logger writing to w at the configured level and
// format. Format "auto" selects pretty output when w is a terminal.
func FromConfig(conf config.Log, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(conf.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid logging level %q: %w", conf.Level, err)
	}

	format := strings.ToLower(conf.Format)
	if format == "auto" {
		format = "json"
		if isTerminal(w) {
			format = "pretty"
		}
	}

	switch format {
	case "json":
		return zerolog.
			New(w).
			Hook(stackHook{}).
			With().
			Timestamp().
			Logger().
			Level(level), nil
	case "pretty":
		return newPretty(w).Level(level), nil
	default:
		return zerolog.Nop(), fmt.Errorf("invalid logging format: %s", conf.Format)
	}
}

// NewDefault is used until configuration has been loaded.
func NewDefault() zerolog.Logger {
	return newPretty(os.Stderr).Level(zerolog.InfoLevel)
}

func newPretty(w io.Writer) zerolog.Logger {
	return zerolog.
		New(zerolog.ConsoleWriter{ //nolint:exhaustruct
			Out:          w,
			TimeFormat:   time.RFC3339,
			TimeLocation: time.UTC,
			NoColor:      !isTerminal(w),
		}).
		Hook(stackHook{}).
		With().
		Timestamp().
		Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
