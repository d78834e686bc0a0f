// Package logging builds the structured logger shared by the server components.
package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New creates a logger writing to w at the given level
// Unknown levels fall back to info; unknown formats fall back to JSON.
func New(level, format string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	var writer log.Writer = &log.IOWriter{Writer: w}
	if format == FormatConsole {
		writer = &log.ConsoleWriter{Writer: w}
	}

	return &log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Writer:     writer,
	}
}

func parseLevel(level string) log.Level {
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal":
		return log.ParseLevel(level)
	default:
		return log.InfoLevel
	}
}
