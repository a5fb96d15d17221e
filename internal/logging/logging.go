// Package logging builds the structured logger shared by every component.
package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

type Options struct {
	Level string // trace, debug, info, warn, error
	File  string // Empty means console output on stderr
	JSON  bool   // Console output as JSON lines instead of the coloured format
}

const (
	maxLogFileSize    = 50 << 20
	maxLogFileBackups = 5
)

// New returns a logger configured from opts.
func New(opts Options) *log.Logger {
	var writer log.Writer

	switch {
	case opts.File != "":
		writer = &log.FileWriter{
			Filename:     opts.File,
			MaxSize:      maxLogFileSize,
			MaxBackups:   maxLogFileBackups,
			EnsureFolder: true,
			LocalTime:    true,
		}
	case opts.JSON:
		writer = &log.IOWriter{Writer: os.Stderr}
	default:
		writer = &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
			QuoteString:    true,
			EndWithMessage: true,
		}
	}

	return &log.Logger{
		Level:      log.ParseLevel(opts.Level),
		TimeFormat: "15:04:05",
		Writer:     writer,
	}
}

// NewWriter returns a JSON logger over w, used by tests to inspect output.
func NewWriter(w io.Writer, level string) *log.Logger {
	return &log.Logger{
		Level:  log.ParseLevel(level),
		Writer: &log.IOWriter{Writer: w},
	}
}

// Discard returns a logger that drops every entry.
func Discard() *log.Logger {
	return NewWriter(io.Discard, "error")
}
