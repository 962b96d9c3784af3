package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where and how log records are written.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values fall back to info.
	Level string
	// File, when set, receives a plain-text copy of every record, rotated by size.
	File string
	// JSON switches the console output to slog's JSON handler.
	JSON bool
	// Console is the console destination, os.Stderr when nil.
	Console *os.File
}

// ParseLevel maps a textual level to slog.Level.
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

// New builds a Logger from opts. The returned closer flushes and closes the
// rotating log file, if any.
func New(opts Options) (*SlogLogger, io.Closer) {
	level := ParseLevel(opts.Level)
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var consoleHandler slog.Handler
	if opts.JSON {
		consoleHandler = slog.NewJSONHandler(console, &slog.HandlerOptions{Level: level})
	} else {
		consoleHandler = tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(console.Fd()),
		})
	}

	if opts.File == "" {
		return NewSlogLogger(slog.New(consoleHandler)), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	fileHandler := slog.NewTextHandler(rotator, &slog.HandlerOptions{Level: level})

	return NewSlogLogger(slog.New(slogmulti.Fanout(consoleHandler, fileHandler))), rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
