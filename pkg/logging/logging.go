// Package logging builds the process logger: text records to stderr and to
// a size-rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// File is the log file path. Empty means DefaultFile().
	File string
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// Console receives a copy of every record. Nil means os.Stderr.
	Console io.Writer
}

// DefaultFile returns <user cache dir>/dictator/dictator.log, falling back
// to the temp dir when no cache dir is known.
func DefaultFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "dictator", "dictator.log")
}

// ParseLevel maps a level name to a slog.Level.
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

// New returns a logger and the closer for its log file.
func New(opts Options) (*slog.Logger, io.Closer) {
	if opts.File == "" {
		opts.File = DefaultFile()
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	h := slog.NewTextHandler(io.MultiWriter(opts.Console, file), &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(h), file
}
