// Package logging builds the *slog.Logger every long-lived component of
// the engine takes at construction.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// NewLogger builds a slog.Logger with the given level ("debug", "info",
// "warn", "error"; default info) and format ("json" default, or "text").
// If filePath is non-empty, output tees to stdout and the file via
// io.MultiWriter. The returned io.Closer closes the file at shutdown and
// is a no-op when no file sink is configured.
func NewLogger(level, format, filePath string) (*slog.Logger, io.Closer) {
	w, closer := newSink(filePath)

	lvl, ok := levelNames[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler), closer
}

// newSink returns the log writer and its closer. An unopenable file path
// degrades to stdout-only with a warning rather than failing startup.
func newSink(filePath string) (io.Writer, io.Closer) {
	if filePath == "" {
		return os.Stdout, io.NopCloser(nil)
	}
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not open log file %q: %v (logging to stdout only)\n", filePath, err)
		return os.Stdout, io.NopCloser(nil)
	}
	return io.MultiWriter(os.Stdout, f), f
}
