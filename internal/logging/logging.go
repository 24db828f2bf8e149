package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options controls where diagnostics go
type Options struct {
	// Verbose shows debug records on the terminal. Otherwise only warnings
	// and errors reach it, since progress is printed by the console package.
	Verbose bool
	Quiet   bool
	// File receives records at FileLevel when set
	File      string
	FileLevel string
}

// ParseLevel converts a config level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// NewHandler returns a tint handler, coloured only when w is a terminal
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	})
}

// Setup installs the default logger. The returned function closes the log file.
func Setup(opts Options) (func() error, error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}

	handlers := []slog.Handler{NewHandler(os.Stderr, level)}
	closer := func() error { return nil }

	if opts.File != "" {
		fileLevel, err := ParseLevel(opts.FileLevel)
		if err != nil {
			return closer, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return closer, fmt.Errorf("failed to open log file: %w", err)
		}
		handlers = append(handlers, tint.NewHandler(f, &tint.Options{
			Level:      fileLevel,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}))
		closer = f.Close
	}

	slog.SetDefault(slog.New(Fanout(handlers...)))
	return closer, nil
}

// Fanout sends every record to all handlers that accept its level
func Fanout(handlers ...slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return fanout(handlers)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
