// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Extractor pulls a request-scoped attribute out of a context.
type Extractor func(ctx context.Context) (slog.Attr, bool)

// levelRouter sends INFO and WARN to stdout and ERROR and above to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// contextHandler adds the attributes found by its extractors to every record.
type contextHandler struct {
	next       slog.Handler
	extractors []Extractor
}

// Decorate wraps next so that records logged with a context carry the
// attributes returned by extractors. Nil extractors are skipped.
func Decorate(next slog.Handler, extractors ...Extractor) slog.Handler {
	clean := make([]Extractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			r.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

// NewHandler builds the stdout/stderr handler. When file is non-nil every
// level is also written to it.
func NewHandler(stdout, stderr, file io.Writer, extractors ...Extractor) slog.Handler {
	if file != nil {
		stdout = io.MultiWriter(stdout, file)
		stderr = io.MultiWriter(stderr, file)
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	return Decorate(&levelRouter{
		stdout: slog.NewTextHandler(stdout, opts),
		stderr: slog.NewTextHandler(stderr, opts),
	}, extractors...)
}

// Setup installs the default logger. If logPath is non-empty, all levels are
// also appended to that file. The returned function closes the file.
func Setup(logPath string, extractors ...Extractor) (func(), error) {
	cleanup := func() {}
	var file io.Writer

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		file = f
	}

	slog.SetDefault(slog.New(NewHandler(os.Stdout, os.Stderr, file, extractors...)))
	return cleanup, nil
}
