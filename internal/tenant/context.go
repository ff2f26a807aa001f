// Package tenant carries the active clinic code through a request and scopes
// persistence by it.
//
// The clinic code lives in the request's context.Context, never in package
// state, so concurrent requests cannot observe each other's value and nothing
// outlives the request that installed it.
package tenant

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey struct{}

// WithClinicCode returns a copy of ctx carrying the given clinic code.
// Surrounding whitespace is trimmed; an empty code leaves ctx unchanged.
func WithClinicCode(ctx context.Context, code string) context.Context {
	code = strings.TrimSpace(code)
	if code == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, code)
}

// FromContext returns the clinic code installed in ctx.
// The boolean is false when no clinic code is set.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	code, ok := ctx.Value(contextKey{}).(string)
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// Require returns the clinic code installed in ctx or ErrUnresolved.
func Require(ctx context.Context) (string, error) {
	code, ok := FromContext(ctx)
	if !ok {
		return "", ErrUnresolved
	}
	return code, nil
}

// Clear returns a copy of ctx in which no clinic code is visible.
// Use it when handing a request context to work that must not act for the clinic.
func Clear(ctx context.Context) context.Context {
	if _, ok := FromContext(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, "")
}

// LoggerExtractor returns a log attribute extractor for the clinic code.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		code, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("clinic_code", code), true
	}
}
