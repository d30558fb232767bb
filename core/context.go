package core

import (
	"context"
	"io"
	"os"
)

// Context keys for run options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	progressWriterKey contextKey = "progressWriter"
)

// WithSuppressHeader silences progress output, e.g. when stdout carries a protocol.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithProgressWriter sends progress output to w instead of stdout.
func WithProgressWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, progressWriterKey, w)
}

// progressWriter returns where progress lines go for this run.
func progressWriter(ctx context.Context) io.Writer {
	if shouldSuppressHeader(ctx) {
		return io.Discard
	}
	if w, ok := ctx.Value(progressWriterKey).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}
