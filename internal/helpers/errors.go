// Package helpers provides common utility functions used across the project.
package helpers

import (
	"context"
	"fmt"
)

type traceIDKey struct{}

// WithTraceID attaches a trace identifier to ctx, propagated by WrapError /
// NewError into every TracedError built from that context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID returns the trace identifier attached to ctx, or "" if none was set.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// TracedError is a context-aware error: it carries the trace ID in effect
// when it was created, alongside the message and optional cause.
type TracedError struct {
	TraceIDValue string
	Message      string
	Cause        error
}

func (e *TracedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is/errors.As.
func (e *TracedError) Unwrap() error { return e.Cause }

// TraceID returns the trace identifier captured at creation time.
func (e *TracedError) TraceID() string { return e.TraceIDValue }

// WrapError wraps an error with a message and the trace ID carried by ctx.
//
// Input: context, error to wrap, and context message
// Output: *TracedError with trace ID, or nil if input error is nil
//
// Example:
//
//	err := helpers.WrapError(ctx, originalErr, "failed to drain input pipe")
func WrapError(ctx context.Context, err error, message string) error {
	if err == nil {
		return nil
	}
	return &TracedError{TraceIDValue: TraceID(ctx), Message: message, Cause: err}
}

// WrapErrorf wraps an error with a formatted message and the trace ID
// carried by ctx.
//
// Input: context, error to wrap, format string, and format arguments
// Output: *TracedError with trace ID, or nil if input error is nil
//
// Example:
//
//	err := helpers.WrapErrorf(ctx, originalErr, "pipe %q closed after %d pushes", name, n)
func WrapErrorf(ctx context.Context, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &TracedError{TraceIDValue: TraceID(ctx), Message: fmt.Sprintf(format, args...), Cause: err}
}

// NewError creates a new error carrying the trace ID in effect on ctx.
//
// Input: context and error message
// Output: *TracedError with trace ID
//
// Example:
//
//	err := helpers.NewError(ctx, "graph validation rejected an unexpected warning")
func NewError(ctx context.Context, message string) error {
	return &TracedError{TraceIDValue: TraceID(ctx), Message: message}
}
