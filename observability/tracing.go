// Package observability provides distributed tracing for pipeline execution.
// Each operation creates a "span" that records:
//
//   - When the operation started and ended
//   - Whether it succeeded or failed
//   - Custom attributes you add (worker name, drop index, etc.)
//
// Example:
//
//	provider, _ := observability.NewOTLPTracerProvider("my-pipeline", "localhost:4317")
//	defer provider.Shutdown(context.Background())
//
//	err := observability.Trace(ctx, provider, "transform-words", func(ctx context.Context) error {
//	    return transform(ctx, drop)
//	})
package observability

import "context"

// TracingConfig configures the tracing instrumentation behavior.
type TracingConfig struct {
	// RecordError records the error text as a span attribute when op fails.
	// Default: true
	RecordError bool

	// MaxAttributeLength truncates attribute values to this length.
	// This prevents huge payloads from bloating your traces.
	// Set to 0 for no limit (not recommended for production).
	// Default: 1024 characters
	MaxAttributeLength int
}

// DefaultTracingConfig returns the default tracing configuration
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		RecordError:        true,
		MaxAttributeLength: 1024,
	}
}

// TracingOption configures the tracing instrumentation
type TracingOption func(*TracingConfig)

// WithoutErrorRecording disables recording the error text on a failed span.
func WithoutErrorRecording() TracingOption {
	return func(cfg *TracingConfig) {
		cfg.RecordError = false
	}
}

// WithMaxAttributeLength sets the maximum length for attribute values
func WithMaxAttributeLength(length int) TracingOption {
	return func(cfg *TracingConfig) {
		cfg.MaxAttributeLength = length
	}
}

// Trace wraps op in a span named operationName, recording its outcome and
// duration on provider. It is the generic instrumentation point a worker or
// the pipeline wraps around a unit of work.
//
// The operationName should be descriptive but not too specific:
//   - Good: "drain-input", "transform-words", "join-reduce"
//   - Bad: "process-drop-123"
//
// Example - trace a worker's task submission:
//
//	provider, _ := observability.NewOTLPTracerProvider("pipeline", "localhost:4317")
//
//	err := observability.Trace(ctx, provider, "transform", func(ctx context.Context) error {
//	    return transform(ctx, drop)
//	})
func Trace(ctx context.Context, provider TracerProvider, operationName string, op func(context.Context) error, opts ...TracingOption) error {
	cfg := DefaultTracingConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := provider.StartSpan(ctx, operationName, WithSpanKind(SpanKindInternal))

	opErr := op(ctx)

	if opErr != nil {
		if cfg.RecordError {
			span.SetAttribute("error", truncate(opErr.Error(), cfg.MaxAttributeLength))
		}
		span.SetStatus(SpanStatusError, opErr.Error())
	} else {
		span.SetStatus(SpanStatusOK, "")
	}
	span.End(opErr)

	return opErr
}

// truncate truncates a string to the given length
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
