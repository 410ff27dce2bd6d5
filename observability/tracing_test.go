package observability

import (
	"context"
	"errors"
	"testing"
)

func TestTrace(t *testing.T) {
	t.Parallel()

	provider := NewInMemoryTracerProvider()

	var ran bool
	err := Trace(context.Background(), provider, "test-operation", func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if !ran {
		t.Fatal("op was not invoked")
	}

	spans := provider.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Name != "test-operation" {
		t.Errorf("Expected span name 'test-operation', got '%s'", span.Name)
	}

	if span.Status != SpanStatusOK {
		t.Errorf("Expected SpanStatusOK, got %v", span.Status)
	}
}

func TestTraceWithError(t *testing.T) {
	t.Parallel()

	provider := NewInMemoryTracerProvider()

	err := Trace(context.Background(), provider, "error-operation", func(context.Context) error {
		return errors.New("task error")
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	spans := provider.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Status != SpanStatusError {
		t.Errorf("Expected SpanStatusError, got %v", span.Status)
	}

	if span.Error == nil {
		t.Error("Expected error to be recorded in span")
	}

	if errAttr, ok := span.Attributes["error"]; !ok || errAttr != "task error" {
		t.Errorf("Expected error attribute 'task error', got '%v'", errAttr)
	}
}

func TestTraceWithoutErrorRecording(t *testing.T) {
	t.Parallel()

	provider := NewInMemoryTracerProvider()

	err := Trace(context.Background(), provider, "error-operation", func(context.Context) error {
		return errors.New("task error")
	}, WithoutErrorRecording())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	spans := provider.GetSpans()
	span := spans[0]
	if _, ok := span.Attributes["error"]; ok {
		t.Error("Expected no error attribute when RecordError is disabled")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"hello", 0, "hello"}, // 0 means no limit
		{"", 5, ""},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestTracingConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultTracingConfig()

	if !cfg.RecordError {
		t.Error("Expected RecordError to be true by default")
	}

	if cfg.MaxAttributeLength != 1024 {
		t.Errorf("Expected MaxAttributeLength 1024, got %d", cfg.MaxAttributeLength)
	}
}
