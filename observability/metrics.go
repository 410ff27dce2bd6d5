// Package observability provides instrumentation for measuring pipeline
// execution. These metrics help you understand how a running pipeline is
// performing and can be exported to Prometheus, Grafana, or any other
// monitoring system.
package observability

import (
	"context"
	"time"
)

// MetricsConfig configures the metrics instrumentation behavior.
type MetricsConfig struct {
	// Namespace prefixes all metric names (e.g., "drop" -> "drop_tasks_total")
	Namespace string

	// Subsystem is added after namespace (e.g., "worker" -> "drop_worker_tasks_total")
	// Use to group related metrics (e.g., "worker", "pipe", "pool")
	Subsystem string

	// Labels are default labels applied to ALL metrics from this instrumentation.
	// Common choices: pipeline name, worker name, environment.
	Labels Labels
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "drop",
		Subsystem: "task",
		Labels:    Labels{},
	}
}

// MetricsOption configures the metrics instrumentation
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the namespace for metrics
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Namespace = namespace
	}
}

// WithMetricsSubsystem sets the subsystem for metrics
func WithMetricsSubsystem(subsystem string) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Subsystem = subsystem
	}
}

// WithMetricsLabels sets default labels for all metrics
func WithMetricsLabels(labels Labels) MetricsOption {
	return func(cfg *MetricsConfig) {
		cfg.Labels = labels
	}
}

// Instrument runs op, recording its duration, success/failure, and
// in-flight count against provider. It is the generic instrumentation
// point a worker wraps around each per-drop task submission.
//
// What metrics does it record?
//
//  1. drop_task_total (Counter) - every invocation of op
//  2. drop_task_duration_seconds (Histogram) - how long op took
//  3. drop_task_errors_total (Counter) - invocations where op returned an error
//  4. drop_task_in_flight (Gauge) - invocations currently running
//
// Example:
//
//	provider := observability.NewPrometheusProvider()
//	labels := map[string]string{"worker": "transform-words"}
//
//	err := observability.Instrument(ctx, provider, labels, func(ctx context.Context) error {
//	    return transform(ctx, drop)
//	})
func Instrument(ctx context.Context, provider MetricsProvider, labels map[string]string, op func(context.Context) error, opts ...MetricsOption) error {
	cfg := DefaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	allLabels := cfg.Labels.Merge(Labels(labels))

	start := time.Now()
	provider.Gauge(ctx, metricName(cfg, "in_flight"), 1, allLabels)

	opErr := op(ctx)

	duration := time.Since(start)
	provider.Counter(ctx, metricName(cfg, "total"), 1, allLabels)
	provider.RecordDuration(ctx, metricName(cfg, "duration_seconds"), duration, allLabels)
	provider.Gauge(ctx, metricName(cfg, "in_flight"), -1, allLabels)

	if opErr != nil {
		errorLabels := allLabels.Merge(Labels{"error_type": errorType(opErr)})
		provider.Counter(ctx, metricName(cfg, "errors_total"), 1, errorLabels)
	}

	return opErr
}

// RecordGauge passes a gauge value (e.g. a pipe's average load or a
// worker's current utilization) to provider.Gauge under the configured
// namespace; the bundled providers add it to the gauge's current value.
func RecordGauge(ctx context.Context, provider MetricsProvider, name string, value float64, labels map[string]string, opts ...MetricsOption) {
	cfg := DefaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	provider.Gauge(ctx, metricName(cfg, name), value, cfg.Labels.Merge(Labels(labels)))
}

// metricName builds the full metric name with namespace and subsystem
func metricName(cfg MetricsConfig, name string) string {
	if cfg.Namespace != "" && cfg.Subsystem != "" {
		return cfg.Namespace + "_" + cfg.Subsystem + "_" + name
	}
	if cfg.Namespace != "" {
		return cfg.Namespace + "_" + name
	}
	if cfg.Subsystem != "" {
		return cfg.Subsystem + "_" + name
	}
	return name
}

// errorType extracts a coarse type string from an error for labeling.
func errorType(err error) string {
	if err == nil {
		return ""
	}
	return "error"
}
