package config

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	logger "github.com/ugn-go/drop/logging"
	"github.com/ugn-go/drop/observability"
)

// Stack holds the observability backends a host process builds from
// Config and passes to drop.WithMetrics / drop.WithTracer / drop.WithLogger
// and Builder.WithTelemetry's pipeline-level counterparts.
type Stack struct {
	Metrics observability.MetricsProvider
	Tracer  observability.TracerProvider
	Logger  *logger.Logger

	// MetricsAddr is the address ServeMetrics listens on; empty when
	// MetricsAddr wasn't set in Config, in which case Metrics is a
	// NoopMetricsProvider and ServeMetrics is a no-op.
	MetricsAddr    string
	metricsHandler http.Handler

	// Shutdown releases any resources the tracer opened (an OTLP exporter
	// connection).
	Shutdown func(context.Context) error
}

// BuildStack wires concrete observability backends from cfg: Prometheus
// metrics if MetricsAddr is set, an OTLP tracer if TracingEnabled, and a
// zerolog-backed logger at the configured level. Unset concerns fall back
// to no-ops so callers never need a nil check.
func BuildStack(cfg *Config) (*Stack, error) {
	stack := &Stack{
		Metrics:  &observability.NoopMetricsProvider{},
		Tracer:   &observability.NoopTracerProvider{},
		Logger:   logger.New(logger.NewZerologAdapter(newZerolog(cfg.Observability.LogLevel))),
		Shutdown: func(context.Context) error { return nil },
	}

	if cfg.Observability.MetricsAddr != "" {
		provider := observability.NewPrometheusProvider()
		stack.Metrics = provider
		stack.MetricsAddr = cfg.Observability.MetricsAddr
		stack.metricsHandler = provider.Handler()
	}

	if cfg.Observability.TracingEnabled && cfg.Observability.OTLPEndpoint != "" {
		tracer, err := observability.NewOTLPTracerProvider("drop-pipeline", cfg.Observability.OTLPEndpoint)
		if err != nil {
			return nil, err
		}
		stack.Tracer = tracer
		stack.Shutdown = tracer.Shutdown
	}

	return stack, nil
}

// ServeMetrics starts an HTTP server exposing the Prometheus /metrics
// endpoint on MetricsAddr, blocking until ctx is canceled. It returns nil
// immediately if metrics were never enabled.
func (s *Stack) ServeMetrics(ctx context.Context) error {
	if s.metricsHandler == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metricsHandler)
	srv := &http.Server{Addr: s.MetricsAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func newZerolog(level string) zerolog.Logger {
	var lvl zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
