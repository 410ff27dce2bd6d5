package drop

import (
	"context"

	logger "github.com/ugn-go/drop/logging"
	"github.com/ugn-go/drop/observability"
)

// WithMetrics attaches a MetricsProvider that wraps every per-drop task
// this worker submits in observability.Instrument, recording task
// counts, duration, error counts, and an in-flight gauge labeled with
// the worker's name plus any labels supplied here.
func WithMetrics(provider observability.MetricsProvider, labels map[string]string) WorkerOption {
	return func(wc *workerCore) {
		wc.metrics = provider
		wc.metricsLabels = labels
	}
}

// WithTracer attaches a TracerProvider; every per-drop task runs inside
// a "<worker>.task" span.
func WithTracer(provider observability.TracerProvider) WorkerOption {
	return func(wc *workerCore) { wc.tracer = provider }
}

// WithLogger attaches a structured logger. The worker logs "worker
// running" when it starts, "worker done" on a clean finish, "worker
// canceled" with the reason on each Cancel, and an error line for each
// failed task and for the final fault when it ends Aborted.
func WithLogger(log *logger.Logger) WorkerOption {
	return func(wc *workerCore) { wc.log = log }
}

func (wc *workerCore) instrumentTask(taskLabels map[string]string, run func(context.Context) error) func(context.Context) error {
	if wc.tracer != nil {
		inner := run
		run = func(ctx context.Context) error {
			return observability.Trace(ctx, wc.tracer, wc.name+".task", inner)
		}
	}
	if wc.metrics != nil {
		inner := run
		labels := mergeLabels(map[string]string{"worker": wc.name}, wc.metricsLabels, taskLabels)
		run = func(ctx context.Context) error {
			return observability.Instrument(ctx, wc.metrics, labels, inner)
		}
	}
	return run
}

func mergeLabels(base map[string]string, overrides ...map[string]string) map[string]string {
	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = v
	}
	for _, m := range overrides {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func (wc *workerCore) logEvent(msg string, attrs ...logger.Attribute) {
	if wc.log == nil {
		return
	}
	wc.log.Info().Msg(msg, append([]logger.Attribute{logger.Attr("worker", wc.name)}, attrs...)...)
}

func (wc *workerCore) logFault(err error) {
	if wc.log == nil {
		return
	}
	wc.log.Error().Msg(wc.name+" task failed", logger.Attr("worker", wc.name), logger.Attr("error", err.Error()))
}

// WithPipelineMetrics attaches a MetricsProvider the pipeline's Run is
// wrapped in observability.Instrument against, recording a run count,
// duration, error count, and an in-flight gauge labeled with labels.
func WithPipelineMetrics(provider observability.MetricsProvider, labels map[string]string) func(*pipelineTelemetry) {
	return func(t *pipelineTelemetry) {
		t.metrics = provider
		t.labels = labels
	}
}

// WithPipelineTracer wraps the pipeline's Run in a "pipeline.run" span.
func WithPipelineTracer(provider observability.TracerProvider) func(*pipelineTelemetry) {
	return func(t *pipelineTelemetry) { t.tracer = provider }
}

// WithPipelineLogger attaches a structured logger the pipeline reports
// its own lifecycle transitions and final outcome to.
func WithPipelineLogger(log *logger.Logger) func(*pipelineTelemetry) {
	return func(t *pipelineTelemetry) { t.log = log }
}

type pipelineTelemetry struct {
	metrics observability.MetricsProvider
	labels  map[string]string
	tracer  observability.TracerProvider
	log     *logger.Logger
}

func (t *pipelineTelemetry) logEvent(msg string, attrs ...logger.Attribute) {
	if t == nil || t.log == nil {
		return
	}
	t.log.Info().Msg(msg, attrs...)
}

func (t *pipelineTelemetry) wrapRun(run func(context.Context) error) func(context.Context) error {
	if t == nil {
		return run
	}
	if t.tracer != nil {
		inner := run
		run = func(ctx context.Context) error {
			return observability.Trace(ctx, t.tracer, "pipeline.run", inner)
		}
	}
	if t.metrics != nil {
		inner := run
		labels := mergeLabels(map[string]string{}, t.labels)
		run = func(ctx context.Context) error {
			return observability.Instrument(ctx, t.metrics, labels, inner)
		}
	}
	return run
}

// HealthChecker returns an observability.HealthChecker reporting the
// pipeline unhealthy once it has reached a terminal Aborted state, and
// healthy otherwise (including before Run, and after a clean Done or an
// explicit Stop/Canceled).
func (p *Pipeline[D]) HealthChecker(name string) observability.HealthChecker {
	return &observability.FuncHealthCheck{
		CheckName: name,
		CheckFunc: func(context.Context) error {
			if p.State() == StateAborted {
				if f := p.faults.get(); f != nil {
					return f
				}
				return NewFault(ConfigurationFault, name+" pipeline aborted")
			}
			return nil
		},
	}
}
