package drop

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	logger "github.com/ugn-go/drop/logging"
)

// Builder accumulates workers against a root SupplyPipe and produces an
// immutable Pipeline. It is consumed by value semantics: Build validates
// the graph once and hands back a Pipeline ready to Run.
type Builder[D any] struct {
	root            *SupplyPipe[D]
	workers         []Worker
	allowedWarnings map[Warning]bool
	threadFactory   ThreadFactory
	telemetry       pipelineTelemetry
}

// WithTelemetry applies pipeline-level observability options (see
// WithPipelineMetrics, WithPipelineTracer, WithPipelineLogger) to the
// pipeline this Builder produces.
func (b *Builder[D]) WithTelemetry(opts ...func(*pipelineTelemetry)) *Builder[D] {
	for _, opt := range opts {
		opt(&b.telemetry)
	}
	return b
}

// NewBuilder starts a Builder rooted at the given SupplyPipe, the
// pipeline's sole external entry point.
func NewBuilder[D any](root *SupplyPipe[D]) *Builder[D] {
	return &Builder[D]{root: root, allowedWarnings: map[Warning]bool{}}
}

// Use adds a worker to the pipeline under construction.
func (b *Builder[D]) Use(w Worker) *Builder[D] {
	b.workers = append(b.workers, w)
	return b
}

// Allow pre-declares graph-validation warnings the caller tolerates.
// Any warning not declared here rejects Build.
func (b *Builder[D]) Allow(warnings ...Warning) *Builder[D] {
	for _, w := range warnings {
		b.allowedWarnings[w] = true
	}
	return b
}

// WithThreadFactory sets the thread source Run starts workers on.
func (b *Builder[D]) WithThreadFactory(factory ThreadFactory) *Builder[D] {
	b.threadFactory = factory
	return b
}

// Build validates the graph and, if every emitted warning was
// pre-declared, returns an immutable Pipeline.
func (b *Builder[D]) Build() (*Pipeline[D], error) {
	result, err := validate(b.workers, b.root)
	if err != nil {
		return nil, err
	}

	var unexpected []string
	for _, w := range result.Warnings {
		if !b.allowedWarnings[w] {
			unexpected = append(unexpected, w.String())
		}
	}
	if len(unexpected) > 0 {
		return nil, NewFault(ConfigurationFault, "unexpected graph warnings: "+strings.Join(unexpected, ", "))
	}

	factory := b.threadFactory
	if factory == nil {
		factory = DefaultThreadFactory
	}

	return &Pipeline[D]{
		root:          b.root,
		workers:       append([]Worker(nil), b.workers...),
		warnings:      result.Warnings,
		matrix:        result.Matrix,
		faults:        newFaultHolder(),
		threadFactory: factory,
		telemetry:     b.telemetry,
	}, nil
}

// Pipeline owns a validated worker set, the root SupplyPipe, and the
// monitoring matrix. It runs all workers concurrently and aggregates
// their outcome.
type Pipeline[D any] struct {
	root     *SupplyPipe[D]
	workers  []Worker
	warnings []Warning
	matrix   *MonitorMatrix

	faults *faultHolder
	state  atomic.Int32
	ran    atomic.Bool

	threadFactory ThreadFactory
	telemetry     pipelineTelemetry

	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// Warnings returns the graph-validation warnings observed at Build time.
func (p *Pipeline[D]) Warnings() []Warning { return p.warnings }

// Monitor returns the 2-D monitoring layout matrix computed at Build
// time, or nil if a CYCLE warning discarded it.
func (p *Pipeline[D]) Monitor() *MonitorMatrix { return p.matrix }

// State reports the pipeline's lifecycle stage.
func (p *Pipeline[D]) State() State { return State(p.state.Load()) }

// Run starts every worker concurrently, waits for all to finish, and
// returns the aggregated first-with-suppressed fault, or nil on a clean
// finish (including an explicit Stop).
func (p *Pipeline[D]) Run(ctx context.Context) error {
	if !p.ran.CompareAndSwap(false, true) {
		return NewFault(ConfigurationFault, "pipeline has already run")
	}

	run := p.telemetry.wrapRun(p.runWorkers)
	return run(ctx)
}

func (p *Pipeline[D]) runWorkers(ctx context.Context) error {
	p.state.Store(int32(StateRunning))
	p.telemetry.logEvent("pipeline running")
	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancelFunc = cancel
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range p.workers {
		w := w
		wg.Add(1)
		p.threadFactory.NewThread("pipeline-worker-"+w.Name(), func() {
			defer wg.Done()
			if err := w.Run(runCtx); err != nil {
				p.faults.register(err)
			}
		})
	}
	wg.Wait()
	cancel()

	final := p.faults.get()
	if final == nil {
		p.state.Store(int32(StateDone))
		p.telemetry.logEvent("pipeline done")
		return nil
	}
	if final.kind == Cancellation || final.kind == SilentStop {
		p.state.Store(int32(StateCanceled))
	} else {
		p.state.Store(int32(StateAborted))
		p.telemetry.logEvent("pipeline aborted", logger.Attr("error", final.Error()))
	}
	if final.kind == SilentStop {
		return nil
	}
	return final
}

// Get wraps Run into a monadic success/failure Outcome instead of an
// error return.
func (p *Pipeline[D]) Get(ctx context.Context) Outcome[struct{}] {
	if err := p.Run(ctx); err != nil {
		return Err[struct{}](err)
	}
	return Ok(struct{}{})
}

// Push delegates to the root SupplyPipe; an open pipeline (Run already
// invoked) may be fed concurrently from the caller.
func (p *Pipeline[D]) Push(payload D) error {
	return p.root.PushValue(payload)
}

// SetEndOfInput closes the root SupplyPipe, signaling no more external
// input is coming.
func (p *Pipeline[D]) SetEndOfInput() {
	p.root.SetEndOfInput(nil)
}

// Stop cancels every worker with no reason: Run returns cleanly with no
// surfaced error.
func (p *Pipeline[D]) Stop() {
	p.cancelAll(nil)
}

// Interrupt cancels every worker with an interruption reason, surfaced
// as the pipeline's final error.
func (p *Pipeline[D]) Interrupt() {
	p.cancelAll(WrapFault(Cancellation, errors.New("pipeline interrupted."), "pipeline interrupted"))
}

func (p *Pipeline[D]) cancelAll(reason error) {
	p.mu.Lock()
	cancel := p.cancelFunc
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	for _, w := range p.workers {
		w.Cancel(reason)
	}
	p.root.Clear()
	for _, w := range p.workers {
		for _, h := range w.Outputs() {
			h.Clear()
		}
	}
}

// bottleneckLoadThreshold is the average-load fraction above which an
// input pipe marks its consuming worker a bottleneck.
const bottleneckLoadThreshold = 0.95

// Bottlenecks returns the subset of input-having workers whose input
// pipe has average load greater than bottleneckLoadThreshold.
func (p *Pipeline[D]) Bottlenecks() []Worker {
	var out []Worker
	for _, w := range p.workers {
		for _, in := range w.Inputs() {
			if in.Stats().AverageLoad > bottleneckLoadThreshold {
				out = append(out, w)
				break
			}
		}
	}
	return out
}
