package drop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	logger "github.com/ugn-go/drop/logging"
	"github.com/ugn-go/drop/observability"
)

// State is a worker or pipeline's lifecycle stage:
// Ready -> Running -> (Closing | Aborting) -> (Done | Aborted | Canceled).
type State int32

const (
	StateReady State = iota
	StateRunning
	StateClosing
	StateAborting
	StateDone
	StateAborted
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	case StateAborting:
		return "aborting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// WorkerStats is the read-only monitoring snapshot for a worker.
type WorkerStats struct {
	State               State
	Concurrency         int
	CurrentUtilization  float64
	AverageUtilization  float64
	CanceledWork        int64
}

// Worker is the abstract execution unit the pipeline schedules: it owns
// zero or more input pipes, zero or more output pipes, a bounded pool,
// an optional retry policy, and a one-shot run lifecycle.
type Worker interface {
	Named
	Run(ctx context.Context) error
	Cancel(reason error)
	Interrupt()
	State() State
	Stats() WorkerStats
	Inputs() []PipeHandle
	Outputs() []PipeHandle
}

// workerCore is the non-generic lifecycle machinery shared by every
// worker variant. Type-specific behavior (draining a typed input pipe,
// invoking user logic, pushing to a typed output pipe) lives in a
// closure supplied by each NewXxx constructor in workers.go /
// internal_workers.go, which is how generics and a single heterogeneous
// Worker interface coexist in Go.
type workerCore struct {
	id          string
	name        string
	kind        ComponentKind
	concurrency int
	pool        *ThreadPool
	retry       *RetryPolicy

	inputs  []PipeHandle
	outputs []PipeHandle

	// metrics/metricsLabels, tracer, and log are the optional ambient
	// observability hooks set via WithMetrics/WithTracer/WithLogger;
	// nil means that concern is disabled for this worker.
	metrics       observability.MetricsProvider
	metricsLabels map[string]string
	tracer        observability.TracerProvider
	log           *logger.Logger

	// work drains the worker's input(s) and submits one task to the pool
	// per drop. It returns once input is exhausted or a fault occurred.
	work func(ctx context.Context, wc *workerCore) error
	// closeHook is the user-supplied close() hook, run once work()
	// finishes, before internalClose.
	closeHook func() error
	// internalClose typically closes output pipes with SetEndOfInput.
	internalClose func(cause error) error

	state atomic.Int32
	ran   atomic.Bool

	faults *faultHolder

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	startedAt  time.Time

	activeTasks atomic.Int64
	busyNanos   atomic.Int64
}

func newWorkerCore(name string, kind ComponentKind, concurrency int, retry *RetryPolicy, factory ThreadFactory) *workerCore {
	if concurrency < 1 {
		concurrency = 1
	}
	return &workerCore{
		id:          newID(kind.String()),
		name:        name,
		kind:        kind,
		concurrency: concurrency,
		pool:        NewThreadPool(name, concurrency, factory),
		retry:       retry,
		faults:      newFaultHolder(),
	}
}

func (wc *workerCore) Kind() ComponentKind { return wc.kind }
func (wc *workerCore) Name() string        { return wc.name }
func (wc *workerCore) Inputs() []PipeHandle  { return wc.inputs }
func (wc *workerCore) Outputs() []PipeHandle { return wc.outputs }

func (wc *workerCore) State() State {
	return State(wc.state.Load())
}

func (wc *workerCore) setState(s State) {
	wc.state.Store(int32(s))
}

// Run executes the worker lifecycle exactly once: Running, then work(),
// then pool quiescence, then Closing|Aborting with the close hooks, then
// a terminal state. Calling Run twice fails without executing user logic.
func (wc *workerCore) Run(ctx context.Context) error {
	if !wc.ran.CompareAndSwap(false, true) {
		return NewFault(ConfigurationFault, wc.name+" has already run")
	}

	wc.setState(StateRunning)
	wc.logEvent("worker running")
	runCtx, cancel := context.WithCancel(ctx)
	wc.mu.Lock()
	wc.cancelFunc = cancel
	wc.startedAt = time.Now()
	wc.mu.Unlock()

	if err := wc.work(runCtx, wc); err != nil {
		wc.faults.register(err)
	}

	wc.pool.Shutdown()
	wc.pool.Wait()

	if wc.faults.get() != nil {
		wc.setState(StateAborting)
	} else {
		wc.setState(StateClosing)
	}

	if wc.closeHook != nil {
		if err := wc.closeHook(); err != nil {
			wc.faults.register(WrapFault(UserWorkFault, err, wc.name+" close hook failed"))
		}
	}
	if wc.internalClose != nil {
		var cause error
		if f := wc.faults.get(); f != nil {
			cause = f
		}
		if err := wc.internalClose(cause); err != nil {
			wc.faults.register(err)
		}
	}

	cancel()

	final := wc.faults.get()
	switch {
	case final == nil:
		wc.setState(StateDone)
		wc.logEvent("worker done")
		return nil
	case final.kind == Cancellation || final.kind == SilentStop:
		wc.setState(StateCanceled)
	default:
		wc.setState(StateAborted)
		wc.logFault(final)
	}

	if final.kind == SilentStop {
		return nil
	}
	return final
}

// Cancel registers reason (or silentStop if nil) as the worker's
// throwable, shuts the pool down, interrupts in-flight tasks
// cooperatively via context cancellation, and closes input pipes so any
// blocked Drain returns.
func (wc *workerCore) Cancel(reason error) {
	var f *Fault
	if reason == nil {
		f = silentStop
	} else if asF, ok := reason.(*Fault); ok {
		f = asF
	} else {
		f = WrapFault(Cancellation, reason, wc.name+" canceled")
	}
	wc.faults.register(f)
	wc.logEvent("worker canceled", logger.Attr("reason", f.Error()))
	wc.pool.Shutdown()

	wc.mu.Lock()
	cancel := wc.cancelFunc
	wc.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	for _, in := range wc.inputs {
		in.SetEndOfInput(f)
	}
}

// Interrupt is Cancel with a standard interruption reason.
func (wc *workerCore) Interrupt() {
	wc.Cancel(WrapFault(Cancellation, errors.New(wc.name+" interrupted."), wc.name+" interrupted"))
}

func (wc *workerCore) Stats() WorkerStats {
	active := wc.activeTasks.Load()
	var avg float64
	wc.mu.Lock()
	started := wc.startedAt
	wc.mu.Unlock()
	if !started.IsZero() {
		elapsed := time.Since(started)
		if elapsed > 0 {
			avg = float64(wc.busyNanos.Load()) / float64(elapsed.Nanoseconds()) / float64(wc.concurrency)
			if avg > 1 {
				avg = 1
			}
		}
	}
	return WorkerStats{
		State:              wc.State(),
		Concurrency:        wc.concurrency,
		CurrentUtilization: float64(active) / float64(wc.concurrency),
		AverageUtilization: avg,
		CanceledWork:       wc.pool.CanceledCount(),
	}
}

// submitTask wraps a per-drop task with retry, busy-time accounting, and
// the "any task error cancels the worker" propagation policy, then hands
// it to the worker's pool.
func (wc *workerCore) submitTask(ctx context.Context, task func(ctx context.Context) error) error {
	instrumented := wc.instrumentTask(nil, func(taskCtx context.Context) error {
		return withRetry(taskCtx, wc.retry, func() error {
			return task(taskCtx)
		})
	})
	return wc.pool.Submit(ctx, func(taskCtx context.Context) {
		wc.activeTasks.Add(1)
		start := time.Now()
		defer func() {
			wc.busyNanos.Add(time.Since(start).Nanoseconds())
			wc.activeTasks.Add(-1)
		}()

		err := instrumented(taskCtx)
		if err != nil && !IsSilentStop(err) {
			wc.logFault(err)
			wc.Cancel(WrapFault(UserWorkFault, err, wc.name+" task failed"))
		}
	})
}
