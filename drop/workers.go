package drop

import "context"

// WorkerOption configures optional, shared worker machinery: concurrency,
// retry policy, thread source, and a user-supplied close() hook run once
// work() has finished but before outputs are closed.
type WorkerOption func(*workerCore)

// WithConcurrency sets the worker's bounded pool size. Default is 1.
func WithConcurrency(n int) WorkerOption {
	return func(wc *workerCore) {
		if n < 1 {
			n = 1
		}
		wc.concurrency = n
		wc.pool = NewThreadPool(wc.name, n, wc.pool.factory)
	}
}

// WithRetry attaches a retry policy to every per-drop task.
func WithRetry(policy *RetryPolicy) WorkerOption {
	return func(wc *workerCore) { wc.retry = policy }
}

// WithThreadFactory overrides the thread source used to run tasks.
func WithThreadFactory(factory ThreadFactory) WorkerOption {
	return func(wc *workerCore) {
		wc.pool = NewThreadPool(wc.name, wc.concurrency, factory)
	}
}

// WithCloseHook registers a user-supplied close() callback, invoked once
// after work() quiesces and before internal_close runs.
func WithCloseHook(hook func() error) WorkerOption {
	return func(wc *workerCore) { wc.closeHook = hook }
}

func applyOptions(wc *workerCore, opts []WorkerOption) {
	for _, opt := range opts {
		opt(wc)
	}
}

// NewSupplier builds a Supplier worker: produces drops with no input,
// feeding a SupplyPipe until supply returns ok=false (end of source).
func NewSupplier[D any](name string, output *SupplyPipe[D], supply func() (D, bool, error), opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindSupplier, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.outputs = []PipeHandle{output}

	wc.work = func(ctx context.Context, core *workerCore) error {
		for {
			if ctx.Err() != nil {
				return nil
			}
			value, ok, err := supply()
			if err != nil {
				return WrapFault(UserWorkFault, err, name+" supplier failed")
			}
			if !ok {
				return nil
			}
			v := value
			if err := core.submitTask(ctx, func(context.Context) error {
				return output.PushValue(v)
			}); err != nil {
				return err
			}
		}
	}
	wc.internalClose = func(cause error) error {
		output.SetEndOfInput(cause)
		return nil
	}
	return wc
}

// NewFunction builds a 1-to-1 Function worker: maps each drop, preserving
// its index, into the same index scope.
func NewFunction[D, R any](name string, input *Pipe[D], output *Pipe[R], fn func(D) (R, error), opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindFunction, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}
	wc.outputs = []PipeHandle{output}

	wc.work = func(ctx context.Context, core *workerCore) error {
		return input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(context.Context) error {
				r, err := fn(d.Payload)
				if err != nil {
					return WrapFault(UserWorkFault, err, name+" function failed")
				}
				return output.Push(Drop[R]{Index: d.Index, Payload: r})
			})
		})
	}
	wc.internalClose = func(cause error) error {
		output.SetEndOfInput(cause)
		return nil
	}
	return wc
}

// NewTransformer builds a 1-to-N Transformer worker: maps each drop to a
// collection of 0..N outputs pushed into a fresh-index output
// SupplyPipe, and after end-of-input, once every transform task has
// returned, emits whatever tail produces (for flush-at-end accumulators
// such as S3's word buffer).
func NewTransformer[D, R any](name string, input *Pipe[D], output *SupplyPipe[R], transform func(D) ([]R, error), tail func() ([]R, error), opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindTransformer, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}
	wc.outputs = []PipeHandle{output}

	wc.work = func(ctx context.Context, core *workerCore) error {
		err := input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(context.Context) error {
				items, err := transform(d.Payload)
				if err != nil {
					return WrapFault(UserWorkFault, err, name+" transform failed")
				}
				for _, item := range items {
					if err := output.PushValue(item); err != nil {
						return err
					}
				}
				return nil
			})
		})
		if err != nil {
			return err
		}
		if tail == nil {
			return nil
		}
		core.pool.Wait()
		items, err := tail()
		if err != nil {
			return WrapFault(UserWorkFault, err, name+" tail failed")
		}
		for _, item := range items {
			if err := output.PushValue(item); err != nil {
				return err
			}
		}
		return nil
	}
	wc.internalClose = func(cause error) error {
		output.SetEndOfInput(cause)
		return nil
	}
	return wc
}

// NewConsumer builds a terminal Consumer worker: a side effect per drop,
// with no output.
func NewConsumer[D any](name string, input *Pipe[D], consume func(D) error, opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindConsumer, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}

	wc.work = func(ctx context.Context, core *workerCore) error {
		return input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(context.Context) error {
				if err := consume(d.Payload); err != nil {
					return WrapFault(UserWorkFault, err, name+" consumer failed")
				}
				return nil
			})
		})
	}
	return wc
}

// NewAction builds an Action worker: a side effect per drop, forwarding
// the drop unchanged (same index) to its output.
func NewAction[D any](name string, input *Pipe[D], output *Pipe[D], action func(D) error, opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindAction, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}
	wc.outputs = []PipeHandle{output}

	wc.work = func(ctx context.Context, core *workerCore) error {
		return input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(context.Context) error {
				if err := action(d.Payload); err != nil {
					return WrapFault(UserWorkFault, err, name+" action failed")
				}
				return output.Push(d)
			})
		})
	}
	wc.internalClose = func(cause error) error {
		output.SetEndOfInput(cause)
		return nil
	}
	return wc
}
