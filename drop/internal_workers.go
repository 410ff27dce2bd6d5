package drop

import (
	"context"
	"sync"
)

// ForkOutput is one branch of a Fork: either a same-scope Pipe (pushed
// synchronously, preserving the fork's input index) or a new-scope
// SupplyPipe such as a predicate-filtered branch (pushed asynchronously,
// since it allocates its own fresh index and starting a new scope makes
// it safe to decouple from the synchronous same-scope broadcast).
type ForkOutput[D any] interface {
	handle() PipeHandle
}

type samePipeOutput[D any] struct{ pipe *Pipe[D] }

func (o *samePipeOutput[D]) handle() PipeHandle { return o.pipe }

type supplyPipeOutput[D any] struct{ pipe *SupplyPipe[D] }

func (o *supplyPipeOutput[D]) handle() PipeHandle { return o.pipe }

// SameScope wraps a Pipe as a synchronous, same-scope Fork output.
func SameScope[D any](pipe *Pipe[D]) ForkOutput[D] { return &samePipeOutput[D]{pipe: pipe} }

// NewScope wraps a SupplyPipe as an asynchronous, new-scope Fork output
// (e.g. a predicate-filtered branch).
func NewScope[D any](pipe *SupplyPipe[D]) ForkOutput[D] { return &supplyPipeOutput[D]{pipe: pipe} }

// NewFork builds the internal Fork worker: broadcasts each input drop to
// every output. Same-scope outputs are pushed synchronously within the
// per-drop task since their ordering is scope-critical; new-scope
// (SupplyPipe) outputs are pushed asynchronously, but still submitted to
// the fork's own bounded pool via core.pool.Submit — a fast upstream
// feeding a slow new-scope branch is throttled by the same concurrency
// cap and canceled-work accounting as every other per-drop task, per the
// spec's "pool is the sole source of backpressure" rule. Enqueuing the
// submission itself happens on a throwaway goroutine (not a pool slot) so
// a saturated pool blocks the enqueue rather than the synchronous
// same-scope broadcast above it; a private wait group tracks those
// enqueues so the worker's lifecycle waits for every async push to have
// reached the pool before shutting it down.
func NewFork[D any](name string, input *Pipe[D], outputs []ForkOutput[D], opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindFork, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}
	handles := make([]PipeHandle, len(outputs))
	for i, out := range outputs {
		handles[i] = out.handle()
	}
	wc.outputs = handles

	var asyncWG sync.WaitGroup

	wc.work = func(ctx context.Context, core *workerCore) error {
		err := input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(taskCtx context.Context) error {
				for _, out := range outputs {
					if same, ok := out.(*samePipeOutput[D]); ok {
						if err := same.pipe.Push(d); err != nil {
							return err
						}
					}
				}
				for _, out := range outputs {
					if newScope, ok := out.(*supplyPipeOutput[D]); ok {
						asyncWG.Add(1)
						payload := d.Payload
						target := newScope.pipe
						core.pool.factory.NewThread(name+"-async-enqueue", func() {
							defer asyncWG.Done()
							err := core.pool.Submit(taskCtx, func(context.Context) {
								if err := target.PushValue(payload); err != nil && !IsSilentStop(err) {
									core.Cancel(WrapFault(UserWorkFault, err, name+" async forward failed"))
								}
							})
							if err != nil {
								core.logFault(err)
							}
						})
					}
				}
				return nil
			})
		})
		asyncWG.Wait()
		return err
	}
	wc.internalClose = func(cause error) error {
		for _, h := range handles {
			h.SetEndOfInput(cause)
		}
		return nil
	}
	return wc
}

type joinSlot[D any] struct {
	values  []D
	present []bool
	count   int
}

// NewJoin builds the internal Join worker: per index, collects one drop
// from each input pipe, reduces the K payloads to one (default: last),
// and emits (index, reduced) to the output in the same scope. Inputs
// must share a scope; the barrier is per-index, not per-arrival-order.
func NewJoin[D any](name string, inputs []*Pipe[D], output *Pipe[D], reducer func([]D) (D, error), opts ...WorkerOption) Worker {
	if reducer == nil {
		reducer = func(values []D) (D, error) { return values[len(values)-1], nil }
	}
	wc := newWorkerCore(name, KindJoin, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	handles := make([]PipeHandle, len(inputs))
	for i, in := range inputs {
		handles[i] = in
	}
	wc.inputs = handles
	wc.outputs = []PipeHandle{output}

	wc.work = func(ctx context.Context, core *workerCore) error {
		numInputs := len(inputs)
		var mu sync.Mutex
		pending := make(map[uint64]*joinSlot[D])

		var wg sync.WaitGroup
		errCh := make(chan error, numInputs)

		for slotIdx, in := range inputs {
			slotIdx, in := slotIdx, in
			wg.Add(1)
			DefaultThreadFactory.NewThread(name+"-input", func() {
				defer wg.Done()
				err := in.Drain(func(d Drop[D]) error {
					mu.Lock()
					slot, ok := pending[d.Index]
					if !ok {
						slot = &joinSlot[D]{values: make([]D, numInputs), present: make([]bool, numInputs)}
						pending[d.Index] = slot
					}
					slot.values[slotIdx] = d.Payload
					slot.present[slotIdx] = true
					slot.count++
					ready := slot.count == numInputs
					if ready {
						delete(pending, d.Index)
					}
					mu.Unlock()

					if !ready {
						return nil
					}
					return core.submitTask(ctx, func(context.Context) error {
						reduced, err := reducer(slot.values)
						if err != nil {
							return WrapFault(UserWorkFault, err, name+" join reducer failed")
						}
						return output.Push(Drop[D]{Index: d.Index, Payload: reduced})
					})
				})
				if err != nil {
					errCh <- err
				}
			})
		}

		wg.Wait()
		close(errCh)
		for err := range errCh {
			if err != nil {
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

// NewDrain builds the internal Drain worker: consumes and discards every
// drop, with no output.
func NewDrain[D any](name string, input *Pipe[D], opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindDrain, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}

	wc.work = func(ctx context.Context, core *workerCore) error {
		return input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(context.Context) error { return nil })
		})
	}
	return wc
}

// NewForward builds the internal Forward worker: pushes payloads from
// one pipe into another scope's entry point (a SupplyPipe).
func NewForward[D any](name string, input *Pipe[D], target *SupplyPipe[D], opts ...WorkerOption) Worker {
	wc := newWorkerCore(name, KindForward, 1, nil, DefaultThreadFactory)
	applyOptions(wc, opts)
	wc.inputs = []PipeHandle{input}
	wc.outputs = []PipeHandle{target}

	wc.work = func(ctx context.Context, core *workerCore) error {
		return input.Drain(func(d Drop[D]) error {
			return core.submitTask(ctx, func(context.Context) error {
				return target.PushValue(d.Payload)
			})
		})
	}
	wc.internalClose = func(cause error) error {
		target.SetEndOfInput(cause)
		return nil
	}
	return wc
}
