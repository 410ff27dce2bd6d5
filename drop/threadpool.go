package drop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ThreadFactory is the external thread source a Worker or Pipeline runs
// tasks on: a human-readable name plus normal scheduling priority. The
// default factory spawns a goroutine per invocation; a caller that wants
// OS-thread pinning or custom naming/priority conventions supplies its
// own.
type ThreadFactory interface {
	NewThread(name string, run func())
}

// goroutineThreadFactory is the default ThreadFactory: every call spawns
// a plain goroutine. The name is ignored.
type goroutineThreadFactory struct{}

func (goroutineThreadFactory) NewThread(_ string, run func()) {
	go run()
}

// DefaultThreadFactory is the package-level goroutine-backed factory used
// when a Worker or Pipeline is built without an explicit one.
var DefaultThreadFactory ThreadFactory = goroutineThreadFactory{}

type threadIndexKeyType struct{}

var threadIndexKey threadIndexKeyType

// withThreadIndex attaches a pool slot index to ctx for the duration of
// one task invocation.
func withThreadIndex(ctx context.Context, slot int) context.Context {
	return context.WithValue(ctx, threadIndexKey, slot)
}

// ThreadIndex returns the stable slot index, in [0, concurrency), of the
// pool slot currently executing the calling task. It returns ok=false
// when called from outside a drop-handling task.
func ThreadIndex(ctx context.Context) (index int, ok bool) {
	v := ctx.Value(threadIndexKey)
	if v == nil {
		return 0, false
	}
	slot, isInt := v.(int)
	return slot, isInt
}

// ThreadPool is a bounded, fair worker pool: exactly `size` logical
// slots, assigned once at construction and recycled per task, never
// rejecting a submission but blocking the submitter when every slot is
// busy. This is the sole source of a worker's backpressure beyond its
// input pipe.
type ThreadPool struct {
	name    string
	size    int
	slots   chan int
	factory ThreadFactory

	wg       sync.WaitGroup
	canceled atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewThreadPool builds a pool of the given size (minimum 1) backed by
// factory. If factory is nil, DefaultThreadFactory is used.
func NewThreadPool(name string, size int, factory ThreadFactory) *ThreadPool {
	if size < 1 {
		size = 1
	}
	if factory == nil {
		factory = DefaultThreadFactory
	}
	slots := make(chan int, size)
	for i := 0; i < size; i++ {
		slots <- i
	}
	return &ThreadPool{name: name, size: size, slots: slots, factory: factory}
}

// Size reports the pool's configured concurrency.
func (p *ThreadPool) Size() int { return p.size }

// CanceledCount reports how many submitted tasks were interrupted before
// running, per Worker.cancel's canceled-work counter.
func (p *ThreadPool) CanceledCount() int64 { return p.canceled.Load() }

// Submit blocks until a slot is free (or ctx is done, or the pool has
// been shut down) and then runs task on that slot, with its thread-index
// reachable via ThreadIndex(ctx) from inside task.
func (p *ThreadPool) Submit(ctx context.Context, task func(ctx context.Context)) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return NewFault(BackpressureInterrupted, "pool shut down")
	}
	p.wg.Add(1)
	p.mu.Unlock()

	var slot int
	select {
	case slot = <-p.slots:
	case <-ctx.Done():
		p.wg.Done()
		p.canceled.Add(1)
		return WrapFault(BackpressureInterrupted, ctx.Err(), "submission interrupted")
	}

	threadName := fmt.Sprintf("%s-%d", p.name, slot)
	p.factory.NewThread(threadName, func() {
		defer p.wg.Done()
		defer func() { p.slots <- slot }()

		select {
		case <-ctx.Done():
			p.canceled.Add(1)
			return
		default:
		}
		task(withThreadIndex(ctx, slot))
	})
	return nil
}

// Shutdown marks the pool closed to new submissions; it does not
// interrupt tasks already running. Call Wait afterward to quiesce.
func (p *ThreadPool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Wait blocks until every submitted task has returned.
func (p *ThreadPool) Wait() {
	p.wg.Wait()
}
