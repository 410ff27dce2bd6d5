package drop

import "sync/atomic"

// SupplyPipe is a Pipe variant that is an entry point into a new index
// scope: it assigns a fresh index to every accepted payload and may
// filter admission through a predicate. A predicate is the only place
// where cardinality within a scope may shrink.
type SupplyPipe[D any] struct {
	*Pipe[D]
	nextIndex atomic.Uint64
	predicate func(D) bool
}

// NewSupplyPipe constructs a SupplyPipe. predicate may be nil, meaning
// every pushed payload is admitted.
func NewSupplyPipe[D any](name string, baseCapacity uint64, predicate func(D) bool) *SupplyPipe[D] {
	p := NewPipe[D](name, baseCapacity)
	p.kind = KindSupplyPipe
	return &SupplyPipe[D]{Pipe: p, predicate: predicate}
}

// PushValue is the public entry form: no index is supplied by the
// caller. If predicate is absent or returns true, a fresh index is
// allocated atomically and the underlying Pipe push is performed.
func (sp *SupplyPipe[D]) PushValue(payload D) error {
	if sp.predicate != nil && !sp.predicate(payload) {
		return nil
	}
	index := sp.nextIndex.Add(1) - 1
	return sp.Pipe.Push(Drop[D]{Index: index, Payload: payload})
}
