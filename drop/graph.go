package drop

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Warning is a graph-validation concern that the pipeline builder may
// choose to tolerate. Unlisted warnings reject the build.
type Warning int

const (
	WarningCompleteness Warning = iota
	WarningDiscovery
	WarningMultipleInputs
	WarningUnbalancedFork
	WarningCycle
)

func (w Warning) String() string {
	switch w {
	case WarningCompleteness:
		return "COMPLETENESS"
	case WarningDiscovery:
		return "DISCOVERY"
	case WarningMultipleInputs:
		return "MULTIPLE_INPUTS"
	case WarningUnbalancedFork:
		return "UNBALANCED_FORK"
	case WarningCycle:
		return "CYCLE"
	default:
		return "UNKNOWN"
	}
}

// ValidationResult is the outcome of validating a worker set against a
// root SupplyPipe: the warnings actually observed, and (unless a cycle
// was detected) the monitoring layout matrix.
type ValidationResult struct {
	Warnings []Warning
	Matrix   *MonitorMatrix
}

// identifiable is implemented by *Pipe[D] (and, by embedding promotion,
// *SupplyPipe[D]) to expose the canonical pipe identity behind a
// PipeHandle. A SupplyPipe and the *Pipe it wraps are the same physical
// pipe; without this normalization the validator would see a worker
// outputting to the SupplyPipe and another consuming from its embedded
// Pipe as two distinct, mutually orphaned pipes.
type identifiable interface {
	canonicalHandle() PipeHandle
}

// canonicalize resolves h to the identity used for producer/consumer
// bookkeeping and graph layout.
func canonicalize(h PipeHandle) PipeHandle {
	if h == nil {
		return nil
	}
	if id, ok := h.(identifiable); ok {
		return id.canonicalHandle()
	}
	return h
}

// validate classifies pipes by producer/consumer, emits warnings, and
// lays out the monitoring matrix by breadth-first traversal from root.
// It returns a *Fault(ConfigurationFault) if two distinct producers
// target the same non-SupplyPipe pipe — that is a build error, not a
// tolerable warning.
func validate(workers []Worker, root PipeHandle) (*ValidationResult, error) {
	root = canonicalize(root)
	producers := orderedmap.New[PipeHandle, []Worker]()
	consumers := orderedmap.New[PipeHandle, []Worker]()

	for _, w := range workers {
		for _, out := range w.Outputs() {
			out := canonicalize(out)
			list, _ := producers.Get(out)
			producers.Set(out, append(list, w))
		}
		for _, in := range w.Inputs() {
			in := canonicalize(in)
			list, _ := consumers.Get(in)
			consumers.Set(in, append(list, w))
		}
	}

	for pair := producers.Oldest(); pair != nil; pair = pair.Next() {
		if len(pair.Value) > 1 && pair.Key.Kind() != KindSupplyPipe {
			names := make([]string, len(pair.Value))
			for i, w := range pair.Value {
				names[i] = w.Name()
			}
			return nil, NewFault(ConfigurationFault,
				fmt.Sprintf("pipe %q has multiple producers (%s) but is not a SupplyPipe",
					pair.Key.Name(), strings.Join(names, ", ")))
		}
	}

	warningSet := map[Warning]bool{}

	for pair := producers.Oldest(); pair != nil; pair = pair.Next() {
		if len(pair.Value) > 1 {
			warningSet[WarningMultipleInputs] = true
		}
		if _, ok := consumers.Get(pair.Key); !ok {
			warningSet[WarningCompleteness] = true
		}
	}
	for pair := consumers.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == root {
			continue
		}
		if _, ok := producers.Get(pair.Key); !ok {
			warningSet[WarningCompleteness] = true
		}
	}

	checkUnbalancedFork(workers, warningSet)

	columnOf, order, cyclic := layout(workers, root, consumers)
	if cyclic {
		warningSet[WarningCycle] = true
	} else {
		reached := map[Worker]bool{}
		for _, item := range order {
			if w, ok := item.(Worker); ok {
				reached[w] = true
			}
		}
		for _, w := range workers {
			// A worker with no inputs (e.g. a Supplier) is a source: it
			// feeds the graph rather than being fed by it, so it is
			// trivially reachable regardless of BFS traversal from root.
			if len(w.Inputs()) == 0 {
				if _, placed := columnOf[w]; !placed {
					columnOf[w] = 0
					order = append(order, w)
				}
				continue
			}
			if !reached[w] {
				warningSet[WarningDiscovery] = true
			}
		}
	}

	result := &ValidationResult{}
	for w := WarningCompleteness; w <= WarningCycle; w++ {
		if warningSet[w] {
			result.Warnings = append(result.Warnings, w)
		}
	}
	if !cyclic {
		result.Matrix = buildMatrix(columnOf, order)
	}
	return result, nil
}

// checkUnbalancedFork flags Fork workers whose outputs have different
// base capacities.
func checkUnbalancedFork(workers []Worker, warningSet map[Warning]bool) {
	for _, w := range workers {
		if w.Kind() != KindFork {
			continue
		}
		outs := w.Outputs()
		if len(outs) < 2 {
			continue
		}
		first := outs[0].Stats().BaseCapacity
		for _, out := range outs[1:] {
			if out.Stats().BaseCapacity != first {
				warningSet[WarningUnbalancedFork] = true
				break
			}
		}
	}
}

type queueItem struct {
	item Named
	col  int
}

// layout performs a breadth-first traversal from root (treated as a
// virtual column-0 node), returning the final column assigned to every
// reached worker/pipe, the order they were first discovered in (for
// deterministic matrix row assignment), and whether traversal exceeded
// 2x (worker count + 1) queue steps — the CYCLE signal, at which point the layout is
// abandoned.
func layout(workers []Worker, root PipeHandle, consumers *orderedmap.OrderedMap[PipeHandle, []Worker]) (map[Named]int, []Named, bool) {
	columnOf := map[Named]int{}
	var order []Named
	queue := []queueItem{{item: root, col: 0}}
	maxSteps := 2 * (len(workers) + 1)
	steps := 0

	for len(queue) > 0 {
		steps++
		if steps > maxSteps {
			return columnOf, order, true
		}
		head := queue[0]
		queue = queue[1:]

		if existing, ok := columnOf[head.item]; ok && existing >= head.col {
			continue
		}
		if _, ok := columnOf[head.item]; !ok {
			order = append(order, head.item)
		}
		columnOf[head.item] = head.col

		switch v := head.item.(type) {
		case PipeHandle:
			list, _ := consumers.Get(v)
			for _, w := range list {
				queue = append(queue, queueItem{item: w, col: head.col + 1})
			}
		case Worker:
			for _, out := range v.Outputs() {
				queue = append(queue, queueItem{item: canonicalize(out), col: head.col + 1})
			}
		}
	}
	return columnOf, order, false
}
