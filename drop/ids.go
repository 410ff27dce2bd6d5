package drop

import "github.com/google/uuid"

// ComponentKind tags a pipe or worker with its concrete role so the graph
// validator and monitoring chart can render a display name without
// resorting to reflection over concrete Go types.
type ComponentKind int

const (
	KindSupplier ComponentKind = iota
	KindFunction
	KindTransformer
	KindConsumer
	KindAction
	KindFork
	KindJoin
	KindDrain
	KindForward
	KindPipe
	KindSupplyPipe
)

func (k ComponentKind) String() string {
	switch k {
	case KindSupplier:
		return "supplier"
	case KindFunction:
		return "function"
	case KindTransformer:
		return "transformer"
	case KindConsumer:
		return "consumer"
	case KindAction:
		return "action"
	case KindFork:
		return "fork"
	case KindJoin:
		return "join"
	case KindDrain:
		return "drain"
	case KindForward:
		return "forward"
	case KindPipe:
		return "pipe"
	case KindSupplyPipe:
		return "supply_pipe"
	default:
		return "unknown"
	}
}

// Named is implemented by every worker and pipe: a display_name()-style
// accessor used by the graph validator's chart instead of reflection
// over concrete types.
type Named interface {
	Kind() ComponentKind
	Name() string
}

// newID generates a short, readable component identifier. Workers and
// pipes get one at construction unless the caller names them explicitly.
func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
