package mixedstate

import (
	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/stateiter"
	"github.com/troikacore/trailcore/internal/trail"
)

// statesSource is what TwoRoundTrailCore needs from its cache: the
// current weights, the active-trit patterns, and a way to enumerate
// every concrete B compatible with the node (spec.md §5.1, §5.2).
type statesSource interface {
	weighable
	GetActiveA() algebra.ActiveState
	GetActiveB() algebra.ActiveState
	NewStateIterator() *stateiter.Iterator
}

// TwoRoundTrailCore is the rendered output of a node of the mixed-state
// search tree: the trail core's weights, its active-trit patterns, and
// an iterator over every concrete B state (and hence A, via inverse
// Lambda) consistent with them.
type TwoRoundTrailCore[C statesSource] struct {
	WA, WB           uint32
	StatesB          *stateiter.Iterator
	ActiveA, ActiveB algebra.ActiveState
}

// Set implements traversal.Output.
func (t *TwoRoundTrailCore[C]) Set(unitList []ActiveTrits, cache C, costF TwoRoundTrailCoreCostFunction[C], maxCost uint32) {
	t.WA = cache.WA()
	t.WB = cache.WB()
	t.StatesB = cache.NewStateIterator()
	t.ActiveA = cache.GetActiveA()
	t.ActiveB = cache.GetActiveB()
}

// Trails yields every complete 2-round trail core (stateA, stateB) this
// node represents, materializing each B from StatesB and recovering A
// as InvLambda(B).
func (t *TwoRoundTrailCore[C]) Trails() []trail.TrailCore {
	var out []trail.TrailCore
	for !t.StatesB.IsEnd() {
		stateB := t.StatesB.Value()
		stateA := stateB
		stateA.InvLambda()
		out = append(out, trail.NewTwoRoundTrailCore(stateA, stateB, algebra.NewWeight(t.WA), algebra.NewWeight(t.WB)))
		t.StatesB.Next()
	}
	return out
}
