package mixedstate

// weighable is the cache accessor TwoRoundTrailCoreCostFunction needs;
// both ActiveTrailCoreCache and MixedTrailCoreCache provide it.
type weighable interface {
	WA() uint32
	WB() uint32
}

// TwoRoundTrailCoreCostFunction computes the exact (not merely a lower
// bound) cost alpha*wMinRev(A) + beta*wMinDir(B) of a mixed-state node,
// since the weight of every active trit added is already known exactly
// (spec.md §5.1/§5.2, contrasted with the bare-state search's bound).
type TwoRoundTrailCoreCostFunction[C weighable] struct {
	Alpha, Beta uint32
}

// NewTwoRoundTrailCoreCostFunction builds a cost function weighing A's
// reverse weight by alpha and B's direct weight by beta.
func NewTwoRoundTrailCoreCostFunction[C weighable](alpha, beta uint32) TwoRoundTrailCoreCostFunction[C] {
	return TwoRoundTrailCoreCostFunction[C]{Alpha: alpha, Beta: beta}
}

// Cost implements traversal.CostFunction.
func (f TwoRoundTrailCoreCostFunction[C]) Cost(unitList []ActiveTrits, cache C) uint32 {
	return f.Alpha*cache.WA() + f.Beta*cache.WB()
}
