package mixedstate

import (
	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/barestate"
	"github.com/troikacore/trailcore/internal/stateiter"
)

// ActiveTrailCoreCache is the incremental cache backing the in-kernel
// mixed-state search (spec.md §5.1): the active-trit patterns of A and
// B built so far, a running minimum weight for each, and the list of
// in-kernel columns (parity-zero, every active row) completed along
// the way.
type ActiveTrailCoreCache struct {
	ActiveA, ActiveB algebra.ActiveState
	wA, wB           []uint32
	dummy            bool
	Kernel           bool
	InKernelColumns  []stateiter.Columns
}

// NewActiveTrailCoreCache returns the initial (empty) cache for a
// purely in-kernel search.
func NewActiveTrailCoreCache() *ActiveTrailCoreCache {
	return &ActiveTrailCoreCache{Kernel: true, wA: []uint32{0}, wB: []uint32{0}}
}

// MixedTrailCoreCache extends ActiveTrailCoreCache with the
// out-kernel-component columns and component count carried over from
// a completed bare state, for the out-of-kernel completion search
// (spec.md §5.2).
type MixedTrailCoreCache struct {
	ActiveTrailCoreCache
	OutKernelComponentColumns []stateiter.Columns
	NrComponents              uint32
}

// NewMixedTrailCoreCache seeds a mixed-state search from a completed
// parity-bare 2-round trail core.
func NewMixedTrailCoreCache(bareState *barestate.BareState) *MixedTrailCoreCache {
	c := &MixedTrailCoreCache{
		OutKernelComponentColumns: bareState.OutKernelComponentsColumns,
		NrComponents:              uint32(bareState.NrComponents),
	}
	c.Kernel = false
	c.ActiveA = algebra.FromState(bareState.StateA)
	c.ActiveB = algebra.FromState(bareState.StateB)
	c.wA = []uint32{bareState.WA}
	c.wB = []uint32{bareState.WB}
	return c
}

// IsKernel reports whether this cache backs a purely in-kernel search
// (as opposed to an out-of-kernel completion search).
func (c *ActiveTrailCoreCache) IsKernel() bool { return c.Kernel }

// WA returns the current top-of-stack minimum reverse weight of A.
func (c *ActiveTrailCoreCache) WA() uint32 { return c.wA[len(c.wA)-1] }

// WB returns the current top-of-stack minimum direct weight of B.
func (c *ActiveTrailCoreCache) WB() uint32 { return c.wB[len(c.wB)-1] }

// GetActiveA returns the active-trit pattern of A built so far.
func (c *ActiveTrailCoreCache) GetActiveA() algebra.ActiveState { return c.ActiveA }

// GetActiveB returns the active-trit pattern of B built so far.
func (c *ActiveTrailCoreCache) GetActiveB() algebra.ActiveState { return c.ActiveB }

// NewStateIterator builds the Troika state iterator for B from the
// in-kernel columns accumulated by a purely in-kernel search.
func (c *ActiveTrailCoreCache) NewStateIterator() *stateiter.Iterator {
	return stateiter.NewFromInKernelColumns(c.InKernelColumns, c.ActiveB)
}

// NewStateIterator builds the Troika state iterator for B from the
// in-kernel columns plus the out-kernel-component columns carried over
// from the parity-bare state, for an out-of-kernel completion search.
func (c *MixedTrailCoreCache) NewStateIterator() *stateiter.Iterator {
	return stateiter.NewFromMixedState(c.InKernelColumns, c.OutKernelComponentColumns, int(c.NrComponents), c.ActiveB)
}

// PushDummy implements traversal.Cache.
func (c *ActiveTrailCoreCache) PushDummy() {
	c.wA = append(c.wA, c.WA())
	c.wB = append(c.wB, c.WB())
	c.dummy = true
}

// Push implements traversal.Cache.
func (c *ActiveTrailCoreCache) Push(trits ActiveTrits) {
	c.dummy = false

	newWA, newWB := c.WA(), c.WB()
	for y := 0; y < algebra.Rows; y++ {
		if trits.IsYiActive&(1<<uint(y)) == 0 {
			continue
		}
		t := algebra.TritPosition{X: trits.X, Y: y, Z: trits.Z}
		if !c.ActiveB.IsTheTritInAnActiveTryte(t) {
			newWB += 2
		}
		c.ActiveB.ActivateTritAt(t)
		t.InvSRSL()
		if !c.ActiveA.IsTheTritInAnActiveTryte(t) {
			newWA += 2
		}
		c.ActiveA.ActivateTritAt(t)
	}
	c.wA = append(c.wA, newWA)
	c.wB = append(c.wB, newWB)

	if trits.IsYiActive == 0x3 || trits.IsYiActive == 0x5 || trits.IsYiActive == 0x6 {
		c.InKernelColumns = append(c.InKernelColumns, stateiter.NewColumns(trits.X, trits.Z, false, 0, -1))
	}
}

// Pop implements traversal.Cache.
func (c *ActiveTrailCoreCache) Pop(trits ActiveTrits) {
	c.wA = c.wA[:len(c.wA)-1]
	c.wB = c.wB[:len(c.wB)-1]
	if c.dummy {
		c.dummy = false
		return
	}

	for y := 0; y < algebra.Rows; y++ {
		if trits.IsYiActive&(1<<uint(y)) == 0 {
			continue
		}
		t := algebra.TritPosition{X: trits.X, Y: y, Z: trits.Z}
		c.ActiveB.DeactivateTritAt(t)
		t.InvSRSL()
		c.ActiveA.DeactivateTritAt(t)
	}
	if trits.IsYiActive == 0x3 || trits.IsYiActive == 0x5 || trits.IsYiActive == 0x6 {
		c.InKernelColumns = c.InKernelColumns[:len(c.InKernelColumns)-1]
	}
}
