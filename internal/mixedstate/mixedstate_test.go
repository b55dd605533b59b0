package mixedstate_test

import (
	"testing"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/mixedstate"
	"github.com/troikacore/trailcore/internal/traversal"
)

func TestIncrementCoordinatesWalksColumnsThenSlices(t *testing.T) {
	a := mixedstate.ActiveTrits{X: 0, Z: 0}
	first := a

	for x := 1; x < algebra.Columns; x++ {
		if !a.IncrementCoordinates(first, false) {
			t.Fatalf("IncrementCoordinates stopped early at x=%d", x)
		}
		if a.X != x || a.Z != 0 {
			t.Fatalf("got (X=%d,Z=%d), want (X=%d,Z=0)", a.X, a.Z, x)
		}
	}
	if !a.IncrementCoordinates(first, false) {
		t.Fatal("IncrementCoordinates should roll over into the next slice")
	}
	if a.X != 0 || a.Z != 1 {
		t.Fatalf("got (X=%d,Z=%d), want (X=0,Z=1)", a.X, a.Z)
	}
}

func TestIncrementCoordinatesOptimizationResumesAtFirstUnitColumn(t *testing.T) {
	first := mixedstate.ActiveTrits{X: 3, Z: 0}
	a := mixedstate.ActiveTrits{X: algebra.Columns - 1, Z: 0}
	if !a.IncrementCoordinates(first, true) {
		t.Fatal("IncrementCoordinates should succeed rolling into the next slice")
	}
	if a.X != first.X || a.Z != 1 {
		t.Fatalf("got (X=%d,Z=%d), want (X=%d,Z=1)", a.X, a.Z, first.X)
	}
}

func TestIncrementCoordinatesStopsAtLastSlice(t *testing.T) {
	a := mixedstate.ActiveTrits{X: algebra.Columns - 1, Z: algebra.Slices - 1}
	if a.IncrementCoordinates(a, false) {
		t.Fatal("IncrementCoordinates should report exhaustion at the last column of the last slice")
	}
}

func TestActiveTrailCoreCachePushPopRestoresWeights(t *testing.T) {
	c := mixedstate.NewActiveTrailCoreCache()
	if c.WA() != 0 || c.WB() != 0 {
		t.Fatalf("initial cache should have zero weight, got WA=%d WB=%d", c.WA(), c.WB())
	}

	trits := mixedstate.ActiveTrits{X: 0, Z: 0, IsYiActive: 0x3}
	c.Push(trits)
	if c.WA() == 0 || c.WB() == 0 {
		t.Fatalf("pushing two active rows should raise both weights, got WA=%d WB=%d", c.WA(), c.WB())
	}
	if len(c.InKernelColumns) != 1 {
		t.Fatalf("isYiActive=0x3 should record an in-kernel column, got %d", len(c.InKernelColumns))
	}

	c.Pop(trits)
	if c.WA() != 0 || c.WB() != 0 {
		t.Fatalf("Pop should restore zero weight, got WA=%d WB=%d", c.WA(), c.WB())
	}
	if len(c.InKernelColumns) != 0 {
		t.Fatalf("Pop should remove the in-kernel column, got %d left", len(c.InKernelColumns))
	}
}

func TestPushDummyLeavesWeightsUnchanged(t *testing.T) {
	c := mixedstate.NewActiveTrailCoreCache()
	c.PushDummy()
	if c.WA() != 0 || c.WB() != 0 {
		t.Fatalf("PushDummy should not change weight, got WA=%d WB=%d", c.WA(), c.WB())
	}
}

func TestInKernelSearchStaysWithinBudget(t *testing.T) {
	unitSet := mixedstate.NewInKernelActiveTritsSet()
	cache := mixedstate.NewActiveTrailCoreCache()
	costF := mixedstate.NewTwoRoundTrailCoreCostFunction[*mixedstate.ActiveTrailCoreCache](1, 1)

	it := traversal.New[
		mixedstate.ActiveTrits, *mixedstate.ActiveTrailCoreCache,
		mixedstate.TwoRoundTrailCoreCostFunction[*mixedstate.ActiveTrailCoreCache],
		mixedstate.ActiveTritsSet[*mixedstate.ActiveTrailCoreCache],
		*mixedstate.TwoRoundTrailCore[*mixedstate.ActiveTrailCoreCache],
	](unitSet, cache, costF, 8,
		func() *mixedstate.TwoRoundTrailCore[*mixedstate.ActiveTrailCoreCache] {
			return &mixedstate.TwoRoundTrailCore[*mixedstate.ActiveTrailCoreCache]{}
		}, true)

	count := 0
	for !it.IsEnd() && count < 50 {
		v := it.Value()
		if v.WA+v.WB > 8 {
			t.Fatalf("node exceeded maxCost 8: WA=%d WB=%d", v.WA, v.WB)
		}
		count++
		it.Next()
	}
	if count == 0 {
		t.Fatal("expected at least one low-weight in-kernel node")
	}
}
