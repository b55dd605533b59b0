package extension_test

import (
	"testing"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/extension"
)

func oneActiveTryteState(x, y, z int, value algebra.Tryte) algebra.State {
	var s algebra.State
	s.SetTryteAt(algebra.TrytePosition{X: x, Y: y, Z: z}, value)
	return s
}

func TestForwardExtensionStaysWithinBudget(t *testing.T) {
	stateB := oneActiveTryteState(0, 0, 0, 1)
	maxWeight := algebra.NewWeight(12)
	prep := extension.NewForwardExtensionPreparation(stateB, maxWeight)
	if !prep.CouldBeExtended() {
		t.Fatal("a single active tryte should always admit a forward extension")
	}

	cache := extension.NewForwardExtensionCache(prep)
	costF := extension.NewCostFunctionForwardExtension(prep)

	it := extension.New[
		extension.TritInfo, *extension.ForwardExtensionCache,
		extension.CostFunctionForwardExtension, *extension.ForwardExtension,
	](prep.PartsList, cache, costF, maxWeight,
		extension.NewForwardExtensionFactory(stateB, prep.PosForSTCompatibility),
		prep.CouldBeExtended(), false)

	visited := 0
	for !it.IsEnd() && visited < 200 {
		v := it.Value()
		if !v.Valid {
			t.Fatal("every produced extension must be ST-compatible")
		}
		if !v.WBC.Add(v.WMinDirD).LessOrEqual(maxWeight) {
			t.Fatalf("extension exceeded the weight budget: wBC=%v wMinDirD=%v", v.WBC, v.WMinDirD)
		}
		visited++
		it.Next()
	}
	if visited == 0 {
		t.Fatal("expected at least one forward extension")
	}
}

func TestBackwardExtensionStaysWithinBudget(t *testing.T) {
	stateC := oneActiveTryteState(0, 0, 0, 1)
	maxWeight := algebra.NewWeight(12)
	prep := extension.NewBackwardExtensionPreparation(stateC, maxWeight)
	if !prep.CouldBeExtended() {
		t.Fatal("a single active tryte should always admit a backward extension")
	}

	cache := extension.NewBackwardExtensionCache(prep)
	costF := extension.NewCostFunctionBackwardExtension(prep)

	it := extension.New[
		extension.TryteInfo, *extension.BackwardExtensionCache,
		extension.CostFunctionBackwardExtension, *extension.BackwardExtension,
	](prep.PartsList, cache, costF, maxWeight,
		extension.NewBackwardExtensionFactory(), prep.CouldBeExtended(), false)

	visited := 0
	for !it.IsEnd() && visited < 200 {
		v := it.Value()
		if !v.WBC.Add(v.WMinRevA).LessOrEqual(maxWeight) {
			t.Fatalf("extension exceeded the weight budget: wBC=%v wMinRevA=%v", v.WBC, v.WMinRevA)
		}
		visited++
		it.Next()
	}
	if visited == 0 {
		t.Fatal("expected at least one backward extension")
	}
}

func TestForwardInKernelExtensionRespectsBudget(t *testing.T) {
	var activeB algebra.ActiveState
	activeB.ActivateTrit(0, 0, 0)
	activeB.ActivateTrit(1, 0, 0)
	activeB.ActivateTrit(2, 0, 0)

	maxWeight := algebra.NewWeight(40)
	prep := extension.NewForwardInKernelExtensionPreparation(maxWeight, activeB)
	if !prep.CouldBeExtended() {
		t.Skip("this activity pattern admits no in-kernel forward extension under the chosen budget")
	}

	stateB := oneActiveTryteState(0, 0, 0, 1)
	it := extension.NewForwardInKernelExtensionIterator(prep, stateB)

	visited := 0
	for !it.IsEnd() && visited < 200 {
		v := it.Value()
		if !v.StateD.IsInKernel() {
			t.Fatal("every produced state D must be in the kernel")
		}
		if !v.WBC.Add(v.WMinDirD).LessOrEqual(maxWeight) {
			t.Fatalf("extension exceeded the weight budget: wBC=%v wMinDirD=%v", v.WBC, v.WMinDirD)
		}
		visited++
		it.Next()
	}
}

func TestBackwardInKernelExtensionRespectsBudget(t *testing.T) {
	var activeC algebra.ActiveState
	activeC.ActivateTrit(0, 0, 0)
	activeC.ActivateTrit(0, 1, 0)
	activeC.ActivateTrit(0, 2, 0)

	maxWeight := algebra.NewWeight(40)
	prep := extension.NewBackwardInKernelExtensionPreparation(maxWeight, activeC)
	if !prep.CouldBeExtended() {
		t.Skip("this activity pattern admits no in-kernel backward extension under the chosen budget")
	}

	stateC := oneActiveTryteState(0, 0, 0, 1)
	cache := extension.NewBackwardInKernelExtensionCache(prep, stateC)
	if !prep.CouldBeExtended() {
		t.Skip("preparing against the concrete state ruled out every in-kernel backward extension")
	}
	costF := extension.NewCostFunctionBackwardInKernelExtension(prep)

	it := extension.New[
		extension.InKernelTryteColumns, *extension.BackwardInKernelExtensionCache,
		extension.CostFunctionBackwardInKernelExtension, *extension.BackwardInKernelExtension,
	](prep.PartsList, cache, costF, maxWeight,
		extension.NewBackwardInKernelExtensionFactory(), prep.CouldBeExtended(), true)

	visited := 0
	for !it.IsEnd() && visited < 200 {
		v := it.Value()
		if !v.StateB.IsInKernel() {
			t.Fatal("every produced state B must be in the kernel")
		}
		if !v.WBC.Add(v.WMinRevA).LessOrEqual(maxWeight) {
			t.Fatalf("extension exceeded the weight budget: wBC=%v wMinRevA=%v", v.WBC, v.WMinRevA)
		}
		visited++
		it.Next()
	}
}
