package orchestrate

import (
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/extension"
	"github.com/troikacore/trailcore/internal/metrics"
	"github.com/troikacore/trailcore/internal/trail"
)

// NKGenerator enumerates 3-round trail cores (A, B, C, D) with B not
// in the kernel and D in the kernel, the mirror image of KNGenerator.
type NKGenerator struct {
	T3, T1  uint32
	Metrics *metrics.Counters
}

// NewNKGenerator builds an NK generator bounding the total weight of a
// 3-round trail core by t3, and wMinDir(B) of the in-kernel seed
// 2-round trail cores by t1.
func NewNKGenerator(t3, t1 uint32) *NKGenerator {
	return &NKGenerator{T3: t3, T1: t1}
}

// KTrailCores enumerates every in-kernel 2-round trail core (A, B) with
// wMinDir(B) at most T1, the seed for FromBackwardExtension.
func (g *NKGenerator) KTrailCores() []trail.TrailCore {
	maxCost := evenFloor(g.T1)
	trails := inKernelTwoRoundSearch(0, 1, maxCost)
	for range trails {
		g.Metrics.FoundTrailCore("NK.KTrailCores")
	}
	log.Debug().Int("count", len(trails)).Msg("NK: in-kernel 2-round trail cores")
	return trails
}

// FromInKernelExtension enumerates every 3-round trail core (A, B, C, D)
// found by growing a 2-round trail core (A, B) forward with C chosen so
// that D = Lambda(C) is forced into the kernel (spec.md §8.2, Appendix
// C.3 of the reference).
func (g *NKGenerator) FromInKernelExtension() []trail.TrailCore {
	if g.T3 < g.T1+1 {
		return nil
	}
	maxCost2Rounds := evenFloor(g.T3 - g.T1 - 1)

	var extended []trail.TrailCore
	var visited uint64
	forEachOutKernelTwoRoundCore(1, 1, maxCost2Rounds, func(node trail.TrailCore) {
		visited++
		progress("NK.FromInKernelExtension", visited, 10000)
		g.Metrics.VisitNode("NK.FromInKernelExtension")

		stateB := node.Differences[1]
		activeB := algebra.FromState(stateB)

		maxWeightExtension := g.T3 - node.WMinRev.Integer
		prep := extension.NewForwardInKernelExtensionPreparation(algebra.NewWeight(maxWeightExtension), activeB)
		if !prep.CouldBeExtended() {
			return
		}

		it := extension.NewForwardInKernelExtensionIterator(prep, stateB)
		for !it.IsEnd() {
			ext := it.Value()
			core := node
			_ = core.ExtendForward(ext.StateC, ext.StateD, ext.WBC, ext.WMinDirD)
			extended = append(extended, core)
			g.Metrics.FoundTrailCore("NK.FromInKernelExtension")
			it.Next()
		}
	})

	log.Debug().Int("count", len(extended)).Msg("NK: 3-round trail cores from in-kernel extension")
	return extended
}

// FromBackwardExtension enumerates every 3-round trail core (A, B, C, D)
// found by growing each of kTrailCores backward, keeping only the
// extensions whose new B0 is not in the kernel (spec.md §8.2).
func (g *NKGenerator) FromBackwardExtension(kTrailCores []trail.TrailCore) []trail.TrailCore {
	var extended []trail.TrailCore
	var visited uint64
	for _, trailToExtend := range kTrailCores {
		visited++
		progress("NK.FromBackwardExtension", visited, 10000)
		g.Metrics.VisitNode("NK.FromBackwardExtension")

		stateC := trailToExtend.Differences[0]
		maxWeightExtension := g.T3 - trailToExtend.WMinDir.Integer
		prep := extension.NewBackwardExtensionPreparation(stateC, algebra.NewWeight(maxWeightExtension))
		if !prep.CouldBeExtended() {
			continue
		}
		cache := extension.NewBackwardExtensionCache(prep)
		costF := extension.NewCostFunctionBackwardExtension(prep)

		it := extension.New[
			extension.TryteInfo, *extension.BackwardExtensionCache,
			extension.CostFunctionBackwardExtension, *extension.BackwardExtension,
		](prep.PartsList, cache, costF, algebra.NewWeight(maxWeightExtension),
			extension.NewBackwardExtensionFactory(), prep.CouldBeExtended(), false)

		for !it.IsEnd() {
			ext := it.Value()
			if !ext.StateB.IsInKernel() {
				core := trailToExtend
				_ = core.ExtendBackward(ext.StateA, ext.StateB, ext.WBC, ext.WMinRevA)
				extended = append(extended, core)
				g.Metrics.FoundTrailCore("NK.FromBackwardExtension")
			}
			it.Next()
		}
	}

	log.Debug().Int("count", len(extended)).Msg("NK: 3-round trail cores from backward extension")
	return extended
}
