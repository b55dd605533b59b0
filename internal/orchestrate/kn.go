package orchestrate

import (
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/extension"
	"github.com/troikacore/trailcore/internal/metrics"
	"github.com/troikacore/trailcore/internal/trail"
)

// KNGenerator enumerates 3-round trail cores (A, B, C, D) with B in
// the kernel and D not in the kernel, up to a total weight bound T3.
// T1 separately bounds wMinRev(A) of the in-kernel 2-round trail cores
// (A, B) used as the seed for forward extension. Metrics is optional: a nil
// value disables counter reporting without any extra branching at the
// call sites, since every Counters method is a no-op on a nil receiver.
type KNGenerator struct {
	T3, T1  uint32
	Metrics *metrics.Counters
}

// NewKNGenerator builds a KN generator bounding the total weight of a
// 3-round trail core by t3, and wMinRev(A) of the in-kernel seed cores
// (used when seeding forward extensions) by t1.
func NewKNGenerator(t3, t1 uint32) *KNGenerator {
	return &KNGenerator{T3: t3, T1: t1}
}

// KTrailCores enumerates every in-kernel 2-round trail core (A, B) with
// wMinRev(A) at most T1: these are complete 3-round-parity-profile cores by
// themselves, since B in the kernel forces the middle round's
// S-box transition to be free (spec.md §8.1).
func (g *KNGenerator) KTrailCores() []trail.TrailCore {
	maxCost := evenFloor(g.T1)
	trails := inKernelTwoRoundSearch(1, 0, maxCost)
	for range trails {
		g.Metrics.FoundTrailCore("KN.KTrailCores")
	}
	log.Debug().Int("count", len(trails)).Msg("KN: in-kernel 2-round trail cores")
	return trails
}

// FromInKernelExtension enumerates every 3-round trail core (A, B, C, D)
// found by taking each out-of-kernel 2-round trail core as (C, D) and
// growing it backward: (A, B), with B in the kernel, is a
// BackwardInKernelExtension of C (spec.md §8.1, Appendix C.1 of the
// reference).
func (g *KNGenerator) FromInKernelExtension() []trail.TrailCore {
	if g.T3 < g.T1+1 {
		return nil
	}
	maxCost2Rounds := evenFloor(g.T3 - g.T1 - 1)

	var extended []trail.TrailCore
	var visited uint64
	forEachOutKernelTwoRoundCore(1, 1, maxCost2Rounds, func(node trail.TrailCore) {
		visited++
		progress("KN.FromInKernelExtension", visited, 10000)
		g.Metrics.VisitNode("KN.FromInKernelExtension")

		// This node's own (A, B) pair plays the role of (C, D) here: the
		// search fixing C's activity pattern is the same out-kernel
		// 2-round search used everywhere else, only the extension applied
		// to it differs.
		stateC := node.Differences[0]
		stateD := node.Differences[1]
		activeC := algebra.FromState(stateC)

		maxWeightExtension := g.T3 - node.WMinDir.Integer
		prep := extension.NewBackwardInKernelExtensionPreparation(algebra.NewWeight(maxWeightExtension), activeC)
		if !prep.CouldBeExtended() {
			return
		}

		cache := extension.NewBackwardInKernelExtensionCache(prep, stateC)
		if !prep.CouldBeExtended() {
			return
		}
		costF := extension.NewCostFunctionBackwardInKernelExtension(prep)

		it := extension.New[
			extension.InKernelTryteColumns, *extension.BackwardInKernelExtensionCache,
			extension.CostFunctionBackwardInKernelExtension, *extension.BackwardInKernelExtension,
		](prep.PartsList, cache, costF, algebra.NewWeight(maxWeightExtension),
			extension.NewBackwardInKernelExtensionFactory(), prep.CouldBeExtended(), true)

		for !it.IsEnd() {
			ext := it.Value()
			core := trail.NewThreeRoundTrailCore(ext.StateA, ext.StateB, stateC, stateD, ext.WMinRevA, ext.WBC, node.WMinDir)
			extended = append(extended, core)
			g.Metrics.FoundTrailCore("KN.FromInKernelExtension")
			it.Next()
		}
	})

	log.Debug().Int("count", len(extended)).Msg("KN: 3-round trail cores from in-kernel extension")
	return extended
}

// FromForwardExtension enumerates every 3-round trail core (A, B, C, D)
// found by growing each of kTrailCores forward: C ranges over every
// ST-compatible successor of B within budget, D = Lambda(C), keeping
// only the extensions whose D is not in the kernel (spec.md §8.1).
func (g *KNGenerator) FromForwardExtension(kTrailCores []trail.TrailCore) []trail.TrailCore {
	var extended []trail.TrailCore
	var visited uint64
	for _, trailToExtend := range kTrailCores {
		visited++
		progress("KN.FromForwardExtension", visited, 10000)
		g.Metrics.VisitNode("KN.FromForwardExtension")

		stateB := trailToExtend.Differences[len(trailToExtend.Differences)-1]
		maxWeightExtension := g.T3 - trailToExtend.WMinRev.Integer
		prep := extension.NewForwardExtensionPreparation(stateB, algebra.NewWeight(maxWeightExtension))
		if !prep.CouldBeExtended() {
			continue
		}
		cache := extension.NewForwardExtensionCache(prep)
		costF := extension.NewCostFunctionForwardExtension(prep)

		it := extension.New[
			extension.TritInfo, *extension.ForwardExtensionCache,
			extension.CostFunctionForwardExtension, *extension.ForwardExtension,
		](prep.PartsList, cache, costF, algebra.NewWeight(maxWeightExtension),
			extension.NewForwardExtensionFactory(stateB, prep.PosForSTCompatibility),
			prep.CouldBeExtended(), false)

		for !it.IsEnd() {
			ext := it.Value()
			if !ext.StateD.IsInKernel() {
				core := trailToExtend
				_ = core.ExtendForward(ext.StateC, ext.StateD, ext.WBC, ext.WMinDirD)
				extended = append(extended, core)
				g.Metrics.FoundTrailCore("KN.FromForwardExtension")
			}
			it.Next()
		}
	}

	log.Debug().Int("count", len(extended)).Msg("KN: 3-round trail cores from forward extension")
	return extended
}
