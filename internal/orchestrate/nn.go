package orchestrate

import (
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/extension"
	"github.com/troikacore/trailcore/internal/metrics"
	"github.com/troikacore/trailcore/internal/trail"
)

// NNGenerator enumerates 3-round trail cores (A, B, C, D) with neither
// B nor D in the kernel, up to a total weight bound T3. Unlike
// KNGenerator and NKGenerator, its seed search draws on the full
// out-kernel 2-round space rather than a pure in-kernel one, since
// nothing here is allowed to fall in the kernel.
type NNGenerator struct {
	T3      uint32
	Metrics *metrics.Counters
}

// NewNNGenerator builds an NN generator bounding the total weight of a
// 3-round trail core by t3.
func NewNNGenerator(t3 uint32) *NNGenerator {
	return &NNGenerator{T3: t3}
}

// FromForwardExtension enumerates every 3-round trail core (A, B, C, D)
// by growing each out-kernel 2-round trail core (A, B) forward, keeping
// only the extensions whose D is not in the kernel. countPerCost tallies
// every 2-round core visited (not just the ones that extend) by
// cost = 2*wMinRev(A) + wMinDir(B), matching the weighting used to
// bound this search (spec.md §8.3).
func (g *NNGenerator) FromForwardExtension() (extended []trail.TrailCore, countPerCost map[uint32]uint64, total uint64) {
	maxCost := evenFloor(g.T3)
	countPerCost = make(map[uint32]uint64)

	var visited uint64
	forEachOutKernelTwoRoundCore(2, 1, maxCost, func(node trail.TrailCore) {
		visited++
		progress("NN.FromForwardExtension", visited, 1000000)
		g.Metrics.VisitNode("NN.FromForwardExtension")

		cost := 2*node.WMinRev.Integer + node.WMinDir.Integer
		countPerCost[cost]++
		total++

		stateB := node.Differences[1]
		maxWeightExtension := g.T3 - node.WMinRev.Integer
		prep := extension.NewForwardExtensionPreparation(stateB, algebra.NewWeight(maxWeightExtension))
		if !prep.CouldBeExtended() {
			return
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
				core := node
				_ = core.ExtendForward(ext.StateC, ext.StateD, ext.WBC, ext.WMinDirD)
				extended = append(extended, core)
				g.Metrics.FoundTrailCore("NN.FromForwardExtension")
			}
			it.Next()
		}
	})

	log.Debug().Int("count", len(extended)).Uint64("visited2Round", total).Msg("NN: 3-round trail cores from forward extension")
	return extended, countPerCost, total
}

// FromBackwardExtension enumerates every 3-round trail core (A, B, C, D)
// by growing each out-kernel 2-round trail core (A, B) backward,
// keeping only the extensions whose new B0 is not in the kernel.
// countPerCost tallies every 2-round core visited by
// cost = wMinRev(A) + 2*wMinDir(B) (spec.md §8.3).
func (g *NNGenerator) FromBackwardExtension() (extended []trail.TrailCore, countPerCost map[uint32]uint64, total uint64) {
	countPerCost = make(map[uint32]uint64)
	if g.T3 < 1 {
		return nil, countPerCost, 0
	}
	maxCost := evenFloor(g.T3 - 1)

	var visited uint64
	forEachOutKernelTwoRoundCore(1, 2, maxCost, func(node trail.TrailCore) {
		visited++
		progress("NN.FromBackwardExtension", visited, 1000000)
		g.Metrics.VisitNode("NN.FromBackwardExtension")

		if err := node.Check(); err != nil {
			log.Warn().Err(err).Msg("NN.FromBackwardExtension: inconsistent 2-round trail core")
		}

		cost := node.WMinRev.Integer + 2*node.WMinDir.Integer
		countPerCost[cost]++
		total++

		stateA := node.Differences[0]
		maxWeightExtension := g.T3 - node.WMinDir.Integer
		prep := extension.NewBackwardExtensionPreparation(stateA, algebra.NewWeight(maxWeightExtension))
		if !prep.CouldBeExtended() {
			return
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
				core := node
				_ = core.ExtendBackward(ext.StateA, ext.StateB, ext.WBC, ext.WMinRevA)
				extended = append(extended, core)
				g.Metrics.FoundTrailCore("NN.FromBackwardExtension")
			}
			it.Next()
		}
	})

	log.Debug().Int("count", len(extended)).Uint64("visited2Round", total).Msg("NN: 3-round trail cores from backward extension")
	return extended, countPerCost, total
}
