// Package orchestrate composes the bare-state, mixed-state, and
// extension searches into the four 3-round trail-core generators of
// spec.md §8: KN, NK, NN and KK, named after the kernel membership (K)
// or non-membership (N) of the first and last rounds' differences.
// Each generator enumerates every 3-round trail core of a given parity
// profile up to a caller-chosen weight bound, either directly or by
// one-round extension of a 2-round trail core.
package orchestrate

import (
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/barestate"
	"github.com/troikacore/trailcore/internal/mixedstate"
	"github.com/troikacore/trailcore/internal/trail"
	"github.com/troikacore/trailcore/internal/traversal"
)

// evenFloor rounds v down to the nearest even number. Every weight
// bound fed into the nested bare-state/mixed-state search must be even,
// since the cost function alpha*wA + beta*wB only ever takes even
// values when alpha and beta do.
func evenFloor(v uint32) uint32 {
	if v%2 != 0 {
		return v - 1
	}
	return v
}

// inKernelTwoRoundSearch enumerates every 2-round trail core (A, B)
// with B in the kernel, up to maxCost = alpha*wMinRev(A) + beta*wMinDir(B).
func inKernelTwoRoundSearch(alpha, beta, maxCost uint32) []trail.TrailCore {
	unitSet := mixedstate.NewInKernelActiveTritsSet()
	cache := mixedstate.NewActiveTrailCoreCache()
	costF := mixedstate.NewTwoRoundTrailCoreCostFunction[*mixedstate.ActiveTrailCoreCache](alpha, beta)

	it := traversal.New[
		mixedstate.ActiveTrits, *mixedstate.ActiveTrailCoreCache,
		mixedstate.TwoRoundTrailCoreCostFunction[*mixedstate.ActiveTrailCoreCache],
		mixedstate.ActiveTritsSet[*mixedstate.ActiveTrailCoreCache],
		*mixedstate.TwoRoundTrailCore[*mixedstate.ActiveTrailCoreCache],
	](unitSet, cache, costF, maxCost,
		func() *mixedstate.TwoRoundTrailCore[*mixedstate.ActiveTrailCoreCache] {
			return &mixedstate.TwoRoundTrailCore[*mixedstate.ActiveTrailCoreCache]{}
		}, true)

	var trails []trail.TrailCore
	for !it.IsEnd() {
		trails = append(trails, it.Value().Trails()...)
		it.Next()
	}
	return trails
}

// forEachOutKernelTwoRoundCore enumerates every 2-round trail core
// (A, B) up to maxCost = alpha*wMinRev(A) + beta*wMinDir(B), without
// constraining B to the kernel: it runs the bare-state search to fix
// the parity-zero columns of A and B, then completes each bare state
// with the out-of-kernel mixed-state search, and calls visit once per
// concrete trail core found.
func forEachOutKernelTwoRoundCore(alpha, beta, maxCost uint32, visit func(trail.TrailCore)) {
	bareUnitSet := barestate.ColumnsSet{}
	bareCache := barestate.NewCache()
	bareCostF := barestate.NewTwoRoundTrailCoreCostBoundFunction(alpha, beta)

	bareIt := traversal.New[
		barestate.Column, *barestate.Cache,
		barestate.TwoRoundTrailCoreCostBoundFunction,
		barestate.ColumnsSet, *barestate.BareState,
	](bareUnitSet, bareCache, bareCostF, maxCost,
		func() *barestate.BareState { return &barestate.BareState{} }, true)

	for !bareIt.IsEnd() {
		bareState := bareIt.Value()
		if bareState.Valid {
			mixedUnitSet := mixedstate.NewOutKernelActiveTritsSet(bareState.FirstActiveTritsAllowed)
			mixedCache := mixedstate.NewMixedTrailCoreCache(bareState)
			mixedCostF := mixedstate.NewTwoRoundTrailCoreCostFunction[*mixedstate.MixedTrailCoreCache](alpha, beta)

			mixedIt := traversal.New[
				mixedstate.ActiveTrits, *mixedstate.MixedTrailCoreCache,
				mixedstate.TwoRoundTrailCoreCostFunction[*mixedstate.MixedTrailCoreCache],
				mixedstate.ActiveTritsSet[*mixedstate.MixedTrailCoreCache],
				*mixedstate.TwoRoundTrailCore[*mixedstate.MixedTrailCoreCache],
			](mixedUnitSet, mixedCache, mixedCostF, maxCost,
				func() *mixedstate.TwoRoundTrailCore[*mixedstate.MixedTrailCoreCache] {
					return &mixedstate.TwoRoundTrailCore[*mixedstate.MixedTrailCoreCache]{}
				}, true)

			for !mixedIt.IsEnd() {
				for _, t := range mixedIt.Value().Trails() {
					visit(t)
				}
				mixedIt.Next()
			}
		}
		bareIt.Next()
	}
}

// progress logs every n-th visit of a generator's main loop, mirroring
// the reference implementation's periodic console progress reports.
func progress(stage string, count, n uint64) {
	if count != 0 && count%n == 0 {
		log.Debug().Str("stage", stage).Uint64("count", count).Msg("trail-core generator progress")
	}
}
