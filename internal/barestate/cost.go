package barestate

import "github.com/troikacore/trailcore/internal/algebra"

// TwoRoundTrailCoreCostBoundFunction lower-bounds the cost
// alpha*wA + beta*wB of every descendant of a unit list, by splitting
// the possibly-unstable trits of rho(A) into those that have become
// stable and those that remain possibly-unstable and summing the
// cheapest activity pattern compatible with each (spec.md §4.4, "lower
// bounding the cost").
type TwoRoundTrailCoreCostBoundFunction struct {
	Alpha, Beta uint32
}

// NewTwoRoundTrailCoreCostBoundFunction builds a cost function weighing
// A's reverse weight by alpha and B's direct weight by beta.
func NewTwoRoundTrailCoreCostBoundFunction(alpha, beta uint32) TwoRoundTrailCoreCostBoundFunction {
	return TwoRoundTrailCoreCostBoundFunction{Alpha: alpha, Beta: beta}
}

// Cost implements traversal.CostFunction[Column, *Cache].
func (f TwoRoundTrailCoreCostBoundFunction) Cost(unitList []Column, cache *Cache) uint32 {
	var contributionNewStable int32
	var contributionUnstable uint32
	possibleActiveTritsA := cache.StableTritsA
	possibleActiveTritsB := cache.StableTritsB
	var unstable []tritAtAAndB

	for _, trit := range cache.possibleUnstableTrits {
		if !f.isTritStillUnstable(trit, cache, unitList) {
			contributionNewStable -= 2 * int32(f.Alpha) * b2i32(possibleActiveTritsA.IsTheTritInAnActiveTryte(trit.PA))
			if cache.StateA.IsTritActiveAt(trit.PA) {
				possibleActiveTritsA.ActivateTritAt(trit.PA)
			}
			contributionNewStable += 2 * int32(f.Alpha) * b2i32(possibleActiveTritsA.IsTheTritInAnActiveTryte(trit.PA))

			contributionNewStable -= 2 * int32(f.Beta) * b2i32(possibleActiveTritsB.IsTheTritInAnActiveTryte(trit.PB))
			if cache.StateB.IsTritActiveAt(trit.PB) {
				possibleActiveTritsB.ActivateTritAt(trit.PB)
			}
			contributionNewStable += 2 * int32(f.Beta) * b2i32(possibleActiveTritsB.IsTheTritInAnActiveTryte(trit.PB))
		} else {
			unstable = append(unstable, trit)
		}
	}

	for _, trit := range unstable {
		contributionUnstable += f.getContributionUnstableTrit(trit, &possibleActiveTritsA, &possibleActiveTritsB)
	}

	return uint32(contributionNewStable+int32(contributionUnstable)) +
		2*f.Alpha*uint32(cache.NrStableTrytesA) + 2*f.Beta*uint32(cache.NrStableTrytesB)
}

func (f TwoRoundTrailCoreCostBoundFunction) isTritStillUnstable(trit tritAtAAndB, cache *Cache, unitList []Column) bool {
	if cache.ParityPlane.IsTritActive(trit.PB.X, trit.PB.Z) && cache.ThetaEffect.IsTritActive(trit.PB.X, trit.PB.Z) {
		return false
	}
	if trit.VA != trit.VB {
		if trit.DSupraUnit < unitList[len(unitList)-1].DSupraUnit-1 {
			return false
		}
	}
	return true
}

func (f TwoRoundTrailCoreCostBoundFunction) getContributionUnstableTrit(
	trit tritAtAAndB, possibleActiveTritsA, possibleActiveTritsB *algebra.ActiveState,
) uint32 {
	var cA, cB uint32
	if !possibleActiveTritsA.IsTheTritInAnActiveTryte(trit.PA) {
		cA = 2 * f.Alpha
	}
	if !possibleActiveTritsB.IsTheTritInAnActiveTryte(trit.PB) {
		cB = 2 * f.Beta
	}
	contribution1 := min32(cA, cB)

	if trit.VA != trit.VB {
		if contribution1 > 0 {
			possibleActiveTritsA.ActivateTritAt(trit.PA)
			possibleActiveTritsB.ActivateTritAt(trit.PB)
			return contribution1
		}
		return 0
	}

	if cA == 0 && cB == 0 {
		return 0
	}

	contribution2 := 2 * f.Alpha
	contribution3 := 2 * f.Beta
	for y := 0; y < algebra.Rows; y++ {
		pos := tritPositionAtAAndBFromXYZ(trit.PB.X, y, trit.PB.Z)
		if possibleActiveTritsA.IsTheTritInAnActiveTryte(pos.PA) {
			contribution2 = 0
		}
		if possibleActiveTritsB.IsTheTritInAnActiveTryte(pos.PB) {
			contribution3 = 0
		}
	}

	if contribution2 > contribution3 {
		for y := 0; y < algebra.Rows; y++ {
			pos := tritPositionAtAAndBFromXYZ(trit.PB.X, y, trit.PB.Z)
			possibleActiveTritsA.ActivateTritAt(pos.PA)
		}
		return contribution2
	}
	if contribution3 > contribution2 {
		for y := 0; y < algebra.Rows; y++ {
			pos := tritPositionAtAAndBFromXYZ(trit.PB.X, y, trit.PB.Z)
			possibleActiveTritsB.ActivateTritAt(pos.PB)
		}
		return contribution3
	}
	if contribution1 != 0 {
		possibleActiveTritsA.ActivateTritAt(trit.PA)
		possibleActiveTritsB.ActivateTritAt(trit.PB)
		return contribution1
	}
	if contribution2 > 0 {
		for y := 0; y < algebra.Rows; y++ {
			pos := tritPositionAtAAndBFromXYZ(trit.PB.X, y, trit.PB.Z)
			possibleActiveTritsA.ActivateTritAt(pos.PA)
		}
		return contribution2
	}
	if contribution3 > 0 {
		for y := 0; y < algebra.Rows; y++ {
			pos := tritPositionAtAAndBFromXYZ(trit.PB.X, y, trit.PB.Z)
			possibleActiveTritsB.ActivateTritAt(pos.PB)
		}
		return contribution3
	}
	return 0
}

func b2i32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
