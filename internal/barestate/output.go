package barestate

import (
	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/stateiter"
)

// activeOrInactiveMask is the default entry of FirstActiveTritsAllowed:
// the first isYiActive value (rows 0 and 1 active) the mixed-state
// completion search tries at a column, before 0x5 and 0x6 (spec.md
// §4.4/§5.5 handoff into the mixed-state search).
const activeOrInactiveMask = 0x3

// BareState is the rendered output of a node of the bare-state search
// tree: the pair of states (A, B) once a unit list both completes a
// supra-unit and stays within the cost budget, plus what the
// mixed-state completion search needs to complete it.
type BareState struct {
	StateA, StateB             algebra.State
	WA, WB                     uint32
	OutKernelComponentsColumns []stateiter.Columns
	NrComponents               int
	FirstActiveTritsAllowed    []uint8
	Valid                      bool
}

// Set implements traversal.Output[Column, *Cache, TwoRoundTrailCoreCostBoundFunction].
func (b *BareState) Set(unitList []Column, cache *Cache, costF TwoRoundTrailCoreCostBoundFunction, maxCost uint32) {
	cost := costF.Alpha*2*uint32(cache.NrActiveTrytesA) + costF.Beta*2*uint32(cache.NrActiveTrytesB)
	if cost > maxCost || !unitList[len(unitList)-1].Ending {
		b.Valid = false
		return
	}

	b.Valid = true
	b.StateA = cache.StateA
	b.StateB = cache.StateB
	b.WA = 2 * uint32(cache.NrActiveTrytesA)
	b.WB = 2 * uint32(cache.NrActiveTrytesB)

	b.FirstActiveTritsAllowed = make([]uint8, algebra.Columns*algebra.Slices)
	for i := range b.FirstActiveTritsAllowed {
		b.FirstActiveTritsAllowed[i] = activeOrInactiveMask
	}
	b.OutKernelComponentsColumns = nil

	componentsIndexes := cache.ComponentsIndexes()
	b.NrComponents = len(componentsIndexes)

	for i, indexes := range componentsIndexes {
		for _, ind := range indexes {
			col := unitList[ind]
			if col.Entangled != NoEntanglement {
				continue
			}
			parity := uint(cache.ParityPlane.GetTrit(col.X, col.Z))
			affectedBy := cache.ThetaEffect.GetTrit(col.X, col.Z)
			troikaCol := stateiter.NewColumns(col.X, col.Z, affectedBy != 0, parity, i)

			switch {
			case affectedBy == 0:
				switch col.IndexValue {
				case 0:
					b.FirstActiveTritsAllowed[col.X+algebra.Columns*col.Z] = 0x2
				case 1:
					b.FirstActiveTritsAllowed[col.X+algebra.Columns*col.Z] = 0x4
				case 2:
					b.FirstActiveTritsAllowed[col.X+algebra.Columns*col.Z] = 0x0
				}
			default:
				b.FirstActiveTritsAllowed[col.X+algebra.Columns*col.Z] = 0x0
				troikaCol.AddValues(cache.StateB.GetColumn(col.X, col.Z))
			}
			b.OutKernelComponentsColumns = append(b.OutKernelComponentsColumns, troikaCol)
		}
	}
}
