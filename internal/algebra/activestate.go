package algebra

// ActiveState tracks, per slice, which trits are active (nonzero) without
// carrying their actual ternary value. It backs the bare-state and
// mixed-state enumerators, which reason about activity patterns before a
// concrete difference is chosen (spec.md §4.4, §4.5).
type ActiveState struct {
	Lanes [Columns * Rows]uint32
}

// ActivateTrit marks the trit at (x, y, z) active.
func (a *ActiveState) ActivateTrit(x, y, z int) {
	a.Lanes[laneIndex(x, y)] |= uint32(1) << uint(z)
}

// ActivateTritAt is the TritPosition-keyed form of ActivateTrit.
func (a *ActiveState) ActivateTritAt(t TritPosition) { a.ActivateTrit(t.X, t.Y, t.Z) }

// DeactivateTrit clears the trit at (x, y, z).
func (a *ActiveState) DeactivateTrit(x, y, z int) {
	a.Lanes[laneIndex(x, y)] &^= uint32(1) << uint(z)
}

// DeactivateTritAt is the TritPosition-keyed form of DeactivateTrit.
func (a *ActiveState) DeactivateTritAt(t TritPosition) { a.DeactivateTrit(t.X, t.Y, t.Z) }

// IsTritActive reports whether the trit at (x, y, z) is marked active.
func (a *ActiveState) IsTritActive(x, y, z int) bool {
	return a.Lanes[laneIndex(x, y)]&(uint32(1)<<uint(z)) != 0
}

// IsTritActiveAt is the TritPosition-keyed form of IsTritActive.
func (a *ActiveState) IsTritActiveAt(t TritPosition) bool { return a.IsTritActive(t.X, t.Y, t.Z) }

// IsTheTritInAnActiveTryte reports whether any trit of t's containing
// tryte is active.
func (a *ActiveState) IsTheTritInAnActiveTryte(t TritPosition) bool {
	x0 := 3 * (t.X / 3)
	for offset := 0; offset < 3; offset++ {
		if a.IsTritActive(x0+offset, t.Y, t.Z) {
			return true
		}
	}
	return false
}

// IsTryteActive reports whether the tryte at pos has any active trit.
func (a *ActiveState) IsTryteActive(pos TrytePosition) bool {
	bit := uint32(1) << uint(pos.Z)
	for offset := 0; offset < 3; offset++ {
		if a.Lanes[laneIndex(3*pos.X+offset, pos.Y)]&bit != 0 {
			return true
		}
	}
	return false
}

// IsSliceActive reports whether slice z has any active trit.
func (a *ActiveState) IsSliceActive(z int) bool {
	bit := uint32(1) << uint(z)
	for i := range a.Lanes {
		if a.Lanes[i]&bit != 0 {
			return true
		}
	}
	return false
}

// IsColumnActive reports whether the column at (x, z) has any active trit.
func (a *ActiveState) IsColumnActive(x, z int) bool {
	bit := uint32(1) << uint(z)
	for y := 0; y < Rows; y++ {
		if a.Lanes[laneIndex(x, y)]&bit != 0 {
			return true
		}
	}
	return false
}

// GetIsYiActive returns a 3-bit mask, bit y set iff the trit at (x, y, z)
// is active.
func (a *ActiveState) GetIsYiActive(x, z int) uint8 {
	var mask uint8
	for y := 0; y < Rows; y++ {
		if a.IsTritActive(x, y, z) {
			mask ^= 1 << uint(y)
		}
	}
	return mask
}

// GetActiveTryte returns a 3-bit mask, bit i set iff the trit at
// (3*xTryte+i, y, z) is active.
func (a *ActiveState) GetActiveTryte(xTryte, y, z int) uint8 {
	var mask uint8
	for i := 0; i < 3; i++ {
		if a.IsTritActive(3*xTryte+i, y, z) {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// GetNrActiveTrytes returns the total number of active trytes.
func (a *ActiveState) GetNrActiveTrytes() int {
	n := 0
	for z := 0; z < Slices; z++ {
		for xTryte := 0; xTryte < 3; xTryte++ {
			for y := 0; y < Rows; y++ {
				if a.IsTryteActive(TrytePosition{X: xTryte, Y: y, Z: z}) {
					n++
				}
			}
		}
	}
	return n
}

// GetNrActiveTrytesOfSlice returns the number of active trytes within
// slice z.
func (a *ActiveState) GetNrActiveTrytesOfSlice(z int) int {
	n := 0
	for xTryte := 0; xTryte < 3; xTryte++ {
		for y := 0; y < Rows; y++ {
			if a.IsTryteActive(TrytePosition{X: xTryte, Y: y, Z: z}) {
				n++
			}
		}
	}
	return n
}

// MinWeight returns the minimum weight consistent with this activity
// pattern: 2 per active tryte (spec.md §3 invariant 3).
func (a *ActiveState) MinWeight() Weight { return NewWeight(uint32(2 * a.GetNrActiveTrytes())) }

// Translate rotates every lane of a by dz positions along z.
func (a *ActiveState) Translate(dz int) {
	dz = mod(dz, Slices)
	if dz == 0 {
		return
	}
	for i := range a.Lanes {
		a.Lanes[i] = ((a.Lanes[i] << uint(dz)) | (a.Lanes[i] >> uint(Slices-dz))) & sliceMask
	}
}

// Translated returns a copy of a translated by dz, leaving a unmodified.
func (a ActiveState) Translated(dz int) ActiveState {
	a.Translate(dz)
	return a
}

// Equal reports exact equality between two activity patterns.
func (a ActiveState) Equal(other ActiveState) bool {
	for i := range a.Lanes {
		if a.Lanes[i] != other.Lanes[i] {
			return false
		}
	}
	return true
}

// Less implements the lexicographic order on lanes[0..26], used to rank
// z-translates when selecting a canonical representative.
func (a ActiveState) Less(other ActiveState) bool {
	for i := range a.Lanes {
		if a.Lanes[i] != other.Lanes[i] {
			return a.Lanes[i] < other.Lanes[i]
		}
	}
	return false
}

// BiggestRepresentative returns the z-translate of a that is largest under
// Less, and the shift that produces it. Ties are broken by the smallest
// shift, matching the reference's canonicalization pass over all 27
// rotations (spec.md §4.6).
func (a ActiveState) BiggestRepresentative() (ActiveState, int) {
	best := a
	bestShift := 0
	for dz := 1; dz < Slices; dz++ {
		candidate := a.Translated(dz)
		if best.Less(candidate) {
			best = candidate
			bestShift = dz
		}
	}
	return best, bestShift
}

// FromState derives an ActiveState recording which trits of s are nonzero.
func FromState(s State) ActiveState {
	var a ActiveState
	for i := range s.Lanes {
		a.Lanes[i] = (s.Lanes[i].Lane1 | s.Lanes[i].Lane2) & sliceMask
	}
	return a
}
