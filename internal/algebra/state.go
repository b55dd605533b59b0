package algebra

// State holds the 27 lanes of a Troika state, indexed lanes[9*y+x] for
// 0<=x<Columns, 0<=y<Rows.
type State struct {
	Lanes [Columns * Rows]Lane
}

func laneIndex(x, y int) int { return Columns*y + x }

// SRSL applies ShiftRows then ShiftLanes to the whole state.
func (s *State) SRSL() {
	var temp [Columns * Rows]Lane
	for i := Columns; i < Columns*Rows; i++ {
		temp[i] = s.Lanes[i]
	}
	for i := Columns; i < Columns*Rows; i++ {
		s.Lanes[srslRowShift[i]] = temp[i]
	}
	for i := range s.Lanes {
		s.Lanes[i].ShiftBy(shiftLanesParam[i])
	}
}

// InvSRSL undoes SRSL.
func (s *State) InvSRSL() {
	for i := range s.Lanes {
		s.Lanes[i].ShiftBy(Slices - shiftLanesParam[i])
	}
	var temp [Columns * Rows]Lane
	for i := Columns; i < Columns*Rows; i++ {
		temp[i] = s.Lanes[i]
	}
	for i := Columns; i < Columns*Rows; i++ {
		s.Lanes[invSRSLRowShift[i]] = temp[i]
	}
}

// columnParity computes, for each x, the ternary sum across y of the
// column's three lanes.
func (s *State) columnParity() [Columns]Lane {
	var parity [Columns]Lane
	for x := 0; x < Columns; x++ {
		var sum Lane
		for y := 0; y < Rows; y++ {
			sum = AddLane(sum, s.Lanes[laneIndex(x, y)])
		}
		parity[x] = sum
	}
	return parity
}

// AddColumnParity computes the per-column parity and adds an affine
// combination of the parity at x-1 and the parity at x+1 (shifted by
// z-1) to every trit of the column, per spec.md §4.1.
func (s *State) AddColumnParity() {
	parity := s.columnParity()
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			l1 := parity[mod(x-1, Columns)]
			l2 := parity[mod(x+1, Columns)]
			l2.ShiftBy(Slices - 1)
			idx := laneIndex(x, y)
			s.Lanes[idx] = AddLane(AddLane(s.Lanes[idx], l1), l2)
		}
	}
}

// InvAddColumnParity undoes AddColumnParity.
func (s *State) InvAddColumnParity() {
	parity := s.columnParity()
	for y := 0; y < Rows; y++ {
		for x := 0; x < Columns; x++ {
			l1 := parity[mod(x-1, Columns)]
			l2 := parity[mod(x+1, Columns)]
			l2.ShiftBy(Slices - 1)
			idx := laneIndex(x, y)
			s.Lanes[idx] = SubLane(SubLane(s.Lanes[idx], l1), l2)
		}
	}
}

// Lambda applies the Troika linear layer: ShiftRows, ShiftLanes, then
// AddColumnParity.
func (s *State) Lambda() {
	s.SRSL()
	s.AddColumnParity()
}

// InvLambda undoes Lambda.
func (s *State) InvLambda() {
	s.InvAddColumnParity()
	s.InvSRSL()
}

// SetInvSRSL sets s to the image of state under InvSRSL.
func (s *State) SetInvSRSL(state State) {
	*s = state
	s.InvSRSL()
}

// SetInvLambda sets s to the image of state under InvLambda.
func (s *State) SetInvLambda(state State) {
	*s = state
	s.InvLambda()
}

// IsInKernel reports whether every column parity of s vanishes.
func (s *State) IsInKernel() bool {
	for x := 0; x < Columns; x++ {
		var sum Lane
		for y := 0; y < Rows; y++ {
			sum = AddLane(sum, s.Lanes[laneIndex(x, y)])
		}
		if sum.Lane1 != 0 || sum.Lane2 != 0 {
			return false
		}
	}
	return true
}

// GetTrit returns the value (0, 1 or 2) of the trit at (x, y, z).
func (s *State) GetTrit(x, y, z int) int {
	bit := uint32(1) << uint(z)
	l := s.Lanes[laneIndex(x, y)]
	if l.Lane1&bit != 0 {
		return 1
	}
	if l.Lane2&bit != 0 {
		return 2
	}
	return 0
}

// GetTritAt is the TritPosition-keyed form of GetTrit.
func (s *State) GetTritAt(t TritPosition) int { return s.GetTrit(t.X, t.Y, t.Z) }

// IsTritActive reports whether the trit at (x, y, z) is nonzero.
func (s *State) IsTritActive(x, y, z int) bool {
	bit := uint32(1) << uint(z)
	l := s.Lanes[laneIndex(x, y)]
	return (l.Lane1&bit)|(l.Lane2&bit) != 0
}

// IsTritActiveAt is the TritPosition-keyed form of IsTritActive.
func (s *State) IsTritActiveAt(t TritPosition) bool { return s.IsTritActive(t.X, t.Y, t.Z) }

// SetTritValue sets the trit at (x, y, z) to value (0, 1 or 2).
func (s *State) SetTritValue(value, x, y, z int) {
	l := &s.Lanes[laneIndex(x, y)]
	switch value {
	case 0:
		l.Set0(z)
	case 1:
		l.Set1(z)
	case 2:
		l.Set2(z)
	}
}

// SetTritValueAt is the TritPosition-keyed form of SetTritValue.
func (s *State) SetTritValueAt(value int, t TritPosition) { s.SetTritValue(value, t.X, t.Y, t.Z) }

// AddTritValue adds value (mod 3) to the trit at t.
func (s *State) AddTritValue(value int, t TritPosition) {
	value = mod(value, 3)
	if value == 0 {
		return
	}
	l := &s.Lanes[laneIndex(t.X, t.Y)]
	if value == 1 {
		l.Add1(t.Z)
	} else {
		l.Add2(t.Z)
	}
}

// IsTheTritInAnActiveTryte reports whether the tryte containing t has any
// nonzero trit.
func (s *State) IsTheTritInAnActiveTryte(t TritPosition) bool {
	x0 := 3 * (t.X / 3)
	for offset := 0; offset < 3; offset++ {
		if s.GetTrit(x0+offset, t.Y, t.Z) != 0 {
			return true
		}
	}
	return false
}

// IsTryteActive reports whether the tryte at pos has a nonzero trit.
func (s *State) IsTryteActive(pos TrytePosition) bool {
	bit := uint32(1) << uint(pos.Z)
	for offset := 0; offset < 3; offset++ {
		l := s.Lanes[laneIndex(3*pos.X+offset, pos.Y)]
		if (l.Lane1&bit)|(l.Lane2&bit) != 0 {
			return true
		}
	}
	return false
}

// IsSliceActive reports whether slice z has any nonzero trit.
func (s *State) IsSliceActive(z int) bool {
	bit := uint32(1) << uint(z)
	for i := range s.Lanes {
		if (s.Lanes[i].Lane1&bit)|(s.Lanes[i].Lane2&bit) != 0 {
			return true
		}
	}
	return false
}

// GetNrActiveTrytes returns the total number of nonzero trytes in s.
func (s *State) GetNrActiveTrytes() int {
	n := 0
	for z := 0; z < Slices; z++ {
		for xTryte := 0; xTryte < 3; xTryte++ {
			for y := 0; y < Rows; y++ {
				if s.IsTryteActive(TrytePosition{X: xTryte, Y: y, Z: z}) {
					n++
				}
			}
		}
	}
	return n
}

// GetNrActiveTrytesOfSlice returns the number of nonzero trytes within
// slice z.
func (s *State) GetNrActiveTrytesOfSlice(z int) int {
	n := 0
	for xTryte := 0; xTryte < 3; xTryte++ {
		for y := 0; y < Rows; y++ {
			if s.IsTryteActive(TrytePosition{X: xTryte, Y: y, Z: z}) {
				n++
			}
		}
	}
	return n
}

// Weight returns the minimum reverse/direct weight of s: twice its active
// tryte count (spec.md §3 invariant 3).
func (s *State) Weight() Weight { return NewWeight(uint32(2 * s.GetNrActiveTrytes())) }

// GetColumn returns the 3 trit values of the column at (x, z), indexed by
// y.
func (s *State) GetColumn(x, z int) [Rows]int {
	var col [Rows]int
	for y := 0; y < Rows; y++ {
		col[y] = s.GetTrit(x, y, z)
	}
	return col
}

// GetTryte returns the tryte value at (xTryte, y, z).
func (s *State) GetTryte(xTryte, y, z int) Tryte {
	v := 0
	pow := 9
	for tritIndex := 0; tritIndex < 3; tritIndex++ {
		v += pow * s.GetTrit(3*xTryte+tritIndex, y, z)
		pow /= 3
	}
	return Tryte(v)
}

// GetTryteAt is the TrytePosition-keyed form of GetTryte.
func (s *State) GetTryteAt(pos TrytePosition) Tryte { return s.GetTryte(pos.X, pos.Y, pos.Z) }

// SetTryte writes a tryte value at (xTryte, y, z).
func (s *State) SetTryte(xTryte, y, z int, tryte Tryte) {
	s.SetTritValue(tryte.Trit(0), 3*xTryte, y, z)
	s.SetTritValue(tryte.Trit(1), 3*xTryte+1, y, z)
	s.SetTritValue(tryte.Trit(2), 3*xTryte+2, y, z)
}

// SetTryteAt is the TrytePosition-keyed form of SetTryte.
func (s *State) SetTryteAt(pos TrytePosition, tryte Tryte) {
	s.SetTryte(pos.X, pos.Y, pos.Z, tryte)
}

// Translate rotates every lane of s by dz positions along z.
func (s *State) Translate(dz int) {
	for i := range s.Lanes {
		s.Lanes[i].ShiftBy(dz)
	}
}

// Translated returns a copy of s translated by dz, leaving s unmodified.
func (s State) Translated(dz int) State {
	s.Translate(dz)
	return s
}

// Equal reports exact equality between two states.
func (s State) Equal(other State) bool {
	for i := range s.Lanes {
		if s.Lanes[i] != other.Lanes[i] {
			return false
		}
	}
	return true
}

// Less implements the lexicographic order on
// [lanes[0].Lane1, lanes[0].Lane2, ..., lanes[26].Lane1, lanes[26].Lane2].
func (s State) Less(other State) bool {
	for i := range s.Lanes {
		if s.Lanes[i].Lane1 != other.Lanes[i].Lane1 {
			return s.Lanes[i].Lane1 < other.Lanes[i].Lane1
		}
		if s.Lanes[i].Lane2 != other.Lanes[i].Lane2 {
			return s.Lanes[i].Lane2 < other.Lanes[i].Lane2
		}
	}
	return false
}
