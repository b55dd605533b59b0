package algebra

// Lane holds the 27 trits of a Troika lane as two bitmasks: lane1 marks
// z-positions with value 1, lane2 marks value 2. Both clear means 0; both
// set is invalid (spec.md §3 invariant 5) and never produced by any
// operation below.
type Lane struct {
	Lane1, Lane2 uint32
}

func value0(l Lane) uint32 { return (^l.Lane1) & (^l.Lane2) & sliceMask }
func value1(l Lane) uint32 { return l.Lane1 }
func value2(l Lane) uint32 { return l.Lane2 }

// Set0 clears the trit at z to value 0.
func (l *Lane) Set0(z int) {
	mask := ^(uint32(1) << uint(z))
	l.Lane1 &= mask
	l.Lane2 &= mask
}

// Set1 sets the trit at z to value 1.
func (l *Lane) Set1(z int) {
	bit := uint32(1) << uint(z)
	l.Lane1 |= bit
	l.Lane2 &= ^bit
}

// Set2 sets the trit at z to value 2.
func (l *Lane) Set2(z int) {
	bit := uint32(1) << uint(z)
	l.Lane1 &= ^bit
	l.Lane2 |= bit
}

// Add1 adds 1 (mod 3) to the trit at z.
func (l *Lane) Add1(z int) {
	bit := uint32(1) << uint(z)
	prevLane1 := l.Lane1
	l.Lane1 = (l.Lane1 & ^bit) | (^l.Lane1 & ^l.Lane2 & bit)
	l.Lane2 = (l.Lane2 & ^bit) | (prevLane1 & bit)
}

// Add2 adds 2 (mod 3) to the trit at z.
func (l *Lane) Add2(z int) {
	bit := uint32(1) << uint(z)
	prevLane2 := l.Lane2
	l.Lane2 = (l.Lane2 & ^bit) | (^l.Lane1 & ^l.Lane2 & bit)
	l.Lane1 = (l.Lane1 & ^bit) | (prevLane2 & bit)
}

// ShiftBy rotates the lane by z positions along the 27-trit ring.
func (l *Lane) ShiftBy(z int) {
	z = mod(z, Slices)
	if z == 0 {
		return
	}
	l.Lane1 = ((l.Lane1 << uint(z)) | (l.Lane1 >> uint(Slices-z))) & sliceMask
	l.Lane2 = ((l.Lane2 << uint(z)) | (l.Lane2 >> uint(Slices-z))) & sliceMask
}

// AddLane implements ternary addition per spec.md §3:
// (a+b)1 = a1.b0 | a0.b1 | a2.b2,  (a+b)2 = a2.b0 | a0.b2 | a1.b1.
func AddLane(a, b Lane) Lane {
	return Lane{
		Lane1: (value1(a) & value0(b)) | (value0(a) & value1(b)) | (value2(a) & value2(b)),
		Lane2: (value2(a) & value0(b)) | (value0(a) & value2(b)) | (value1(a) & value1(b)),
	}
}

// SubLane implements ternary subtraction, the inverse of AddLane w.r.t. its
// first argument: SubLane(AddLane(a,b), b) == a.
func SubLane(a, b Lane) Lane {
	return Lane{
		Lane1: (value1(a) & value0(b)) | (value2(a) & value1(b)) | (value0(a) & value2(b)),
		Lane2: (value2(a) & value0(b)) | (value1(a) & value2(b)) | (value0(a) & value1(b)),
	}
}
