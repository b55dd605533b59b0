// Package algebra implements bit-packed trit/tryte/lane/state/plane
// arithmetic for the Troika permutation: the linear layer Lambda and its
// inverse, the kernel predicate, and the fixed-point Weight order used to
// compare trail costs without floating point.
package algebra

// Dimensions of a Troika state: 9 lanes along x, 3 along y, 27 trits per
// lane along z.
const (
	Columns  = 9
	Rows     = 3
	Slices   = 27
	Diagonal = 9
)

// sliceMask keeps every lane-word inside 27 bits after a shift.
const sliceMask = (1 << Slices) - 1

// shiftRowsParam is SHIFT_ROWS_PARAM from the reference source: the row
// rotation amount (in trytes, i.e. 3*value columns) applied by ShiftRows
// before ShiftLanes.
var shiftRowsParam = [Rows]int{0, 1, 2}

// shiftLanesParam is SHIFT_LANES_PARAM, indexed by x+9*y: the per-lane z
// rotation amount applied by ShiftLanes.
var shiftLanesParam = [Columns * Rows]int{
	19, 13, 21, 10, 24, 15, 2, 9, 3, // y=0
	14, 0, 6, 5, 1, 25, 22, 23, 20, // y=1
	7, 17, 26, 12, 8, 18, 16, 11, 4, // y=2
}

// srslRowShift and invSRSLRowShift implement the row permutation
// used by SRSL/invSRSL on a whole TroikaState (operating on 9-lane groups
// rather than per-trit coordinates).
var srslRowShift = [Columns * Rows]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8,
	12, 13, 14, 15, 16, 17, 9, 10, 11,
	24, 25, 26, 18, 19, 20, 21, 22, 23,
}

var invSRSLRowShift = [Columns * Rows]int{
	0, 1, 2, 3, 4, 5, 6, 7, 8,
	15, 16, 17, 9, 10, 11, 12, 13, 14,
	21, 22, 23, 24, 25, 26, 18, 19, 20,
}
