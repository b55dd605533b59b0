package algebra

import "fmt"

// ColumnPosition addresses a column (the 3 trits at a fixed x,z).
type ColumnPosition struct {
	X, Z int
}

// XPlus9Z returns x + Columns*z, the linear index used to key dense
// per-column maps.
func (c ColumnPosition) XPlus9Z() int { return c.X + Columns*c.Z }

func (c ColumnPosition) String() string { return fmt.Sprintf("(%d,-,%2d)", c.X, c.Z) }

// TritPosition addresses a single trit.
type TritPosition struct {
	X, Y, Z int
}

// NewTritPosition builds a TritPosition, wrapping no coordinate (callers are
// expected to pass values already within range, matching the reference's
// unchecked constructor).
func NewTritPosition(x, y, z int) TritPosition { return TritPosition{X: x, Y: y, Z: z} }

// FromTryteIndex sets the coordinates of the tritIndex'th trit (0, 1 or 2)
// of the tryte at aTrytePosition.
func FromTryteIndex(aTrytePosition TrytePosition, tritIndex int) TritPosition {
	return TritPosition{X: 3*aTrytePosition.X + tritIndex, Y: aTrytePosition.Y, Z: aTrytePosition.Z}
}

// XPlus9Y returns x + Columns*y, the linear index into a 27-bit slice mask.
func (t TritPosition) XPlus9Y() int { return t.X + Columns*t.Y }

// SetNextXY increments (x, y) holding z fixed, first trying y then carrying
// into x. It reports false once (x, y) == (Columns-1, Rows-1).
func (t *TritPosition) SetNextXY() bool {
	if t.Y < Rows-1 {
		t.Y++
		return true
	}
	if t.X < Columns-1 {
		t.Y = 0
		t.X++
		return true
	}
	return false
}

// XTranslate rotates the x coordinate by dx columns.
func (t *TritPosition) XTranslate(dx int) { t.X = mod(t.X+dx, Columns) }

// YTranslate rotates the y coordinate by dy rows.
func (t *TritPosition) YTranslate(dy int) { t.Y = mod(t.Y+dy, Rows) }

// ZTranslate rotates the z coordinate by dz slices.
func (t *TritPosition) ZTranslate(dz int) { t.Z = mod(t.Z+dz, Slices) }

// SRSL applies ShiftRows then ShiftLanes to the trit's coordinates in
// place.
func (t *TritPosition) SRSL() {
	t.X = mod(t.X+3*shiftRowsParam[t.Y], Columns)
	t.Z = mod(t.Z+shiftLanesParam[t.XPlus9Y()], Slices)
}

// InvSRSL undoes SRSL.
func (t *TritPosition) InvSRSL() {
	t.Z = mod(t.Z-shiftLanesParam[t.XPlus9Y()], Slices)
	t.X = mod(t.X-3*shiftRowsParam[t.Y], Columns)
}

// GetSRSL returns the image of t under SRSL, leaving t unmodified.
func (t TritPosition) GetSRSL() TritPosition { t.SRSL(); return t }

// GetInvSRSL returns the antecedent of t under SRSL, leaving t unmodified.
func (t TritPosition) GetInvSRSL() TritPosition { t.InvSRSL(); return t }

// Less implements the lexicographic order [z, x, y] used throughout the
// reference for sorting trit positions.
func (t TritPosition) Less(other TritPosition) bool {
	if t.Z != other.Z {
		return t.Z < other.Z
	}
	if t.X != other.X {
		return t.X < other.X
	}
	return t.Y < other.Y
}

func (t TritPosition) String() string { return fmt.Sprintf("(%d,%d,%2d)", t.X, t.Y, t.Z) }

// TrytePosition addresses a tryte: xTryte in [0,3), y in [0,3), z in [0,27).
type TrytePosition struct {
	X, Y, Z int
}

// FromTritPosition returns the tryte containing trit t.
func FromTritPosition(t TritPosition) TrytePosition {
	return TrytePosition{X: t.X / 3, Y: t.Y, Z: t.Z}
}

// Less implements the same [z, x, y] lexicographic order as TritPosition.
func (p TrytePosition) Less(other TrytePosition) bool {
	if p.Z != other.Z {
		return p.Z < other.Z
	}
	if p.X != other.X {
		return p.X < other.X
	}
	return p.Y < other.Y
}

func (p TrytePosition) String() string { return fmt.Sprintf("(%d,%d,%2d)", p.X, p.Y, p.Z) }

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// Mod is the non-negative remainder of a modulo n, exported for the
// enumerator packages that index coordinates the same way the algebra
// package's internal arithmetic does.
func Mod(a, n int) int { return mod(a, n) }
