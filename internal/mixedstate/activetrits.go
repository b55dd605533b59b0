// Package mixedstate completes a parity-bare 2-round trail core (from
// internal/barestate) or a bare in-kernel skeleton into the active-trit
// pattern of a full 2-round trail core, by choosing which further trits
// of the mixed state (the state at theta's input) are active
// (spec.md §5.1 in-kernel mode, §5.2 out-of-kernel completion mode).
package mixedstate

import (
	"fmt"

	"github.com/troikacore/trailcore/internal/algebra"
)

// ActiveTrits is the unit of the mixed-state search tree: the column
// position plus a bitmask of which of its 3 rows are activated in the
// mixed state.
type ActiveTrits struct {
	X, Z      int
	IsYiActive uint8
}

// XPlus9Z returns the linear index x + Columns*z into a
// firstActiveTritsAllowed-style dense column array.
func (a ActiveTrits) XPlus9Z() int { return a.X + algebra.Columns*a.Z }

// IncrementCoordinates advances (x, z) in [z, x] lexicographic order.
// When optimization is set (K-mode canonicality), a new slice resumes
// at firstUnit's column instead of column 0, matching the search
// space a z-periodic in-kernel pattern can skip.
func (a *ActiveTrits) IncrementCoordinates(firstUnit ActiveTrits, optimization bool) bool {
	switch {
	case a.X < algebra.Columns-1:
		a.X++
	case a.Z < algebra.Slices-1:
		a.Z++
		if optimization {
			a.X = firstUnit.X
		} else {
			a.X = 0
		}
	default:
		return false
	}
	return true
}

func (a ActiveTrits) String() string {
	return fmt.Sprintf("(%d,-,%2d) isYiActive=%#x", a.X, a.Z, a.IsYiActive)
}
