// Package barestate enumerates the 2-round trail cores (A --Lambda--> B)
// for which rho(A) is parity-bare (spec.md §4.4): a weight-bounded
// depth-first search over column assignments, grouped into "supra-units",
// whose canonicality check accounts for the z-translation symmetry of a
// parity-bare state.
package barestate

import (
	"fmt"

	"github.com/troikacore/trailcore/internal/algebra"
)

// Entanglement classifies how a column assignment interacts with a
// column already present in the unit list at the same (x, z).
type Entanglement int

const (
	// NoEntanglement: the column's (x, z) position is not yet occupied.
	NoEntanglement Entanglement = iota
	// NoNeedToIterate: the overlap connects two supra-units that already
	// belong to the same component of the run graph.
	NoNeedToIterate
	// ToIterate: the overlap merges two previously distinct components;
	// iterateEntanglement must be invoked before this column is final.
	ToIterate
	// Iterated: iterateEntanglement has already run for this column.
	Iterated
)

// zeroParityColumn[indexValue] holds the pre-theta values of an affected
// column, up to the scalar multiplication recorded separately on Column.
var zeroParityColumn = [9][3]int{
	{0, 0, 0}, {1, 2, 0}, {2, 1, 0},
	{1, 0, 2}, {2, 0, 1}, {0, 1, 2},
	{0, 2, 1}, {1, 1, 1}, {2, 2, 2},
}

// Column is the unit of the bare-state search tree: one column
// assignment within a supra-unit (spec.md §4.4, "from supra-units to
// units").
type Column struct {
	DSupraUnit int
	ZSupraUnit int
	Rank       uint
	Ending     bool
	IndexValue uint
	X, Z       int
	Entangled  Entanglement
	Scalar     uint
}

// NewColumn returns the smallest column: the start of the first
// supra-unit.
func NewColumn() Column {
	c := Column{Scalar: 1}
	c.setCoordinates()
	return c
}

func (c *Column) incrementRank() {
	c.Rank++
	c.IndexValue = 0
	c.setCoordinates()
}

func (c *Column) incrementIndexValue() bool {
	if c.affectedByNonzero() {
		if c.IndexValue < 8 {
			c.IndexValue++
		} else {
			return false
		}
	} else {
		if c.Entangled == NoEntanglement && c.IndexValue < 2 {
			c.IndexValue++
		} else {
			return false
		}
	}
	return true
}

// incrementSupraUnitPosition advances (dSupraUnit, zSupraUnit) respecting
// the lexicographic order [d, z, indexValue] and the z-canonicality
// optimizations described for the first supra-unit of a unit list.
func (c *Column) incrementSupraUnitPosition(unitList []Column) bool {
	if len(unitList) == 0 {
		if c.ZSupraUnit < 8 {
			c.ZSupraUnit++
			c.IndexValue = 0
		} else {
			return false
		}
	} else {
		zFirstSupraUnit := unitList[0].ZSupraUnit
		for {
			if c.ZSupraUnit < algebra.Slices-1 {
				c.ZSupraUnit++
			} else if c.DSupraUnit < algebra.Diagonal-1 {
				c.DSupraUnit++
				c.ZSupraUnit = 0
			} else {
				return false
			}
			if zFirstSupraUnit <= c.zSupraUnitCanonical() {
				break
			}
		}
		if zFirstSupraUnit == c.zSupraUnitCanonical() {
			c.IndexValue = unitList[0].IndexValue
		} else {
			c.IndexValue = 0
		}
	}
	c.setCoordinates()
	return true
}

func (c *Column) changeScalar() { c.Scalar = (2 * c.Scalar) % 3 }

// affectedBy returns the nonzero scalar p such that this (even-rank,
// starting or middle/ending) column is affected by p, or 0 if the column
// is odd-rank (unaffected).
func (c *Column) affectedBy() uint {
	if c.Rank%2 == 1 {
		return 0
	}
	return c.Scalar
}

func (c *Column) affectedByNonzero() bool { return c.affectedBy() != 0 }

// parity returns the nonzero scalar p such that this (odd-rank) column
// has parity p, or 0 if the column is even-rank.
func (c *Column) parity() uint {
	if c.Rank%2 == 0 {
		return 0
	}
	return c.Scalar
}

func (c *Column) zSupraUnitCanonical() int {
	return algebra.Mod(5*c.DSupraUnit+c.ZSupraUnit, algebra.Columns)
}

func (c *Column) zTranslateSupraUnit(dz int) {
	xSupraUnit := algebra.Mod(c.DSupraUnit+2*c.ZSupraUnit, algebra.Columns)
	c.ZSupraUnit = algebra.Mod(c.ZSupraUnit+dz, algebra.Slices)
	c.DSupraUnit = algebra.Mod(xSupraUnit-2*c.ZSupraUnit, algebra.Columns)
}

// Less implements the lexicographic order
// [dSupraUnit, zSupraUnit, rank, ending, indexValue]. It is not a total
// order: columns equivalent up to a multiplication by the scalar 2
// compare equal under it.
func (c Column) Less(other Column) bool {
	if c.DSupraUnit != other.DSupraUnit {
		return c.DSupraUnit < other.DSupraUnit
	}
	if c.ZSupraUnit != other.ZSupraUnit {
		return c.ZSupraUnit < other.ZSupraUnit
	}
	if c.Rank != other.Rank {
		return c.Rank < other.Rank
	}
	if c.Ending != other.Ending {
		return !c.Ending && other.Ending
	}
	return c.IndexValue < other.IndexValue
}

func (c *Column) setCoordinates() {
	var d int
	if c.Rank%2 == 0 {
		d = algebra.Mod(c.DSupraUnit+1, algebra.Columns)
		c.Z = algebra.Mod(c.ZSupraUnit-1+int(c.Rank)/2, algebra.Slices)
	} else {
		d = c.DSupraUnit
		c.Z = algebra.Mod(c.ZSupraUnit+int(c.Rank)/2, algebra.Slices)
	}
	c.X = algebra.Mod(d+2*c.Z, algebra.Columns)
}

func (c Column) String() string {
	return fmt.Sprintf("(x=%d,z=%d,rank=%d,affBy=%d,parity=%d,ending=%v,idx=%d,scalar=%d,ent=%d)",
		c.X, c.Z, c.Rank, c.affectedBy(), c.parity(), c.Ending, c.IndexValue, c.Scalar, c.Entangled)
}
