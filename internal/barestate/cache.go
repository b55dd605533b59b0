package barestate

import "github.com/troikacore/trailcore/internal/algebra"

// tritPositionAtAAndB pairs a trit's position at B with its antecedent at
// A under InvSRSL.
type tritPositionAtAAndB struct {
	PA, PB algebra.TritPosition
}

func newTritPositionAtAAndB(col Column, y int) tritPositionAtAAndB {
	return tritPositionAtAAndBFromXYZ(col.X, y, col.Z)
}

func tritPositionAtAAndBFromXYZ(x, y, z int) tritPositionAtAAndB {
	pB := algebra.TritPosition{X: x, Y: y, Z: z}
	return tritPositionAtAAndB{PA: pB.GetInvSRSL(), PB: pB}
}

// tritAtAAndB records the value of one trit of a unit at both A and B,
// plus whether that value is already known to be stable (spec.md §4.4,
// "importance of the ordering of supra-units").
type tritAtAAndB struct {
	tritPositionAtAAndB
	VA, VB     int
	DSupraUnit int
	Stable     bool
}

func newTritAtAAndB(col Column, y int) tritAtAAndB {
	t := tritAtAAndB{tritPositionAtAAndB: newTritPositionAtAAndB(col, y)}
	if col.affectedBy() == 0 {
		if y == int(col.IndexValue) {
			t.VB = 1
		}
		t.VA = t.VB
	} else {
		t.VA = zeroParityColumn[col.IndexValue][y]
		t.VB = t.VA + 1
	}
	t.VA = (t.VA * int(col.Scalar)) % 3
	t.VB = (t.VB * int(col.Scalar)) % 3
	t.DSupraUnit = col.DSupraUnit

	switch {
	case y != 0:
		t.Stable = true
	case col.Entangled != NoEntanglement:
		t.Stable = true
	case t.VA == t.VB:
		t.Stable = t.DSupraUnit > 0
	default:
		t.Stable = false
	}
	return t
}

// Cache is the incremental cache backing the bare-state search: the
// states A and B built so far, which of their trits are already known
// stable, the parity and theta-effect planes of rho(A), and the run
// graph connecting supra-units into components (spec.md §4.4, §4.5).
type Cache struct {
	StateA, StateB               algebra.State
	NrActiveTrytesA               int
	NrActiveTrytesB               int
	StableTritsA, StableTritsB   algebra.ActiveState
	NrStableTrytesA               int
	NrStableTrytesB               int
	ParityPlane, ThetaEffect       algebra.Plane
	possibleUnstableTrits         []tritAtAAndB
	dummy                          bool
	startSupraUnit                 []int
	supraUnitIndexes               [algebra.Columns][algebra.Slices]int
	indexLastSupraUnit             int
	indexLastUnit                  int
	neighborsSupraUnit              [][]int
}

// NewCache returns an empty bare-state search cache.
func NewCache() *Cache {
	c := &Cache{indexLastSupraUnit: -1, indexLastUnit: -1}
	for x := range c.supraUnitIndexes {
		for z := range c.supraUnitIndexes[x] {
			c.supraUnitIndexes[x][z] = -1
		}
	}
	return c
}

// PushDummy implements traversal.Cache.
func (c *Cache) PushDummy() { c.dummy = true }

// Push implements traversal.Cache.
func (c *Cache) Push(col Column) {
	c.indexLastUnit++
	c.ThetaEffect.AddTritValue(int(col.affectedBy()), col.X, col.Z)
	c.ParityPlane.AddTritValue(int(col.parity()), col.X, col.Z)

	if col.affectedBy() != 0 {
		for y := 0; y < algebra.Rows; y++ {
			c.pushOrPopTritAtAAndB(true, newTritAtAAndB(col, y))
		}
	} else {
		c.pushOrPopTritAtAAndB(true, newTritAtAAndB(col, int(col.IndexValue)))
	}

	if col.Rank == 0 {
		c.addSupraUnit()
	}
	if col.Entangled == ToIterate || col.Entangled == Iterated {
		c.addSupraUnitNeighbor(c.supraUnitIndexes[col.X][col.Z])
	}
	if col.Entangled == NoEntanglement {
		c.supraUnitIndexes[col.X][col.Z] = c.indexLastSupraUnit
	}
	c.dummy = false
}

// Pop implements traversal.Cache.
func (c *Cache) Pop(col Column) {
	if c.dummy {
		c.dummy = false
		return
	}
	if col.Entangled == NoEntanglement {
		c.supraUnitIndexes[col.X][col.Z] = -1
	}
	if col.Entangled == ToIterate || col.Entangled == Iterated {
		c.removeSupraUnitNeighbor(c.supraUnitIndexes[col.X][col.Z])
	}
	if col.Rank == 0 {
		c.removeLastSupraUnit()
	}
	if col.affectedBy() != 0 {
		for y := 0; y < algebra.Rows; y++ {
			c.pushOrPopTritAtAAndB(false, newTritAtAAndB(col, y))
		}
	} else {
		c.pushOrPopTritAtAAndB(false, newTritAtAAndB(col, int(col.IndexValue)))
	}
	c.ThetaEffect.AddTritValue(int(2*col.affectedBy())%3, col.X, col.Z)
	c.ParityPlane.AddTritValue(int(2*col.parity())%3, col.X, col.Z)
	c.indexLastUnit--
}

// iterateEntanglement multiplies by 2 every column of the component that
// the overlapping column `current` connects to, then marks current
// Iterated (spec.md §4.4).
func (c *Cache) iterateEntanglement(unitList []Column, current *Column) {
	supraUnitFound := make([]bool, c.indexLastSupraUnit+1)
	indexes := c.unitIndexesOfComponent(c.supraUnitIndexes[current.X][current.Z], supraUnitFound)

	for _, ind := range indexes {
		col := &unitList[ind]
		col.changeScalar()
		if col.Entangled == NoEntanglement {
			c.ParityPlane.AddTritValue(int(col.parity())%3, col.X, col.Z)
			c.ThetaEffect.AddTritValue(int(col.affectedBy())%3, col.X, col.Z)
			for y := 0; y < algebra.Rows; y++ {
				pos := newTritPositionAtAAndB(*col, y)
				c.StateA.AddTritValue(int(col.Scalar)-1, pos.PA)
				c.StateB.AddTritValue(int(col.Scalar)-1, pos.PB)
			}
		}
	}
	current.Entangled = Iterated
	current.IndexValue = 0
}

func (c *Cache) lastSupraUnitInTheComponentOf(index int) bool {
	visited := map[int]bool{c.indexLastSupraUnit: true}
	queue := []int{c.indexLastSupraUnit}
	for len(queue) > 0 {
		supraUnit := queue[0]
		queue = queue[1:]
		for _, n := range c.neighborsSupraUnit[supraUnit] {
			if n == index {
				return true
			}
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// ComponentsIndexes returns, for each component of rho(A), the unit-list
// indexes of the columns belonging to it.
func (c *Cache) ComponentsIndexes() [][]int {
	var components [][]int
	found := make([]bool, len(c.neighborsSupraUnit))
	for supraUnit := 0; supraUnit <= c.indexLastSupraUnit; supraUnit++ {
		if !found[supraUnit] {
			components = append(components, c.unitIndexesOfComponent(supraUnit, found))
		}
	}
	return components
}

func (c *Cache) unitIndexesOfComponent(start int, found []bool) []int {
	var unitIndexes []int
	queue := []int{start}
	found[start] = true
	for len(queue) > 0 {
		supraUnit := queue[0]
		queue = queue[1:]
		begin := c.startSupraUnit[supraUnit]
		var end int
		if supraUnit == c.indexLastSupraUnit {
			end = c.indexLastUnit + 1
		} else {
			end = c.startSupraUnit[supraUnit+1]
		}
		for i := begin; i < end; i++ {
			unitIndexes = append(unitIndexes, i)
		}
		for _, n := range c.neighborsSupraUnit[supraUnit] {
			if !found[n] {
				found[n] = true
				queue = append(queue, n)
			}
		}
	}
	return unitIndexes
}

func (c *Cache) pushOrPopTritAtAAndB(push bool, trit tritAtAAndB) {
	c.NrActiveTrytesA -= boolToInt(c.StateA.IsTheTritInAnActiveTryte(trit.PA))
	mulA := 1
	if !push {
		mulA = 2
	}
	c.StateA.AddTritValue(mulA*trit.VA, trit.PA)
	c.NrActiveTrytesA += boolToInt(c.StateA.IsTheTritInAnActiveTryte(trit.PA))

	c.NrActiveTrytesB -= boolToInt(c.StateB.IsTheTritInAnActiveTryte(trit.PB))
	c.StateB.AddTritValue(mulA*trit.VB, trit.PB)
	c.NrActiveTrytesB += boolToInt(c.StateB.IsTheTritInAnActiveTryte(trit.PB))

	if trit.Stable {
		c.NrStableTrytesA -= boolToInt(c.StableTritsA.IsTheTritInAnActiveTryte(trit.PA))
		if push && c.StateA.IsTritActiveAt(trit.PA) {
			c.StableTritsA.ActivateTritAt(trit.PA)
		} else if !push {
			c.StableTritsA.DeactivateTritAt(trit.PA)
		}
		c.NrStableTrytesA += boolToInt(c.StableTritsA.IsTheTritInAnActiveTryte(trit.PA))

		c.NrStableTrytesB -= boolToInt(c.StableTritsB.IsTheTritInAnActiveTryte(trit.PB))
		if push && c.StateB.IsTritActiveAt(trit.PB) {
			c.StableTritsB.ActivateTritAt(trit.PB)
		} else if !push {
			c.StableTritsB.DeactivateTritAt(trit.PB)
		}
		c.NrStableTrytesB += boolToInt(c.StableTritsB.IsTheTritInAnActiveTryte(trit.PB))
	} else {
		if push {
			c.possibleUnstableTrits = append(c.possibleUnstableTrits, trit)
		} else {
			c.possibleUnstableTrits = c.possibleUnstableTrits[:len(c.possibleUnstableTrits)-1]
		}
	}
}

func (c *Cache) addSupraUnit() {
	c.neighborsSupraUnit = append(c.neighborsSupraUnit, nil)
	c.indexLastSupraUnit++
	c.startSupraUnit = append(c.startSupraUnit, c.indexLastUnit)
}

func (c *Cache) removeLastSupraUnit() {
	c.neighborsSupraUnit = c.neighborsSupraUnit[:len(c.neighborsSupraUnit)-1]
	c.indexLastSupraUnit--
	c.startSupraUnit = c.startSupraUnit[:len(c.startSupraUnit)-1]
}

func (c *Cache) addSupraUnitNeighbor(index int) {
	c.neighborsSupraUnit[index] = append(c.neighborsSupraUnit[index], c.indexLastSupraUnit)
	c.neighborsSupraUnit[c.indexLastSupraUnit] = append(c.neighborsSupraUnit[c.indexLastSupraUnit], index)
}

func (c *Cache) removeSupraUnitNeighbor(index int) {
	last := c.neighborsSupraUnit[c.indexLastSupraUnit]
	c.neighborsSupraUnit[c.indexLastSupraUnit] = last[:len(last)-1]
	other := c.neighborsSupraUnit[index]
	c.neighborsSupraUnit[index] = other[:len(other)-1]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
