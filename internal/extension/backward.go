package extension

import (
	"sort"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/sbox"
)

// TryteInfo is one active tryte of B chosen while building a backward
// extension, restricted to the values ST-compatible with C's tryte at
// the same position.
type TryteInfo struct {
	Position                     algebra.TrytePosition
	PossibleValues               []sbox.Compatible
	Index                        int
	MustCalculateCostOfSlice     bool
	MustCalculateCostOfNextSlice bool
}

func newTryteInfo(pos algebra.TrytePosition, tryteAtC algebra.Tryte) TryteInfo {
	return TryteInfo{Position: pos, PossibleValues: sbox.InputDifferencesFor(tryteAtC)}
}

// SetFirstValue resets the tryte to its cheapest possible value.
func (t *TryteInfo) SetFirstValue(cache *BackwardExtensionCache) { t.Index = 0 }

// SetNextValue advances to the next possible value, reporting false once
// every value has been visited.
func (t *TryteInfo) SetNextValue(cache *BackwardExtensionCache) bool {
	if t.Index >= len(t.PossibleValues)-1 {
		return false
	}
	t.Index++
	return true
}

// Value returns the tryte's current chosen value.
func (t *TryteInfo) Value() algebra.Tryte { return t.PossibleValues[t.Index].Value }

// Weight returns the transition weight of the tryte's current value.
func (t *TryteInfo) Weight() algebra.Weight { return t.PossibleValues[t.Index].Weight }

// BackwardExtensionPreparation lays the active trytes of B out slice by
// slice, starting wherever a run of active slices of C begins and
// ordering ties by how few trytes their slice has (spec.md §7.3).
type BackwardExtensionPreparation struct {
	MaxWeightExtension algebra.Weight
	PartsList          []TryteInfo
}

// NewBackwardExtensionPreparation builds the preparation for extending a
// trail core starting at stateC backward, bounding w(B--ST-->C) + wMinRev(A)
// by maxWeightExtension.
func NewBackwardExtensionPreparation(stateC algebra.State, maxWeightExtension algebra.Weight) *BackwardExtensionPreparation {
	p := &BackwardExtensionPreparation{MaxWeightExtension: maxWeightExtension}

	sliceActive := make([]bool, algebra.Slices)
	allActive := true
	for z := 0; z < algebra.Slices; z++ {
		sliceActive[z] = stateC.IsSliceActive(z)
		if !sliceActive[z] {
			allActive = false
		}
	}

	if allActive {
		for z := algebra.Slices - 1; z >= 0; z-- {
			p.addInfoOfTheTrytesOfTheSliceAtB(z, stateC)
			last := &p.PartsList[len(p.PartsList)-1]
			if z == algebra.Slices-1 {
				last.MustCalculateCostOfSlice = false
			}
			if z == 0 {
				last.MustCalculateCostOfNextSlice = true
			}
		}
		return p
	}

	type startRun struct {
		nrActiveTrytes, z int
	}
	var starts []startRun
	for z := 0; z < algebra.Slices; z++ {
		if sliceActive[z] && !sliceActive[(z+1)%algebra.Slices] {
			starts = append(starts, startRun{stateC.GetNrActiveTrytesOfSlice(z), z})
		}
	}
	sort.Slice(starts, func(a, b int) bool {
		if starts[a].nrActiveTrytes != starts[b].nrActiveTrytes {
			return starts[a].nrActiveTrytes < starts[b].nrActiveTrytes
		}
		return starts[a].z < starts[b].z
	})

	for _, run := range starts {
		z := run.z
		for {
			p.addInfoOfTheTrytesOfTheSliceAtB(z, stateC)
			z = algebra.Mod(z-1, algebra.Slices)
			if !sliceActive[z] {
				break
			}
		}
	}
	return p
}

// CouldBeExtended always holds: every state C has at least one backward
// extension, since SubTrytes is invertible on each tryte.
func (p *BackwardExtensionPreparation) CouldBeExtended() bool { return true }

func (p *BackwardExtensionPreparation) addInfoOfTheTrytesOfTheSliceAtB(z int, stateC algebra.State) {
	for xTryte := 0; xTryte < 3; xTryte++ {
		for y := 0; y < algebra.Rows; y++ {
			pos := algebra.TrytePosition{X: xTryte, Y: y, Z: z}
			if stateC.IsTryteActive(pos) {
				p.PartsList = append(p.PartsList, newTryteInfo(pos, stateC.GetTryteAt(pos)))
			}
		}
	}
	last := &p.PartsList[len(p.PartsList)-1]
	last.MustCalculateCostOfSlice = true
	if !stateC.IsSliceActive(algebra.Mod(z-1, algebra.Slices)) {
		last.MustCalculateCostOfNextSlice = true
	}
}

// BackwardExtensionCache tracks B and AddColumnParity^-1(B) tryte by
// tryte as the extension's parts are chosen, recomputing A's activity
// pattern a slice at a time once a slice of B is finished.
type BackwardExtensionCache struct {
	stackWeightBC        []algebra.Weight
	activeA              algebra.ActiveState
	nrActiveTrytesA      int
	b                    algebra.State
	invAddColumnParityOfB algebra.State
	columnParityOfB      [algebra.Columns][algebra.Slices]int
}

// NewBackwardExtensionCache builds the empty cache for prep.
func NewBackwardExtensionCache(prep *BackwardExtensionPreparation) *BackwardExtensionCache {
	return &BackwardExtensionCache{stackWeightBC: []algebra.Weight{{}}}
}

// Push records tryte's value and, once it is the last tryte of its
// slice, folds that slice's column parity into A's activity pattern.
func (c *BackwardExtensionCache) Push(tryte TryteInfo) {
	c.stackWeightBC = append(c.stackWeightBC, c.stackWeightBC[len(c.stackWeightBC)-1].Add(tryte.Weight()))
	c.initTryteOfStateB(tryte)
	if tryte.MustCalculateCostOfSlice {
		z := tryte.Position.Z
		c.setTheColumnParityOfTheSlice(z)
		c.applyToTheSliceInvAddColumnParity(z)
		c.addTrytesAtAFromSlice(z)
	}
	if tryte.MustCalculateCostOfNextSlice {
		z := algebra.Mod(tryte.Position.Z-1, algebra.Slices)
		c.applyToTheSliceInvAddColumnParity(z)
		c.addTrytesAtAFromSlice(z)
	}
}

// Pop undoes the effect of a matching Push.
func (c *BackwardExtensionCache) Pop(tryte TryteInfo) {
	if tryte.MustCalculateCostOfNextSlice {
		c.removeTrytesAtAFromSlice(algebra.Mod(tryte.Position.Z-1, algebra.Slices))
	}
	if tryte.MustCalculateCostOfSlice {
		c.removeTrytesAtAFromSlice(tryte.Position.Z)
	}
	c.stackWeightBC = c.stackWeightBC[:len(c.stackWeightBC)-1]
}

func (c *BackwardExtensionCache) topWeightBC() algebra.Weight {
	return c.stackWeightBC[len(c.stackWeightBC)-1]
}

func (c *BackwardExtensionCache) initTryteOfStateB(tryte TryteInfo) {
	c.b.SetTryteAt(tryte.Position, tryte.Value())
}

func (c *BackwardExtensionCache) setTheColumnParityOfTheSlice(z int) {
	for x := 0; x < algebra.Columns; x++ {
		sum := 0
		for y := 0; y < algebra.Rows; y++ {
			sum += c.b.GetTrit(x, y, z)
		}
		c.columnParityOfB[x][z] = sum % 3
	}
}

func (c *BackwardExtensionCache) applyToTheSliceInvAddColumnParity(z int) {
	for x := 0; x < algebra.Columns; x++ {
		for y := 0; y < algebra.Rows; y++ {
			colParity1 := c.columnParityOfB[algebra.Mod(x-1, algebra.Columns)][z]
			colParity2 := c.columnParityOfB[algebra.Mod(x+1, algebra.Columns)][algebra.Mod(z+1, algebra.Slices)]
			v := c.b.GetTrit(x, y, z) + 2*colParity1 + 2*colParity2
			c.invAddColumnParityOfB.SetTritValue(v%3, x, y, z)
		}
	}
}

func (c *BackwardExtensionCache) addTrytesAtAFromSlice(z int) {
	for x := 0; x < algebra.Columns; x++ {
		for y := 0; y < algebra.Rows; y++ {
			if c.invAddColumnParityOfB.GetTrit(x, y, z) == 0 {
				continue
			}
			tA := algebra.NewTritPosition(x, y, z)
			tA.InvSRSL()
			if !c.activeA.IsTheTritInAnActiveTryte(tA) {
				c.nrActiveTrytesA++
			}
			c.activeA.ActivateTritAt(tA)
		}
	}
}

func (c *BackwardExtensionCache) removeTrytesAtAFromSlice(z int) {
	for x := 0; x < algebra.Columns; x++ {
		for y := 0; y < algebra.Rows; y++ {
			if c.invAddColumnParityOfB.GetTrit(x, y, z) == 0 {
				continue
			}
			tA := algebra.NewTritPosition(x, y, z)
			tA.InvSRSL()
			c.activeA.DeactivateTritAt(tA)
			if !c.activeA.IsTheTritInAnActiveTryte(tA) {
				c.nrActiveTrytesA--
			}
		}
	}
}

// CostFunctionBackwardExtension lower-bounds w(B--ST-->C) + wMinRev(A) by
// the weight already committed plus 2 per tryte of B still unchosen plus
// 2 per active tryte of A built so far.
type CostFunctionBackwardExtension struct {
	MaxWeightExtension algebra.Weight
	NrActiveTrytesB    int
}

// NewCostFunctionBackwardExtension builds the cost function for prep.
func NewCostFunctionBackwardExtension(prep *BackwardExtensionPreparation) CostFunctionBackwardExtension {
	return CostFunctionBackwardExtension{MaxWeightExtension: prep.MaxWeightExtension, NrActiveTrytesB: len(prep.PartsList)}
}

// TooHighCost reports whether the partial choice recorded in cache
// already exceeds MaxWeightExtension.
func (f CostFunctionBackwardExtension) TooHighCost(cache *BackwardExtensionCache, indCurPart int) bool {
	remaining := uint32(2 * (f.NrActiveTrytesB - indCurPart - 1))
	cost := algebra.NewWeight(remaining).Add(cache.topWeightBC()).Add(algebra.NewWeight(uint32(2 * cache.nrActiveTrytesA)))
	return !cost.LessOrEqual(f.MaxWeightExtension)
}

// BackwardExtension is a one-round backward extension (A, B) of a trail
// core starting at C: A --L--> B --ST--> C.
type BackwardExtension struct {
	StateA   algebra.State
	StateB   algebra.State
	WMinRevA algebra.Weight
	WBC      algebra.Weight
}

// NewBackwardExtensionFactory returns the newOutput closure Iterator.New
// needs.
func NewBackwardExtensionFactory() func() *BackwardExtension {
	return func() *BackwardExtension { return &BackwardExtension{} }
}

// Set fills in StateA, StateB, WBC and WMinRevA from a complete choice of
// B's active trytes.
func (o *BackwardExtension) Set(parts []TryteInfo, cache *BackwardExtensionCache, costF CostFunctionBackwardExtension) {
	var stateB algebra.State
	for _, tryte := range parts {
		stateB.SetTryteAt(tryte.Position, tryte.Value())
	}
	o.StateB = stateB
	o.StateA.SetInvLambda(stateB)
	o.WBC = cache.topWeightBC()
	o.WMinRevA = algebra.NewWeight(uint32(2 * cache.nrActiveTrytesA))
}

// IsValidAndBelowWeight reports whether the extension's total weight does
// not exceed maxWeight. By construction every BackwardExtension is
// already ST-compatible with C.
func (o *BackwardExtension) IsValidAndBelowWeight(maxWeight algebra.Weight) bool {
	return o.WBC.Add(o.WMinRevA).LessOrEqual(maxWeight)
}
