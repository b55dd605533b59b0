package extension

import (
	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/sbox"
)

// tritConstraint narrows the admissible values of a trit of SRSL(C) given
// the tryte of B it belongs to, per the S-box's property that trytes of
// Hamming weight 1 force a single nonzero value on the trit carrying it.
type tritConstraint int

const (
	noConstraint tritConstraint = iota
	mustBe1
	mustBe2
	cannotBe0
)

// TritInfo is one trit of SRSL(C) chosen while building a forward
// extension, in the order the preparation lays slices out.
type TritInfo struct {
	PosAtSRSLC                   algebra.TritPosition
	PosAtC                       algebra.TritPosition
	MustCalculateCostOfSlice     bool
	MustCalculateCostOfNextSlice bool
	Value                        int
}

func newTritInfo(x, y, z int) TritInfo {
	posAtSRSLC := algebra.NewTritPosition(x, y, z)
	return TritInfo{PosAtSRSLC: posAtSRSLC, PosAtC: posAtSRSLC.GetInvSRSL()}
}

// SetFirstValue picks the smallest value (0, 1 or 2) admissible given
// cache's constraints; the reference guarantees one always exists.
func (t *TritInfo) SetFirstValue(cache *ForwardExtensionCache) {
	t.Value = 0
	for !t.isValidValue(cache) {
		t.Value++
	}
}

// SetNextValue advances to the next admissible value above the current
// one, reporting false and leaving Value unchanged once exhausted.
func (t *TritInfo) SetNextValue(cache *ForwardExtensionCache) bool {
	last := t.Value
	for {
		t.Value++
		if t.Value >= 3 || t.isValidValue(cache) {
			break
		}
	}
	if t.Value == 3 {
		t.Value = last
		return false
	}
	return true
}

func (t *TritInfo) isValidValue(cache *ForwardExtensionCache) bool {
	constraint := cache.constraintAtC[t.PosAtC]
	if t.Value == 0 {
		if cache.nrNonActiveTritsAtC[algebra.FromTritPosition(t.PosAtC)] == 2 {
			return false
		}
		if constraint != noConstraint {
			return false
		}
	}
	if t.Value == 1 && constraint == mustBe2 {
		return false
	}
	if t.Value == 2 && constraint == mustBe1 {
		return false
	}
	return true
}

// ForwardExtensionPreparation derives, from state B, every possible
// active trit of SRSL(C), the constraints each carries from B's S-box
// compatibility, and the slice order the extension must choose them in
// (spec.md §7.1).
type ForwardExtensionPreparation struct {
	MaxWeightExtension    algebra.Weight
	PartsList             []TritInfo
	PosForSTCompatibility []algebra.TrytePosition
	constraintAtC         map[algebra.TritPosition]tritConstraint
	possibleAtSRSLC       algebra.ActiveState
}

// NewForwardExtensionPreparation builds the preparation for extending the
// trail core ending at stateB, with maxWeightExtension bounding
// w(B--ST-->C) + wMinDir(D).
func NewForwardExtensionPreparation(stateB algebra.State, maxWeightExtension algebra.Weight) *ForwardExtensionPreparation {
	p := &ForwardExtensionPreparation{
		MaxWeightExtension: maxWeightExtension,
		constraintAtC:      make(map[algebra.TritPosition]tritConstraint),
	}
	p.initPosForSTCompatibility(stateB)
	p.initPossibleActiveTritsAndConstraints(stateB)

	zStart := algebra.Slices
	for z := 0; z < algebra.Slices; z++ {
		if p.possibleAtSRSLC.IsSliceActive(z) && !p.possibleAtSRSLC.IsSliceActive((z+1)%algebra.Slices) {
			zStart = z
			break
		}
	}
	if zStart != algebra.Slices {
		for i := 0; i < algebra.Slices; i++ {
			z := algebra.Mod(zStart-i, algebra.Slices)
			if p.possibleAtSRSLC.IsSliceActive(z) {
				p.addInfoOfTheTritsOfTheSlice(z)
			}
		}
	} else {
		for z := algebra.Slices - 1; z >= 0; z-- {
			p.addInfoOfTheTritsOfTheSlice(z)
			last := &p.PartsList[len(p.PartsList)-1]
			if z == algebra.Slices-1 {
				last.MustCalculateCostOfSlice = false
			}
			if z == 0 {
				last.MustCalculateCostOfNextSlice = true
			}
		}
	}
	return p
}

// CouldBeExtended always holds: every state B has at least one forward
// extension, since SubTrytes is onto.
func (p *ForwardExtensionPreparation) CouldBeExtended() bool { return true }

func (p *ForwardExtensionPreparation) initPosForSTCompatibility(stateB algebra.State) {
	for z := 0; z < algebra.Slices; z++ {
		for xTryte := 0; xTryte < 3; xTryte++ {
			for y := 0; y < algebra.Rows; y++ {
				pos := algebra.TrytePosition{X: xTryte, Y: y, Z: z}
				if stateB.IsTryteActive(pos) {
					p.PosForSTCompatibility = append(p.PosForSTCompatibility, pos)
				}
			}
		}
	}
}

// initPossibleActiveTritsAndConstraints applies the S-box's Property 2:
// a tryte of Hamming weight 1 at B forces which trit of SRSL(C) must
// carry the surviving value, and a tryte of weight 1 equal to 9 or 18
// forbids the second trit of C from vanishing.
func (p *ForwardExtensionPreparation) initPossibleActiveTritsAndConstraints(stateB algebra.State) {
	for _, pos := range p.PosForSTCompatibility {
		tryteValue := stateB.GetTryteAt(pos)

		t := algebra.NewTritPosition(3*pos.X, pos.Y, pos.Z)
		p.constraintAtC[t] = noConstraint
		p.possibleAtSRSLC.ActivateTritAt(t.GetSRSL())

		constraint := noConstraint
		if tryteValue == 9 || tryteValue == 18 {
			constraint = cannotBe0
		}
		t = algebra.NewTritPosition(3*pos.X+1, pos.Y, pos.Z)
		p.constraintAtC[t] = constraint
		p.possibleAtSRSLC.ActivateTritAt(t.GetSRSL())

		constraint = noConstraint
		switch tryteValue {
		case 1:
			constraint = mustBe1
		case 2:
			constraint = mustBe2
		}
		t = algebra.NewTritPosition(3*pos.X+2, pos.Y, pos.Z)
		p.constraintAtC[t] = constraint
		p.possibleAtSRSLC.ActivateTritAt(t.GetSRSL())
	}
}

func (p *ForwardExtensionPreparation) addInfoOfTheTritsOfTheSlice(z int) {
	for x := 0; x < algebra.Columns; x++ {
		for y := 0; y < algebra.Rows; y++ {
			if p.possibleAtSRSLC.IsTritActive(x, y, z) {
				p.PartsList = append(p.PartsList, newTritInfo(x, y, z))
			}
		}
	}
	last := &p.PartsList[len(p.PartsList)-1]
	last.MustCalculateCostOfSlice = true
	if !p.possibleAtSRSLC.IsSliceActive(algebra.Mod(z-1, algebra.Slices)) {
		last.MustCalculateCostOfNextSlice = true
	}
}

// ForwardExtensionCache tracks SRSL(C) and D trit by trit as the
// extension's parts are chosen, recomputing a slice of D's column parity
// (and its active tryte count) each time a slice of SRSL(C) is finished.
type ForwardExtensionCache struct {
	constraintAtC       map[algebra.TritPosition]tritConstraint
	nrNonActiveTritsAtC map[algebra.TrytePosition]int
	tritsAtSRSLC        algebra.State
	tritsAtD            algebra.State
	columnParityOfSRSLC [algebra.Columns][algebra.Slices]int
	stackNrActiveTrytesD []int
}

// NewForwardExtensionCache builds the empty cache for prep.
func NewForwardExtensionCache(prep *ForwardExtensionPreparation) *ForwardExtensionCache {
	return &ForwardExtensionCache{
		constraintAtC:        prep.constraintAtC,
		nrNonActiveTritsAtC:  make(map[algebra.TrytePosition]int),
		stackNrActiveTrytesD: []int{0},
	}
}

// Push records trit's value and, once it is the last trit of its slice,
// folds that slice's column parity into D and pushes D's updated active
// tryte count.
func (c *ForwardExtensionCache) Push(trit TritInfo) {
	pos := trit.PosAtSRSLC
	c.tritsAtSRSLC.SetTritValueAt(trit.Value, pos)
	if trit.Value == 0 {
		c.nrNonActiveTritsAtC[algebra.FromTritPosition(trit.PosAtC)]++
	}
	if trit.MustCalculateCostOfSlice {
		c.setColumnParityOfSliceAtSRSLC(pos.Z)
		c.applyAddColumnParityToSlice(pos.Z)
		c.pushNrActiveTrytesD(pos.Z)
	}
	if trit.MustCalculateCostOfNextSlice {
		z := algebra.Mod(pos.Z-1, algebra.Slices)
		c.applyAddColumnParityToSlice(z)
		c.pushNrActiveTrytesD(z)
	}
}

// Pop undoes the effect of a matching Push.
func (c *ForwardExtensionCache) Pop(trit TritInfo) {
	pos := trit.PosAtSRSLC
	c.tritsAtSRSLC.SetTritValueAt(0, pos)
	if trit.Value == 0 {
		c.nrNonActiveTritsAtC[algebra.FromTritPosition(trit.PosAtC)]--
	}
	if trit.MustCalculateCostOfNextSlice {
		c.popNrActiveTrytesD()
	}
	if trit.MustCalculateCostOfSlice {
		c.popNrActiveTrytesD()
	}
}

func (c *ForwardExtensionCache) pushNrActiveTrytesD(z int) {
	top := c.stackNrActiveTrytesD[len(c.stackNrActiveTrytesD)-1]
	c.stackNrActiveTrytesD = append(c.stackNrActiveTrytesD, top+c.nrActiveTrytesOfSliceAtD(z))
}

func (c *ForwardExtensionCache) popNrActiveTrytesD() {
	c.stackNrActiveTrytesD = c.stackNrActiveTrytesD[:len(c.stackNrActiveTrytesD)-1]
}

func (c *ForwardExtensionCache) topNrActiveTrytesD() int {
	return c.stackNrActiveTrytesD[len(c.stackNrActiveTrytesD)-1]
}

func (c *ForwardExtensionCache) setColumnParityOfSliceAtSRSLC(z int) {
	for x := 0; x < algebra.Columns; x++ {
		sum := 0
		for y := 0; y < algebra.Rows; y++ {
			sum += c.tritsAtSRSLC.GetTrit(x, y, z)
		}
		c.columnParityOfSRSLC[x][z] = sum % 3
	}
}

func (c *ForwardExtensionCache) applyAddColumnParityToSlice(z int) {
	for x := 0; x < algebra.Columns; x++ {
		for y := 0; y < algebra.Rows; y++ {
			v := c.tritsAtSRSLC.GetTrit(x, y, z) +
				c.columnParityOfSRSLC[algebra.Mod(x-1, algebra.Columns)][z] +
				c.columnParityOfSRSLC[algebra.Mod(x+1, algebra.Columns)][algebra.Mod(z+1, algebra.Slices)]
			c.tritsAtD.SetTritValue(v%3, x, y, z)
		}
	}
}

func (c *ForwardExtensionCache) nrActiveTrytesOfSliceAtD(z int) int {
	n := 0
	for xTryte := 0; xTryte < 3; xTryte++ {
		for y := 0; y < algebra.Rows; y++ {
			if c.tritsAtD.IsTryteActive(algebra.TrytePosition{X: xTryte, Y: y, Z: z}) {
				n++
			}
		}
	}
	return n
}

// CostFunctionForwardExtension lower-bounds w(B--ST-->C) + wMinDir(D) by
// 2*(active trytes of C already fixed + active trytes of D built so far),
// pruning a branch as soon as that lower bound exceeds the budget.
type CostFunctionForwardExtension struct {
	MaxWeightExtension algebra.Weight
	NrActiveTrytesC    int
}

// NewCostFunctionForwardExtension builds the cost function for prep.
func NewCostFunctionForwardExtension(prep *ForwardExtensionPreparation) CostFunctionForwardExtension {
	return CostFunctionForwardExtension{
		MaxWeightExtension: prep.MaxWeightExtension,
		NrActiveTrytesC:    len(prep.PosForSTCompatibility),
	}
}

// TooHighCost reports whether the partial choice recorded in cache
// already exceeds MaxWeightExtension.
func (f CostFunctionForwardExtension) TooHighCost(cache *ForwardExtensionCache, indCurPart int) bool {
	lowerBound := algebra.NewWeight(uint32(2 * (cache.topNrActiveTrytesD() + f.NrActiveTrytesC)))
	return !lowerBound.LessOrEqual(f.MaxWeightExtension)
}

// ForwardExtension is a one-round forward extension (C, D) of a trail
// core ending at B: B --ST--> C --L--> D.
type ForwardExtension struct {
	StateB                algebra.State
	StateC                algebra.State
	StateD                algebra.State
	WBC                   algebra.Weight
	WMinDirD              algebra.Weight
	PosForSTCompatibility []algebra.TrytePosition
	Valid                 bool
}

// NewForwardExtensionFactory returns the newOutput closure Iterator.New
// needs, binding stateB and the S-box compatibility positions that every
// produced ForwardExtension shares.
func NewForwardExtensionFactory(stateB algebra.State, posForSTCompatibility []algebra.TrytePosition) func() *ForwardExtension {
	return func() *ForwardExtension {
		return &ForwardExtension{StateB: stateB, PosForSTCompatibility: posForSTCompatibility}
	}
}

// Set fills in StateC, StateD, WBC, WMinDirD and Valid from a complete
// choice of SRSL(C) trits.
func (o *ForwardExtension) Set(parts []TritInfo, cache *ForwardExtensionCache, costF CostFunctionForwardExtension) {
	var stateD algebra.State
	for _, trit := range parts {
		stateD.SetTritValueAt(trit.Value, trit.PosAtSRSLC)
	}
	stateD.AddColumnParity()
	o.StateD = stateD
	o.StateC.SetInvLambda(stateD)
	o.WMinDirD = algebra.NewWeight(uint32(2 * cache.topNrActiveTrytesD()))
	o.WBC, o.Valid = sbox.AreStatesCompatible(&o.StateB, &o.StateC, o.PosForSTCompatibility)
}

// IsValidAndBelowWeight reports whether the extension is ST-compatible
// and its total weight does not exceed maxWeight.
func (o *ForwardExtension) IsValidAndBelowWeight(maxWeight algebra.Weight) bool {
	if !o.Valid {
		return false
	}
	return o.WBC.Add(o.WMinDirD).LessOrEqual(maxWeight)
}

// SetStateCAndDFromStateD derives StateC from a concrete stateD chosen by
// the in-kernel forward extension (which builds D directly rather than
// trit by trit through this type's Part machinery).
func (o *ForwardExtension) SetStateCAndDFromStateD(stateD algebra.State) {
	o.StateD = stateD
	o.StateC.SetInvLambda(stateD)
	o.WBC, o.Valid = sbox.AreStatesCompatible(&o.StateB, &o.StateC, o.PosForSTCompatibility)
	o.WMinDirD = algebra.NewWeight(uint32(2 * stateD.GetNrActiveTrytes()))
}
