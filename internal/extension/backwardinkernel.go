package extension

import (
	"sort"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/sbox"
)

// InKernelTryteColumns is one box-column (3 trytes sharing xTryte, z) of
// B chosen while building a backward in-kernel extension, restricted to
// in-kernel values ST-compatible with C's box-column at the same
// position, cheapest first.
type InKernelTryteColumns struct {
	XTryte         int
	Z              int
	PossibleValues []sbox.ColumnCompatible
	Empty          bool
	Index          int
	rowOrder       [algebra.Rows]int
}

func newInKernelTryteColumns(xTryte, z int) InKernelTryteColumns {
	return InKernelTryteColumns{XTryte: xTryte, Z: z}
}

// setValues populates PossibleValues from the box-column of state at the
// same position, ordering rows by descending tryte value to match the
// canonical ordering sbox.InKernelColumnsBeforeST expects.
func (c *InKernelTryteColumns) setValues(state algebra.State) {
	type rowValue struct {
		y int
		v algebra.Tryte
	}
	rows := [algebra.Rows]rowValue{}
	for y := 0; y < algebra.Rows; y++ {
		rows[y] = rowValue{y: y, v: state.GetTryte(c.XTryte, y, c.Z)}
	}
	sort.Slice(rows[:], func(i, j int) bool { return rows[i].v > rows[j].v })
	for i, r := range rows {
		c.rowOrder[i] = r.y
	}
	c.PossibleValues = sbox.InKernelColumnsBeforeST(int(rows[0].v), int(rows[1].v), int(rows[2].v))
	c.Index = 0
	c.Empty = len(c.PossibleValues) == 0
}

// SetFirstValue resets the box-column to its cheapest value.
func (c *InKernelTryteColumns) SetFirstValue(cache *BackwardInKernelExtensionCache) {
	if c.Empty {
		return
	}
	c.Index = 0
}

// SetNextValue advances to the next possible value, reporting false once
// every value has been visited.
func (c *InKernelTryteColumns) SetNextValue(cache *BackwardInKernelExtensionCache) bool {
	if c.Empty || c.Index >= len(c.PossibleValues)-1 {
		return false
	}
	c.Index++
	return true
}

// setTryteColumn writes the box-column's current chosen value into state.
func (c *InKernelTryteColumns) setTryteColumn(state *algebra.State) {
	value := c.PossibleValues[c.Index]
	for i := 0; i < algebra.Rows; i++ {
		state.SetTryte(c.XTryte, c.rowOrder[i], c.Z, value.Trytes[i])
	}
}

// BackwardInKernelExtensionPreparation decides whether the trail core
// starting at C, whose activity pattern is activeC, can possibly be
// extended backward into A --L--> B --ST--> C with B in the kernel
// (Appendix C.1 of the reference): every active box-column of C must
// have 2 or 3 active trytes, and the resulting lower bound on w(B--ST-->C)
// + wMinRev(A) must not exceed the budget.
type BackwardInKernelExtensionPreparation struct {
	MaxWeightExtension    algebra.Weight
	PartsList             []InKernelTryteColumns
	ToAddToTheCost        []algebra.Weight
	ToSubtractFromTheCost int
	possible              bool
}

// NewBackwardInKernelExtensionPreparation runs the single-tryte-column
// filter and the resulting weight bound, without yet knowing C's concrete
// trytes (that happens in prepareExtension, called from
// NewBackwardInKernelExtensionCache).
func NewBackwardInKernelExtensionPreparation(maxWeightExtension algebra.Weight, activeC algebra.ActiveState) *BackwardInKernelExtensionPreparation {
	p := &BackwardInKernelExtensionPreparation{MaxWeightExtension: maxWeightExtension}

	nrActiveTrytesC := 0
	possibleTrytesAtA := make(map[algebra.TrytePosition]int)
	for z := 0; z < algebra.Slices; z++ {
		for xTryte := 0; xTryte < 3; xTryte++ {
			nrInColumn := 0
			for y := 0; y < algebra.Rows; y++ {
				pos := algebra.TrytePosition{X: xTryte, Y: y, Z: z}
				if !activeC.IsTryteActive(pos) {
					continue
				}
				nrInColumn++
				for tritIndex := 0; tritIndex < 3; tritIndex++ {
					tA := algebra.NewTritPosition(3*xTryte+tritIndex, y, z)
					tA.InvSRSL()
					possibleTrytesAtA[algebra.FromTritPosition(tA)]++
				}
			}
			switch {
			case nrInColumn == 1:
				p.possible = false
				return p
			case nrInColumn > 1:
				p.PartsList = append(p.PartsList, newInKernelTryteColumns(xTryte, z))
			}
			nrActiveTrytesC += nrInColumn
		}
	}

	p.ToSubtractFromTheCost = 2 * (3*nrActiveTrytesC - len(possibleTrytesAtA))
	lowerBound := algebra.NewWeight(uint32(4 * nrActiveTrytesC))
	bound := maxWeightExtension.Add(algebra.NewWeight(uint32(p.ToSubtractFromTheCost)))
	p.possible = lowerBound.LessOrEqual(bound)
	return p
}

// CouldBeExtended reports whether every filter pass kept at least one
// candidate backward in-kernel extension.
func (p *BackwardInKernelExtensionPreparation) CouldBeExtended() bool { return p.possible }

// prepareExtension fills in each box-column's concrete possible values
// from stateC, and the per-position cost lower bound used by
// CostFunctionBackwardInKernelExtension. Called once stateC is known,
// from NewBackwardInKernelExtensionCache.
func (p *BackwardInKernelExtensionPreparation) prepareExtension(stateC algebra.State) {
	for i := range p.PartsList {
		p.PartsList[i].setValues(stateC)
		if p.PartsList[i].Empty {
			p.possible = false
			return
		}
	}

	p.ToAddToTheCost = make([]algebra.Weight, len(p.PartsList)+1)
	for i := len(p.PartsList) - 1; i >= 0; i-- {
		cheapest := p.PartsList[i].PossibleValues[0]
		contribution := cheapest.Weight.Add(algebra.NewWeight(uint32(2 * cheapest.HammingWeight)))
		p.ToAddToTheCost[i] = p.ToAddToTheCost[i+1].Add(contribution)
	}
	p.possible = true
}

// BackwardInKernelExtensionCache tracks the accumulated w(B--ST-->C) and
// Hamming weight of A as box-columns are chosen.
type BackwardInKernelExtensionCache struct {
	WBC            algebra.Weight
	HammingWeightA int
}

// NewBackwardInKernelExtensionCache finishes preparing prep against
// stateC and returns the empty cache.
func NewBackwardInKernelExtensionCache(prep *BackwardInKernelExtensionPreparation, stateC algebra.State) *BackwardInKernelExtensionCache {
	prep.prepareExtension(stateC)
	return &BackwardInKernelExtensionCache{}
}

// Push adds column's contribution to WBC and HammingWeightA.
func (c *BackwardInKernelExtensionCache) Push(column InKernelTryteColumns) {
	value := column.PossibleValues[column.Index]
	c.WBC = c.WBC.Add(value.Weight)
	c.HammingWeightA += value.HammingWeight
}

// Pop removes column's contribution from WBC and HammingWeightA.
func (c *BackwardInKernelExtensionCache) Pop(column InKernelTryteColumns) {
	value := column.PossibleValues[column.Index]
	c.WBC = c.WBC.Sub(value.Weight)
	c.HammingWeightA -= value.HammingWeight
}

// CostFunctionBackwardInKernelExtension lower-bounds the extension's
// total weight using the per-position ToAddToTheCost table, correcting
// for trit positions of A shared between adjacent box-columns via
// ToSubtractFromTheCost (Appendix C.1).
type CostFunctionBackwardInKernelExtension struct {
	MaxWeightExtension    algebra.Weight
	ToAddToTheCost        []algebra.Weight
	ToSubtractFromTheCost int
}

// NewCostFunctionBackwardInKernelExtension builds the cost function from
// a preparation already run through prepareExtension.
func NewCostFunctionBackwardInKernelExtension(prep *BackwardInKernelExtensionPreparation) CostFunctionBackwardInKernelExtension {
	return CostFunctionBackwardInKernelExtension{
		MaxWeightExtension:    prep.MaxWeightExtension,
		ToAddToTheCost:        prep.ToAddToTheCost,
		ToSubtractFromTheCost: prep.ToSubtractFromTheCost,
	}
}

// TooHighCost reports whether the partial choice recorded in cache
// already exceeds MaxWeightExtension. The comparison is rearranged as an
// addition (cost <= max + subtract) rather than a subtraction, since
// ToSubtractFromTheCost can exceed the partial cost before every
// box-column is chosen.
func (f CostFunctionBackwardInKernelExtension) TooHighCost(cache *BackwardInKernelExtensionCache, indCurPart int) bool {
	cost := algebra.NewWeight(uint32(2*cache.HammingWeightA)).
		Add(cache.WBC).
		Add(f.ToAddToTheCost[indCurPart+1])
	bound := f.MaxWeightExtension.Add(algebra.NewWeight(uint32(f.ToSubtractFromTheCost)))
	return !cost.LessOrEqual(bound)
}

// BackwardInKernelExtension is a backward extension (A, B) with B
// constrained to the kernel, extending BackwardExtension with the
// in-kernel-specific way of deriving A and its minimum reverse weight.
type BackwardInKernelExtension struct {
	BackwardExtension
}

// NewBackwardInKernelExtensionFactory returns the newOutput closure
// Iterator.New needs.
func NewBackwardInKernelExtensionFactory() func() *BackwardInKernelExtension {
	return func() *BackwardInKernelExtension { return &BackwardInKernelExtension{} }
}

// Set fills in StateA, StateB, WBC and WMinRevA from a complete choice of
// B's box-columns.
func (o *BackwardInKernelExtension) Set(parts []InKernelTryteColumns, cache *BackwardInKernelExtensionCache, costF CostFunctionBackwardInKernelExtension) {
	var stateB algebra.State
	for i := range parts {
		parts[i].setTryteColumn(&stateB)
	}
	o.StateB = stateB
	o.StateA.SetInvSRSL(stateB)
	if costF.ToSubtractFromTheCost == 0 {
		o.WMinRevA = algebra.NewWeight(uint32(2 * cache.HammingWeightA))
	} else {
		o.WMinRevA = algebra.NewWeight(uint32(2 * o.StateA.GetNrActiveTrytes()))
	}
	o.WBC = cache.WBC
}
