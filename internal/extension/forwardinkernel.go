package extension

import (
	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/stateiter"
)

// ForwardInKernelExtensionPreparation decides whether a trail core ending
// at B, whose activity pattern is activeB, can possibly be extended into
// B --ST--> C --Lambda--> D with D in the kernel, and if so narrows the
// candidate D states to a possible/mandatory activity pattern before any
// concrete state is formed (spec.md §7.2, Appendix C.3 of the reference).
type ForwardInKernelExtensionPreparation struct {
	MaxWeightExtension    algebra.Weight
	PosActiveTrytesC      []algebra.TrytePosition
	PossibleActiveTritsAtC algebra.ActiveState
	MandatoryActiveTritsAtC algebra.ActiveState
	PossibleActiveTritsAtD algebra.ActiveState
	MandatoryActiveTritsAtD algebra.ActiveState
	extensionPossible      bool
}

// NewForwardInKernelExtensionPreparation runs both filter passes and
// reports the result via CouldBeExtended.
func NewForwardInKernelExtensionPreparation(maxWeightExtension algebra.Weight, activeB algebra.ActiveState) *ForwardInKernelExtensionPreparation {
	p := &ForwardInKernelExtensionPreparation{MaxWeightExtension: maxWeightExtension, extensionPossible: true}

	for z := 0; z < algebra.Slices; z++ {
		for xTryte := 0; xTryte < 3; xTryte++ {
			for y := 0; y < algebra.Rows; y++ {
				pos := algebra.TrytePosition{X: xTryte, Y: y, Z: z}
				if activeB.IsTryteActive(pos) {
					p.PosActiveTrytesC = append(p.PosActiveTrytesC, pos)
				}
			}
		}
	}

	p.initializePossibleActiveTritsAtCAndD()
	if p.extensionPossible {
		p.initializeMandatoryActiveTritsAtCAndD(activeB)
		minWeightExtension := algebra.NewWeight(uint32(2 * (len(p.PosActiveTrytesC) + p.MandatoryActiveTritsAtC.GetNrActiveTrytes())))
		if !minWeightExtension.LessOrEqual(maxWeightExtension) {
			p.extensionPossible = false
		}
	}
	return p
}

// CouldBeExtended reports whether some extension survived both filter
// passes and the minimum-weight check.
func (p *ForwardInKernelExtensionPreparation) CouldBeExtended() bool { return p.extensionPossible }

func (p *ForwardInKernelExtensionPreparation) initializePossibleActiveTritsAtCAndD() {
	for _, pos := range p.PosActiveTrytesC {
		for xOffset := 0; xOffset < 3; xOffset++ {
			t := algebra.NewTritPosition(3*pos.X+xOffset, pos.Y, pos.Z)
			p.PossibleActiveTritsAtC.ActivateTritAt(t)
			p.PossibleActiveTritsAtD.ActivateTritAt(t.GetSRSL())
		}
	}

	// A column of D with a single possible active trit cannot be in the
	// kernel, so neither that trit nor its antecedent at C can be active.
	for z := 0; z < algebra.Slices; z++ {
		for x := 0; x < algebra.Columns; x++ {
			isYiActive := p.PossibleActiveTritsAtD.GetIsYiActive(x, z)
			for y := 0; y < algebra.Rows; y++ {
				if isYiActive != 1<<uint(y) {
					continue
				}
				t := algebra.NewTritPosition(x, y, z)
				p.PossibleActiveTritsAtD.DeactivateTritAt(t)
				t.InvSRSL()
				p.PossibleActiveTritsAtC.DeactivateTritAt(t)
				if !p.PossibleActiveTritsAtC.IsTryteActive(algebra.FromTritPosition(t)) {
					p.extensionPossible = false
					return
				}
			}
		}
	}
}

func (p *ForwardInKernelExtensionPreparation) initializeMandatoryActiveTritsAtCAndD(activeB algebra.ActiveState) {
	for _, pos := range p.PosActiveTrytesC {
		// Property of the S-box: a tryte of B with a single active trit at
		// index 0 forces C's trit at index 1 active; at index 2 forces C's
		// trit at index 2 active.
		activeTryteAtB := activeB.GetActiveTryte(pos.X, pos.Y, pos.Z)
		if activeTryteAtB == 0x1 || activeTryteAtB == 0x4 {
			var t algebra.TritPosition
			if activeTryteAtB == 0x4 {
				t = algebra.NewTritPosition(3*pos.X+2, pos.Y, pos.Z)
			} else {
				t = algebra.NewTritPosition(3*pos.X+1, pos.Y, pos.Z)
			}
			if !p.PossibleActiveTritsAtC.IsTritActiveAt(t) {
				p.extensionPossible = false
				return
			}
			p.MandatoryActiveTritsAtC.ActivateTritAt(t)
			t.SRSL()
			p.MandatoryActiveTritsAtD.ActivateTritAt(t)
			p.addIfNeededATwoTritsMandatoryColumnAtD(t.X, t.Z)
		}

		// A tryte of C with a single possible active trit is mandatory.
		activeTryteAtC := p.PossibleActiveTritsAtC.GetActiveTryte(pos.X, pos.Y, pos.Z)
		for tritIndex := 0; tritIndex < 3; tritIndex++ {
			if activeTryteAtC != 1<<uint(tritIndex) {
				continue
			}
			t := algebra.NewTritPosition(3*pos.X+tritIndex, pos.Y, pos.Z)
			p.MandatoryActiveTritsAtC.ActivateTritAt(t)
			t.SRSL()
			p.MandatoryActiveTritsAtD.ActivateTritAt(t)
			p.addIfNeededATwoTritsMandatoryColumnAtD(t.X, t.Z)
		}
	}
}

func (p *ForwardInKernelExtensionPreparation) addIfNeededATwoTritsMandatoryColumnAtD(x, z int) {
	if p.PossibleActiveTritsAtD.GetIsYiActive(x, z) == 0x7 {
		return
	}
	for y := 0; y < algebra.Rows; y++ {
		t := algebra.NewTritPosition(x, y, z)
		if !p.PossibleActiveTritsAtD.IsTritActiveAt(t) {
			continue
		}
		p.MandatoryActiveTritsAtD.ActivateTritAt(t)
		t.InvSRSL()
		p.MandatoryActiveTritsAtC.ActivateTritAt(t)
	}
}

// ForwardInKernelExtensionIterator enumerates every in-kernel forward
// extension of a trail core ending at stateB, in the order the state
// iterator forms the D candidates, by iterating the concrete in-kernel states respecting prep's
// possible/mandatory patterns and keeping only the ST-compatible,
// in-budget ones.
type ForwardInKernelExtensionIterator struct {
	maxWeightExtension algebra.Weight
	extension          *ForwardExtension
	possibleStatesD    *stateiter.Iterator
	end                bool
}

// NewForwardInKernelExtensionIterator builds the iterator and advances it
// to its first valid extension, if any.
func NewForwardInKernelExtensionIterator(prep *ForwardInKernelExtensionPreparation, stateB algebra.State) *ForwardInKernelExtensionIterator {
	it := &ForwardInKernelExtensionIterator{
		maxWeightExtension: prep.MaxWeightExtension,
		extension:          &ForwardExtension{StateB: stateB, PosForSTCompatibility: prep.PosActiveTrytesC},
		possibleStatesD:    stateiter.NewFromPossibleAndMandatory(prep.PossibleActiveTritsAtD, prep.MandatoryActiveTritsAtD),
	}
	for !it.possibleStatesD.IsEnd() {
		it.extension.SetStateCAndDFromStateD(it.possibleStatesD.Value())
		if it.extension.IsValidAndBelowWeight(it.maxWeightExtension) {
			return it
		}
		it.possibleStatesD.Next()
	}
	it.end = true
	return it
}

// IsEnd reports whether every in-kernel forward extension has been
// visited.
func (it *ForwardInKernelExtensionIterator) IsEnd() bool { return it.end }

// Value returns the current extension.
func (it *ForwardInKernelExtensionIterator) Value() *ForwardExtension { return it.extension }

// Next advances to the next valid in-kernel forward extension.
func (it *ForwardInKernelExtensionIterator) Next() {
	if it.end {
		return
	}
	for {
		it.possibleStatesD.Next()
		if it.possibleStatesD.IsEnd() {
			it.end = true
			return
		}
		it.extension.SetStateCAndDFromStateD(it.possibleStatesD.Value())
		if it.extension.IsValidAndBelowWeight(it.maxWeightExtension) {
			return
		}
	}
}
