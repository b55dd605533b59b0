// Package trail stores, validates, canonicalizes, and serializes trail
// cores: the difference sequences a1 --Lambda--> b1 --ST--> a2
// --Lambda--> b2 ... that the bare-state, mixed-state, and extension
// searches ultimately produce (spec.md §6).
package trail

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/sbox"
)

// TrailCore stores a k-round trail core's full difference sequence and
// weight breakdown (spec.md §6.1): Differences holds
// 2*(NrRounds-1) states, alternating a_i, b_i; Weights[i] is the
// S-box transition weight b_i --ST--> a_{i+1}.
type TrailCore struct {
	NrRounds    uint32
	Differences []algebra.State
	WMinRev     algebra.Weight
	WMinDir     algebra.Weight
	Weights     []algebra.Weight
	Weight      algebra.Weight
}

// New builds a trail core from an explicit difference sequence; len(differences)
// must be 2*(nrRounds-1) and len(weights) must be nrRounds-2.
func New(differences []algebra.State, wMinRev, wMinDir algebra.Weight, weights []algebra.Weight) (TrailCore, error) {
	if len(differences)%2 != 0 {
		return TrailCore{}, errors.Newf("trail core must have an even number of differences, got %d", len(differences))
	}
	nrRounds := uint32(len(differences)/2 + 1)
	if uint32(len(weights)) != nrRounds-2 {
		return TrailCore{}, errors.Newf("trail core of %d rounds needs %d transition weights, got %d", nrRounds, nrRounds-2, len(weights))
	}
	t := TrailCore{NrRounds: nrRounds, Differences: differences, WMinRev: wMinRev, WMinDir: wMinDir, Weights: weights}
	t.Weight = wMinRev.Add(wMinDir)
	for _, w := range weights {
		t.Weight = t.Weight.Add(w)
	}
	return t, nil
}

// NewTwoRoundTrailCore builds the 2-round trail core A --Lambda--> B.
func NewTwoRoundTrailCore(stateA, stateB algebra.State, wMinRevA, wMinDirB algebra.Weight) TrailCore {
	return TrailCore{
		NrRounds:    2,
		Differences: []algebra.State{stateA, stateB},
		WMinRev:     wMinRevA,
		WMinDir:     wMinDirB,
		Weight:      wMinRevA.Add(wMinDirB),
	}
}

// NewThreeRoundTrailCore builds the 3-round trail core
// A --Lambda--> B --ST--> C --Lambda--> D.
func NewThreeRoundTrailCore(stateA, stateB, stateC, stateD algebra.State, wMinRevA, wBC, wMinDirD algebra.Weight) TrailCore {
	return TrailCore{
		NrRounds:    3,
		Differences: []algebra.State{stateA, stateB, stateC, stateD},
		WMinRev:     wMinRevA,
		WMinDir:     wMinDirD,
		Weights:     []algebra.Weight{wBC},
		Weight:      wMinRevA.Add(wBC).Add(wMinDirD),
	}
}

// ExtendForward appends one round to the end of the trail core: C
// (compatible through ST with the trail's last B) and D = Lambda(C).
func (t *TrailCore) ExtendForward(stateC, stateD algebra.State, wBC, wMinDirD algebra.Weight) error {
	if t.NrRounds == 0 {
		return errors.New("cannot extend forward an empty trail core")
	}
	t.NrRounds++
	t.Differences = append(t.Differences, stateC, stateD)
	t.Weights = append(t.Weights, wBC)
	t.Weight = t.Weight.Sub(t.WMinDir).Add(wBC).Add(wMinDirD)
	t.WMinDir = wMinDirD
	return nil
}

// ExtendBackward prepends one round to the front of the trail core: a
// new A0 and B0 = Lambda(A0) such that B0 is compatible through ST with
// the trail's current first A.
func (t *TrailCore) ExtendBackward(stateA, stateB algebra.State, wB0A, wMinRevA0 algebra.Weight) error {
	if t.NrRounds == 0 {
		return errors.New("cannot extend backward an empty trail core")
	}
	t.NrRounds++
	t.Differences = append([]algebra.State{stateA, stateB}, t.Differences...)
	t.Weights = append([]algebra.Weight{wB0A}, t.Weights...)
	t.Weight = wMinRevA0.Add(wB0A).Sub(t.WMinRev).Add(t.Weight)
	t.WMinRev = wMinRevA0
	return nil
}

// Check verifies a trail core's internal consistency: that the weights
// recorded match the states, and that consecutive states are
// compatible through Lambda and, between rounds, through the S-box
// (spec.md §6.2).
func (t *TrailCore) Check() error {
	if uint32(len(t.Differences)) != 2*(t.NrRounds-1) {
		return errors.Newf("trail core has %d differences, expected %d for %d rounds", len(t.Differences), 2*(t.NrRounds-1), t.NrRounds)
	}
	if t.NrRounds >= 2 && uint32(len(t.Weights)) != t.NrRounds-2 {
		return errors.Newf("trail core has %d transition weights, expected %d", len(t.Weights), t.NrRounds-2)
	}
	if t.NrRounds < 2 {
		return nil
	}

	first := t.Differences[0]
	if want := algebra.NewWeight(uint32(2 * first.GetNrActiveTrytes())); !t.WMinRev.Equal(want) {
		return errors.Newf("minimum reverse weight is %s, should be %s", t.WMinRev, want)
	}
	last := t.Differences[len(t.Differences)-1]
	if want := algebra.NewWeight(uint32(2 * last.GetNrActiveTrytes())); !t.WMinDir.Equal(want) {
		return errors.Newf("minimum weight is %s, should be %s", t.WMinDir, want)
	}

	for i := uint32(0); i < t.NrRounds-1; i++ {
		afterL := t.Differences[2*i]
		afterL.Lambda()
		if !afterL.Equal(t.Differences[2*i+1]) {
			return errors.Newf("difference at index %d is incompatible through Lambda with the difference at index %d", 2*i, 2*i+1)
		}
	}

	sum := t.WMinRev.Add(t.WMinDir)
	for i := uint32(0); i < t.NrRounds-2; i++ {
		b, a := t.Differences[2*i+1], t.Differences[2*(i+1)]
		transitionWeight, compatible := sbox.AllAreStatesCompatible(&b, &a)
		if !compatible {
			return errors.Newf("difference at index %d is incompatible through the S-box with the difference at index %d", 2*i+1, 2*(i+1))
		}
		if !transitionWeight.Equal(t.Weights[i]) {
			return errors.Newf("transition weight at index %d is %s, should be %s", i, t.Weights[i], transitionWeight)
		}
		sum = sum.Add(transitionWeight)
	}
	if !sum.Equal(t.Weight) {
		return errors.Newf("total weight is %s, should be %s", t.Weight, sum)
	}
	return nil
}

// Less is an arbitrary but fixed order relation over trail cores,
// comparing the a_i states round by round; used to pick a canonical
// z-translation.
func (t TrailCore) Less(other TrailCore) bool {
	n := t.NrRounds - 1
	if other.NrRounds-1 < n {
		n = other.NrRounds - 1
	}
	for i := uint32(0); i < n; i++ {
		if t.Differences[2*i].Less(other.Differences[2*i]) {
			return true
		}
		if other.Differences[2*i].Less(t.Differences[2*i]) {
			return false
		}
	}
	return false
}

// Translate shifts every state of the trail core along the z-axis by
// dz.
func (t *TrailCore) Translate(dz int) {
	for i := range t.Differences {
		t.Differences[i].Translate(dz)
	}
}

// MakeCanonical replaces the trail core by the smallest of its 27
// z-translates, under Less.
func (t *TrailCore) MakeCanonical() {
	dzMin := 0
	min := t.cloneDifferences()
	for dz := 1; dz < algebra.Slices; dz++ {
		candidate := t.cloneDifferences()
		candidate.Translate(dz)
		if candidate.Less(min) {
			min = candidate
			dzMin = dz
		}
	}
	t.Translate(dzMin)
}

// cloneDifferences returns a copy of t whose Differences slice has its
// own backing array, so that Translate on the copy leaves t unmodified.
func (t *TrailCore) cloneDifferences() TrailCore {
	clone := *t
	clone.Differences = append([]algebra.State(nil), t.Differences...)
	return clone
}

func (t TrailCore) String() string {
	s := fmt.Sprintf("A %d-round trail core of weight %s\n\na0 - weight: %s%v\n", t.NrRounds, t.Weight, t.WMinRev, t.Differences[0])
	for i := uint32(1); i < t.NrRounds-1; i++ {
		s += fmt.Sprintf("w(a%d --ST--> b%d) = %s\na%d%v\nb%d%v\n",
			i, i, t.Weights[i-1], i, t.Differences[2*i-1], i, t.Differences[2*i])
	}
	s += fmt.Sprintf("b%d - weight: %s%v\n", t.NrRounds-1, t.WMinDir, t.Differences[len(t.Differences)-1])
	return s
}
