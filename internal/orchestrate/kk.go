package orchestrate

import (
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/extension"
	"github.com/troikacore/trailcore/internal/metrics"
	"github.com/troikacore/trailcore/internal/stateiter"
	"github.com/troikacore/trailcore/internal/trail"
	"github.com/troikacore/trailcore/internal/traversal"
)

// unitKind classifies an ActiveTritAtCAndD by how it was reached while
// growing the joint activity pattern of C and D: on the same box-column
// at C as its parent, on the same column at D as its parent, on the
// same box-column/column as the most recent unit that opened a new
// "sub-list" (see ActiveTritAtCAndD), or itself opening a new sub-list.
type unitKind int

const (
	onSameTryteColumnAtC unitKind = iota
	onSameColumnAtD
	onTheSameTryteColumnAtCAsTheLastStartingTrit
	onTheSameColumnAtDAsTheLastStartingTrit
	startingTrit
)

// ActiveTritAtCAndD is one unit of the KK activity-pattern search: a
// single active trit, tracked simultaneously at its position in C and
// its image at D under SRSL (spec.md §8.4, Appendix B of the
// reference). A unit list is valid only once every unit in it has a
// neighbor sharing its box-column at C and a neighbor sharing its
// column at D; the units that start a fresh run towards satisfying
// that requirement are called "starting trits".
type ActiveTritAtCAndD struct {
	Kind          unitKind
	PC, PD        algebra.TritPosition
	FirstPosition algebra.TritPosition
	xOffset       int
	yOffset       int
}

func newStartingTritAtCAndD() ActiveTritAtCAndD {
	var t ActiveTritAtCAndD
	t.Kind = startingTrit
	t.PC = algebra.TritPosition{X: 0, Y: 0, Z: 0}
	t.PD = t.PC.GetSRSL()
	t.FirstPosition = t.PC
	return t
}

// IncrementOffsets moves to the next (xOffset, yOffset) pair within the
// unit's box-column (at C) or column (at D), reporting false once every
// pair has been tried.
func (t *ActiveTritAtCAndD) IncrementOffsets() bool {
	switch t.Kind {
	case onSameTryteColumnAtC, onTheSameTryteColumnAtCAsTheLastStartingTrit:
		switch {
		case t.xOffset < 2:
			t.xOffset++
		case t.yOffset < 1:
			t.xOffset = 0
			t.yOffset++
		default:
			return false
		}
	case onSameColumnAtD, onTheSameColumnAtDAsTheLastStartingTrit:
		if t.yOffset < 1 {
			t.yOffset++
		} else {
			return false
		}
	}
	t.SetCoordinates()
	return true
}

// SetCoordinates recomputes PC and PD from Kind, FirstPosition and the
// current offsets.
func (t *ActiveTritAtCAndD) SetCoordinates() {
	switch t.Kind {
	case startingTrit:
		t.PC = t.FirstPosition
		t.PD = t.PC.GetSRSL()
	case onSameTryteColumnAtC, onTheSameTryteColumnAtCAsTheLastStartingTrit:
		t.PC = t.FirstPosition
		t.PC.XTranslate(t.xOffset)
		t.PC.YTranslate(t.yOffset)
		t.PD = t.PC.GetSRSL()
	default:
		t.PD = t.FirstPosition
		t.PD.XTranslate(t.xOffset)
		t.PD.YTranslate(t.yOffset)
		t.PC = t.PD.GetInvSRSL()
	}
}

// Less is the lexicographic order [x, y, z] on the trit's position at C.
func (t ActiveTritAtCAndD) Less(other ActiveTritAtCAndD) bool {
	if t.PC.X != other.PC.X {
		return t.PC.X < other.PC.X
	}
	if t.PC.Y != other.PC.Y {
		return t.PC.Y < other.PC.Y
	}
	return t.PC.Z < other.PC.Z
}

// ActiveTritsAtCAndDSet organizes the KK search tree (Algorithm 2,
// Appendix B.1 of the reference): it has no order-based notion of
// canonicality, since duplicate valid (C, D) patterns are instead
// rejected by ActiveStatesCAndDCache against a set of biggest
// representatives already seen.
type ActiveTritsAtCAndDSet struct{}

// FirstChildUnit implements traversal.UnitSet.
func (s ActiveTritsAtCAndDSet) FirstChildUnit(unitList []ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) (ActiveTritAtCAndD, bool) {
	if len(unitList) == 0 {
		return newStartingTritAtCAndD(), true
	}
	child, ok := s.candidateForFirstChildUnit(unitList, cache)
	if !ok {
		return ActiveTritAtCAndD{}, false
	}
	if !s.isAValidUnit(child, unitList, cache) {
		return s.IterateUnit(unitList, child, cache)
	}
	return child, true
}

func (s ActiveTritsAtCAndDSet) candidateForFirstChildUnit(unitList []ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) (ActiveTritAtCAndD, bool) {
	var child ActiveTritAtCAndD
	parent := unitList[len(unitList)-1]
	child.Kind = s.firstChildKind(parent, cache)

	switch child.Kind {
	case onSameTryteColumnAtC:
		child.FirstPosition = parent.PC
		child.FirstPosition.X = 3 * (child.FirstPosition.X / 3)
		child.FirstPosition.YTranslate(1)
	case onTheSameTryteColumnAtCAsTheLastStartingTrit:
		child.FirstPosition = cache.StartingTrits[len(cache.StartingTrits)-1].PC
		child.FirstPosition.X = 3 * (child.FirstPosition.X / 3)
		child.FirstPosition.YTranslate(1)
	case onSameColumnAtD:
		child.FirstPosition = parent.PD
		child.FirstPosition.YTranslate(1)
	case onTheSameColumnAtDAsTheLastStartingTrit:
		child.FirstPosition = cache.StartingTrits[len(cache.StartingTrits)-1].PD
		child.FirstPosition.YTranslate(1)
	case startingTrit:
		pc := cache.StartingTrits[len(cache.StartingTrits)-1].PC
		for {
			if !advanceLexicographically(&pc) {
				return ActiveTritAtCAndD{}, false
			}
			if !cache.StateC.IsTritActiveAt(pc) {
				break
			}
		}
		child.FirstPosition = pc
	}
	child.SetCoordinates()
	return child, true
}

// advanceLexicographically moves pc to the next position in [x, y, z]
// order (z fastest), reporting false once every position has been
// visited.
func advanceLexicographically(pc *algebra.TritPosition) bool {
	switch {
	case pc.Z < algebra.Slices-1:
		pc.Z++
	case pc.Y < algebra.Rows-1:
		pc.Z = 0
		pc.Y++
	case pc.X < algebra.Columns-1:
		pc.Z = 0
		pc.Y = 0
		pc.X++
	default:
		return false
	}
	return true
}

// IterateUnit implements traversal.UnitSet.
func (s ActiveTritsAtCAndDSet) IterateUnit(unitList []ActiveTritAtCAndD, current ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) (ActiveTritAtCAndD, bool) {
	if current.Kind != startingTrit {
		for {
			if !current.IncrementOffsets() {
				return ActiveTritAtCAndD{}, false
			}
			if s.isAValidUnit(current, unitList, cache) {
				break
			}
		}
	} else if len(unitList) == 0 {
		if !current.FirstPosition.SetNextXY() {
			return ActiveTritAtCAndD{}, false
		}
	} else {
		for {
			if !advanceLexicographically(&current.FirstPosition) {
				return ActiveTritAtCAndD{}, false
			}
			if !cache.StateC.IsTritActiveAt(current.FirstPosition) {
				break
			}
		}
	}
	current.SetCoordinates()
	return current, true
}

func (s ActiveTritsAtCAndDSet) isAValidUnit(trit ActiveTritAtCAndD, unitList []ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) bool {
	if len(unitList) == 0 {
		return trit.PC.Z == 0
	}
	if trit.Kind == startingTrit && cache.StateC.IsTritActiveAt(trit.PC) {
		return false
	}
	return !trit.Less(cache.StartingTrits[len(cache.StartingTrits)-1])
}

func (s ActiveTritsAtCAndDSet) firstChildKind(parent ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) unitKind {
	if !cache.hasNeighborAtC(parent) {
		return onSameTryteColumnAtC
	}
	if !cache.hasNeighborAtD(parent) {
		return onSameColumnAtD
	}
	last := cache.StartingTrits[len(cache.StartingTrits)-1]
	if !cache.hasNeighborAtC(last) {
		return onTheSameTryteColumnAtCAsTheLastStartingTrit
	}
	if !cache.hasNeighborAtD(last) {
		return onTheSameColumnAtDAsTheLastStartingTrit
	}
	return startingTrit
}

// IsCanonical implements traversal.UnitSet: every node is kept except a
// complete valid pattern whose biggest representative was already
// produced by an earlier node.
func (s ActiveTritsAtCAndDSet) IsCanonical(unitList []ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) bool {
	if !cache.Valid {
		return true
	}
	return cache.NewValidPattern
}

// ActiveStatesCAndDCache is the incremental cache backing the KK
// search: the active-trit patterns of C and D built so far, the
// neighbor counts that decide validity, and the set of biggest
// representatives of every valid (C, D) pattern already produced
// (spec.md §8.4, Appendix B.2 of the reference).
type ActiveStatesCAndDCache struct {
	StateC, StateD          algebra.ActiveState
	PossibleTrytesA         algebra.ActiveState
	LowestNrActiveTrytesA   int
	NrActiveTrytesC         int
	NrActiveTrytesD         int
	NrTritsOnSameColumnAtD  [algebra.Columns][algebra.Rows][algebra.Slices]int
	NrTritsOnSameTryteColumnAtC [algebra.Columns][algebra.Rows][algebra.Slices]int
	StartingTrits           []ActiveTritAtCAndD
	PatternsC               map[algebra.ActiveState]struct{}
	dummy                   bool
	Valid                   bool
	NewValidPattern         bool
}

// NewActiveStatesCAndDCache returns the initial (empty) KK cache.
func NewActiveStatesCAndDCache() *ActiveStatesCAndDCache {
	return &ActiveStatesCAndDCache{PatternsC: make(map[algebra.ActiveState]struct{})}
}

// PushDummy implements traversal.Cache.
func (c *ActiveStatesCAndDCache) PushDummy() { c.dummy = true }

// Push implements traversal.Cache.
func (c *ActiveStatesCAndDCache) Push(trit ActiveTritAtCAndD) {
	c.dummy = false

	if !c.StateC.IsTheTritInAnActiveTryte(trit.PC) {
		c.NrActiveTrytesC++
	}
	if !c.StateD.IsTheTritInAnActiveTryte(trit.PD) {
		c.NrActiveTrytesD++
	}
	c.StateC.ActivateTritAt(trit.PC)
	c.StateD.ActivateTritAt(trit.PD)

	tryteC := algebra.FromTritPosition(trit.PC)
	activateNecessarily := true
	for tritIndex := 0; tritIndex < 3; tritIndex++ {
		pA := algebra.FromTryteIndex(tryteC, tritIndex)
		pA.InvSRSL()
		if c.PossibleTrytesA.IsTheTritInAnActiveTryte(pA) {
			activateNecessarily = false
			break
		}
	}
	if activateNecessarily {
		c.LowestNrActiveTrytesA++
		for tritIndex := 0; tritIndex < 3; tritIndex++ {
			pA := algebra.FromTryteIndex(tryteC, tritIndex)
			pA.InvSRSL()
			c.PossibleTrytesA.ActivateTritAt(pA)
		}
	}

	for y := 0; y < algebra.Rows; y++ {
		if y != trit.PD.Y {
			c.NrTritsOnSameColumnAtD[trit.PD.X][y][trit.PD.Z]++
		}
	}
	x := 3 * (trit.PC.X / 3)
	for y := 0; y < algebra.Rows; y++ {
		if y != trit.PC.Y {
			for xOffset := 0; xOffset < 3; xOffset++ {
				c.NrTritsOnSameTryteColumnAtC[x+xOffset][y][trit.PC.Z]++
			}
		}
	}
	if trit.Kind == startingTrit {
		c.StartingTrits = append(c.StartingTrits, trit)
	}

	c.Valid = false
	c.NewValidPattern = false
	if c.isAValidPattern(trit) {
		biggest, _ := c.StateC.BiggestRepresentative()
		c.Valid = true
		if _, known := c.PatternsC[biggest]; !known {
			c.PatternsC[biggest] = struct{}{}
			c.NewValidPattern = true
		}
	}
}

// Pop implements traversal.Cache.
func (c *ActiveStatesCAndDCache) Pop(trit ActiveTritAtCAndD) {
	if c.dummy {
		c.dummy = false
		return
	}

	c.StateC.DeactivateTritAt(trit.PC)
	c.StateD.DeactivateTritAt(trit.PD)
	if !c.StateC.IsTheTritInAnActiveTryte(trit.PC) {
		c.NrActiveTrytesC--
	}
	if !c.StateD.IsTheTritInAnActiveTryte(trit.PD) {
		c.NrActiveTrytesD--
	}

	if c.PossibleTrytesA.IsTritActiveAt(trit.PC.GetInvSRSL()) {
		c.LowestNrActiveTrytesA--
		tryteC := algebra.FromTritPosition(trit.PC)
		for tritIndex := 0; tritIndex < 3; tritIndex++ {
			pA := algebra.FromTryteIndex(tryteC, tritIndex)
			pA.InvSRSL()
			c.PossibleTrytesA.DeactivateTritAt(pA)
		}
	}

	for y := 0; y < algebra.Rows; y++ {
		if y != trit.PD.Y {
			c.NrTritsOnSameColumnAtD[trit.PD.X][y][trit.PD.Z]--
		}
	}
	x := 3 * (trit.PC.X / 3)
	for y := 0; y < algebra.Rows; y++ {
		if y != trit.PC.Y {
			for xOffset := 0; xOffset < 3; xOffset++ {
				c.NrTritsOnSameTryteColumnAtC[x+xOffset][y][trit.PC.Z]--
			}
		}
	}
	if trit.Kind == startingTrit {
		c.StartingTrits = c.StartingTrits[:len(c.StartingTrits)-1]
	}
	c.Valid = false
	c.NewValidPattern = false
}

func (c *ActiveStatesCAndDCache) hasNeighborAtC(trit ActiveTritAtCAndD) bool {
	return c.NrTritsOnSameTryteColumnAtC[trit.PC.X][trit.PC.Y][trit.PC.Z] != 0
}

func (c *ActiveStatesCAndDCache) hasNeighborAtD(trit ActiveTritAtCAndD) bool {
	return c.NrTritsOnSameColumnAtD[trit.PD.X][trit.PD.Y][trit.PD.Z] != 0
}

func (c *ActiveStatesCAndDCache) isAValidPattern(last ActiveTritAtCAndD) bool {
	if !c.hasNeighborAtC(last) {
		return false
	}
	if !c.hasNeighborAtD(last) {
		return false
	}
	start := c.StartingTrits[len(c.StartingTrits)-1]
	if !c.hasNeighborAtD(start) {
		return false
	}
	return c.hasNeighborAtC(start)
}

// KKTrailCoreCostFunction lower-bounds the weight alpha=beta=1 cost of
// a 3-round trail core (A, B, C, D) whose C and D activity patterns are
// given by a node of the KK search (spec.md §8.4, Appendix B.2 of the
// reference): twice the sum of the lowest possible number of active
// trytes of A plus the active trytes already committed to C and D.
type KKTrailCoreCostFunction struct{}

// Cost implements traversal.CostFunction.
func (KKTrailCoreCostFunction) Cost(unitList []ActiveTritAtCAndD, cache *ActiveStatesCAndDCache) uint32 {
	return uint32(2 * (cache.LowestNrActiveTrytesA + cache.NrActiveTrytesC + cache.NrActiveTrytesD))
}

// ActiveStatesCAndD is the rendered output of a node of the KK search
// tree: the activity patterns of C and D it has built, their minimum
// weights, and whether the unit list is currently a complete valid
// pattern (as opposed to one still being grown).
type ActiveStatesCAndD struct {
	ActiveC, ActiveD   algebra.ActiveState
	WMinRevC, WMinDirD uint32
	Valid              bool
}

// Set implements traversal.Output.
func (o *ActiveStatesCAndD) Set(unitList []ActiveTritAtCAndD, cache *ActiveStatesCAndDCache, costF KKTrailCoreCostFunction, maxCost uint32) {
	o.ActiveC = cache.StateC
	o.ActiveD = cache.StateD
	o.WMinRevC = uint32(2 * cache.NrActiveTrytesC)
	o.WMinDirD = uint32(2 * cache.NrActiveTrytesD)
	o.Valid = cache.Valid
}

// KKGenerator enumerates 3-round trail cores (A, B, C, D) with both B
// and D in the kernel, up to a total weight bound T3 (spec.md §8.4).
// Unlike KNGenerator/NKGenerator/NNGenerator, it grows the activity
// patterns of C and D jointly from the start, rather than seeding from
// an independently-searched 2-round trail core.
type KKGenerator struct {
	T3      uint32
	Metrics *metrics.Counters
}

// NewKKGenerator builds a KK generator bounding the total weight of a
// 3-round trail core by t3.
func NewKKGenerator(t3 uint32) *KKGenerator {
	return &KKGenerator{T3: t3}
}

// Generate enumerates every 3-round trail core (A, B, C, D) with both B
// and D in the kernel up to weight T3: for each valid joint activity
// pattern of (C, D), every concrete D is tried, C is recovered as
// InvSRSL(D), and the trail core is completed by a backward in-kernel
// extension of C (spec.md §8.4).
func (g *KKGenerator) Generate() []trail.TrailCore {
	unitSet := ActiveTritsAtCAndDSet{}
	cache := NewActiveStatesCAndDCache()
	costF := KKTrailCoreCostFunction{}

	it := traversal.New[
		ActiveTritAtCAndD, *ActiveStatesCAndDCache,
		KKTrailCoreCostFunction, ActiveTritsAtCAndDSet, *ActiveStatesCAndD,
	](unitSet, cache, costF, g.T3, func() *ActiveStatesCAndD { return &ActiveStatesCAndD{} }, true)

	var found []trail.TrailCore
	var visited uint64
	for !it.IsEnd() {
		visited++
		progress("KK.Generate", visited, 1000000)
		g.Metrics.VisitNode("KK.Generate")

		node := it.Value()
		if node.Valid {
			maxWeightExtension := g.T3 - node.WMinDirD
			prep := extension.NewBackwardInKernelExtensionPreparation(algebra.NewWeight(maxWeightExtension), node.ActiveC)
			if prep.CouldBeExtended() {
				statesD := stateiter.NewFromPossibleAndMandatory(node.ActiveD, node.ActiveD)
				for !statesD.IsEnd() {
					stateD := statesD.Value()
					var stateC algebra.State
					stateC.SetInvSRSL(stateD)

					extCache := extension.NewBackwardInKernelExtensionCache(prep, stateC)
					if prep.CouldBeExtended() {
						extCostF := extension.NewCostFunctionBackwardInKernelExtension(prep)
						extIt := extension.New[
							extension.InKernelTryteColumns, *extension.BackwardInKernelExtensionCache,
							extension.CostFunctionBackwardInKernelExtension, *extension.BackwardInKernelExtension,
						](prep.PartsList, extCache, extCostF, algebra.NewWeight(maxWeightExtension),
							extension.NewBackwardInKernelExtensionFactory(), prep.CouldBeExtended(), true)

						for !extIt.IsEnd() {
							ext := extIt.Value()
							core := trail.NewThreeRoundTrailCore(ext.StateA, ext.StateB, stateC, stateD, ext.WMinRevA, ext.WBC, algebra.NewWeight(node.WMinDirD))
							found = append(found, core)
							g.Metrics.FoundTrailCore("KK.Generate")
							extIt.Next()
						}
					}
					statesD.Next()
				}
			}
		}
		it.Next()
	}

	log.Debug().Int("count", len(found)).Msg("KK: 3-round trail cores")
	return found
}
