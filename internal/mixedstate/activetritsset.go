package mixedstate

// kernelAware is the only piece of cache state ActiveTritsSet's order
// relation and canonicality check need; both ActiveTrailCoreCache and
// MixedTrailCoreCache satisfy it (the latter by promotion), which is
// what lets one ActiveTritsSet type serve both the K-mode and N-mode
// searches instead of duplicating the reference's single class twice.
type kernelAware interface {
	IsKernel() bool
}

// ActiveTritsSet defines the order relation among ActiveTrits used to
// complete a mixed state: the first available position is tried before
// later ones, and within a column isYiActive values are tried in the
// order 0x3, 0x5, 0x6 (two rows active) before 0x2, 0x4 (one row
// active).
type ActiveTritsSet[C kernelAware] struct {
	// FirstActiveTritsAllowed holds, for each column x+9*z, the first
	// isYiActive value getFirstChildUnit may use there; 0 means the
	// column may not receive any further active trit.
	FirstActiveTritsAllowed []uint8
}

// NewInKernelActiveTritsSet returns the order relation for the purely
// in-kernel search, where every column may receive any activity
// pattern.
func NewInKernelActiveTritsSet() ActiveTritsSet[*ActiveTrailCoreCache] {
	allowed := make([]uint8, columnsTimesSlices)
	for i := range allowed {
		allowed[i] = 0x3
	}
	return ActiveTritsSet[*ActiveTrailCoreCache]{FirstActiveTritsAllowed: allowed}
}

// NewOutKernelActiveTritsSet returns the order relation for an
// out-of-kernel completion search, constrained by the
// firstActiveTritsAllowed mask a bare state computed.
func NewOutKernelActiveTritsSet(firstActiveTritsAllowed []uint8) ActiveTritsSet[*MixedTrailCoreCache] {
	return ActiveTritsSet[*MixedTrailCoreCache]{FirstActiveTritsAllowed: firstActiveTritsAllowed}
}

const columnsTimesSlices = 9 * 27

// FirstChildUnit implements traversal.UnitSet.
func (s ActiveTritsSet[C]) FirstChildUnit(unitList []ActiveTrits, cache C) (ActiveTrits, bool) {
	var child ActiveTrits

	if len(unitList) == 0 {
		child.X, child.Z = 0, 0
		child.IsYiActive = s.FirstActiveTritsAllowed[child.XPlus9Z()]
		for child.IsYiActive == 0 {
			if !child.IncrementCoordinates(child, false) {
				return ActiveTrits{}, false
			}
			child.IsYiActive = s.FirstActiveTritsAllowed[child.XPlus9Z()]
		}
		return child, true
	}

	parent := unitList[len(unitList)-1]
	child.X, child.Z = parent.X, parent.Z
	if (parent.IsYiActive>>2)&0x1 == 0 {
		child.IsYiActive = 0x4
		return child, true
	}
	for {
		if !child.IncrementCoordinates(unitList[0], cache.IsKernel()) {
			return ActiveTrits{}, false
		}
		child.IsYiActive = s.FirstActiveTritsAllowed[child.XPlus9Z()]
		if child.IsYiActive != 0 {
			break
		}
	}
	return child, true
}

// IterateUnit implements traversal.UnitSet.
func (s ActiveTritsSet[C]) IterateUnit(unitList []ActiveTrits, current ActiveTrits, cache C) (ActiveTrits, bool) {
	switch current.IsYiActive {
	case 0x3:
		current.IsYiActive = 0x5
	case 0x5:
		current.IsYiActive = 0x6
	case 0x2:
		current.IsYiActive = 0x4
	default:
		for {
			if !current.IncrementCoordinates(unitList[0], cache.IsKernel()) {
				return ActiveTrits{}, false
			}
			current.IsYiActive = s.FirstActiveTritsAllowed[current.XPlus9Z()]
			if current.IsYiActive != 0 {
				break
			}
		}
	}
	return current, true
}

// IsCanonical implements traversal.UnitSet: for an out-of-kernel search
// every node is canonical (the bare-state search already fixed
// canonicality); for the in-kernel search, a unit list is canonical
// only if no z-translation of it compares smaller.
func (s ActiveTritsSet[C]) IsCanonical(unitList []ActiveTrits, cache C) bool {
	if !cache.IsKernel() {
		return true
	}
	if unitList[0].Z != 0 {
		return false
	}

	lastZ := 0
outer:
	for i := range unitList {
		z := unitList[i].Z
		if z == 0 || z <= lastZ {
			continue
		}
		lastZ = z

		translated := make([]ActiveTrits, 0, len(unitList))
		for j := i; j < len(unitList); j++ {
			t := unitList[j]
			t.Z -= z
			translated = append(translated, t)
		}
		for j := 0; j < i; j++ {
			t := unitList[j]
			t.Z = t.Z - z + columnsSlices
			translated = append(translated, t)
		}

		zPeriodic := true
		for idxCmp := 0; idxCmp < len(unitList); idxCmp++ {
			switch compare(translated[idxCmp], unitList[idxCmp]) {
			case 1:
				return false
			case 2:
				continue outer
			}
		}
		if zPeriodic {
			break
		}
	}
	return true
}

const columnsSlices = 27

func compare(first, second ActiveTrits) int {
	if first.Z < second.Z {
		return 1
	}
	if first.Z == second.Z {
		if first.X < second.X {
			return 1
		}
		if first.X == second.X {
			if first.IsYiActive < second.IsYiActive {
				return 1
			}
			if first.IsYiActive == second.IsYiActive {
				return 0
			}
		}
	}
	return 2
}
