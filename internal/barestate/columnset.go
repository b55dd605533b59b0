package barestate

import "sort"

// ColumnsSet implements traversal.UnitSet[Column, *Cache]: the order
// relation and admissibility rules over column assignments described in
// spec.md §4.4.
type ColumnsSet struct{}

// FirstChildUnit returns the smallest column that can extend unitList.
func (ColumnsSet) FirstChildUnit(unitList []Column, cache *Cache) (Column, bool) {
	if len(unitList) == 0 {
		return NewColumn(), true
	}
	parent := unitList[len(unitList)-1]
	child := parent

	if parent.Ending {
		child.Rank = 0
		child.Ending = false
		child.Scalar = 1
		for {
			if !child.incrementSupraUnitPosition(unitList) {
				return Column{}, false
			}
			if !checkColumnOverlapping(unitList, &child, cache) {
				break
			}
		}
		return child, true
	}

	child.incrementRank()
	if parent.Rank != 0 {
		child.changeScalar()
	}
	if checkColumnOverlapping(unitList, &child, cache) {
		if parent.parity() != 0 {
			child.incrementRank()
			if checkColumnOverlapping(unitList, &child, cache) {
				return Column{}, false
			}
		} else {
			return Column{}, false
		}
	}
	return child, true
}

// IterateUnit advances current to the next admissible column in order,
// per spec.md §4.4's "continue same supra-unit" / "ending column" rules.
func (ColumnsSet) IterateUnit(unitList []Column, current Column, cache *Cache) (Column, bool) {
	switch {
	case current.Rank == 0:
		if !current.incrementIndexValue() {
			if current.Entangled == ToIterate {
				cache.iterateEntanglement(unitList, &current)
			} else {
				for {
					if !current.incrementSupraUnitPosition(unitList) {
						return Column{}, false
					}
					if !checkColumnOverlapping(unitList, &current, cache) {
						break
					}
				}
			}
		}
	case current.affectedBy() == 0:
		if !current.incrementIndexValue() {
			if current.Entangled == ToIterate {
				cache.iterateEntanglement(unitList, &current)
			} else {
				return Column{}, false
			}
		}
	default:
		if !current.incrementIndexValue() {
			if !current.Ending {
				current.IndexValue = 0
				current.Ending = true
				current.changeScalar()
			} else if current.Entangled == ToIterate {
				cache.iterateEntanglement(unitList, &current)
				current.Ending = false
				current.changeScalar()
			} else {
				current.Ending = false
				current.incrementRank()
				current.changeScalar()
				if checkColumnOverlapping(unitList, &current, cache) {
					return Column{}, false
				}
			}
		}
	}
	return current, true
}

// IsCanonical checks z-canonicity of unitList: no z-translate of the
// completed supra-unit structure, sorted, may precede it lexicographically
// (spec.md §4.6).
func (ColumnsSet) IsCanonical(unitList []Column, cache *Cache) bool {
	if unitList[0].DSupraUnit != 0 || unitList[0].ZSupraUnit > 8 {
		return false
	}
	if !unitList[len(unitList)-1].Ending {
		return true
	}
	if len(cache.startSupraUnit) == 0 {
		return true
	}
	for _, ind := range cache.startSupraUnit[1:] {
		dz := unitList[ind].zSupraUnitCanonical() - unitList[ind].ZSupraUnit

		translated := make([]Column, len(unitList))
		copy(translated, unitList)
		for i := range translated {
			translated[i].zTranslateSupraUnit(dz)
		}
		sort.Slice(translated, func(i, j int) bool { return translated[i].Less(translated[j]) })

		for idx := range unitList {
			if translated[idx].Less(unitList[idx]) {
				return false
			}
			if unitList[idx].Less(translated[idx]) {
				break
			}
		}
	}
	return true
}

// checkColumnOverlapping reports whether current overlaps a column
// already in unitList at an unauthorized position, setting current's
// Entangled classification when the overlap is authorized.
func checkColumnOverlapping(unitList []Column, current *Column, cache *Cache) bool {
	colOfSameXZ := cache.supraUnitIndexes[current.X][current.Z]
	if colOfSameXZ == -1 {
		current.Entangled = NoEntanglement
		return false
	}

	if current.affectedBy() != 0 {
		if cache.ThetaEffect.IsTritActive(current.X, current.Z) {
			return true
		}
		if !cache.StateB.IsTritActive(current.X, 0, current.Z) {
			return true
		}
		if current.Rank == 0 {
			current.Entangled = ToIterate
		} else if cache.lastSupraUnitInTheComponentOf(colOfSameXZ) {
			current.Entangled = NoNeedToIterate
		} else {
			current.Entangled = ToIterate
		}
	} else {
		if cache.ParityPlane.IsTritActive(current.X, current.Z) {
			return true
		}
		if cache.lastSupraUnitInTheComponentOf(colOfSameXZ) {
			current.Entangled = NoNeedToIterate
		} else {
			current.Entangled = ToIterate
		}
	}
	return false
}
