// Package stateiter forms, from a mixed state of Troika, every concrete
// Troika state respecting given constraints (zero column parity,
// mandatory-active/mandatory-passive trits, a fixed in-kernel skeleton),
// by choosing a value for each column independently and then taking the
// product over all columns (spec.md §4.5's column-enumerated state
// iterator).
package stateiter

import "github.com/troikacore/trailcore/internal/algebra"

// inKernelColumnValues lists all 9 column values of zero parity; a value
// and its scalar multiple both appear.
var inKernelColumnValues = [9][3]int{
	{0, 0, 0}, {1, 2, 0}, {2, 1, 0},
	{1, 0, 2}, {2, 0, 1}, {0, 1, 2},
	{0, 2, 1}, {1, 1, 1}, {2, 2, 2},
}

// possibleColumnValues[parity][activityMask] lists every column value
// (3 trits) whose ternary sum is parity and whose per-row activity
// matches activityMask (bit y set iff row y is active).
var possibleColumnValues [3][8][][3]int

func init() {
	for t0 := 0; t0 < 3; t0++ {
		for t1 := 0; t1 < 3; t1++ {
			for t2 := 0; t2 < 3; t2++ {
				parity := (t0 + t1 + t2) % 3
				value := [3]int{t0, t1, t2}
				var mask int
				for y, v := range value {
					if v != 0 {
						mask |= 1 << uint(y)
					}
				}
				possibleColumnValues[parity][mask] = append(possibleColumnValues[parity][mask], value)
			}
		}
	}
}

// Columns chooses, from a list of admissible values, the value of one
// column of a Troika state.
type Columns struct {
	X, Z                    int
	IsAffected              bool
	Parity                  uint
	IndexOutKernelComponent int
	ColumnValues            [][3]int
	IndexValue              int
}

// NewColumns builds a column descriptor at (x, z); ColumnValues must be
// populated afterwards via SetValues/AddValues.
func NewColumns(x, z int, affected bool, parity uint, componentIndex int) Columns {
	return Columns{X: x, Z: z, IsAffected: affected, Parity: parity, IndexOutKernelComponent: componentIndex}
}

// SetValues replaces the column's admissible values.
func (c *Columns) SetValues(values [][3]int) { c.ColumnValues = values }

// AddValues appends one admissible value.
func (c *Columns) AddValues(value [3]int) { c.ColumnValues = append(c.ColumnValues, value) }

// Next advances to the column's next admissible value, reporting false
// once every value has been visited.
func (c *Columns) Next() bool {
	if c.IndexValue == len(c.ColumnValues)-1 {
		return false
	}
	c.IndexValue++
	return true
}

// Trit returns the value (0, 1 or 2) of row y of the current column
// value.
func (c *Columns) Trit(y int) int { return c.ColumnValues[c.IndexValue][y] }

// Iterator enumerates every Troika state obtainable by independently
// choosing a value for each column of ColumnsList and multiplying any
// out-kernel component by 2 according to MultiplyOutKernelComponent's
// bitmask.
type Iterator struct {
	ColumnsList                []Columns
	indexColumn                int
	State                      algebra.State
	End                        bool
	NrOutKernelComponents      int
	MultiplyOutKernelComponent uint
}

// NewFromActiveInKernel forms every in-kernel state whose columns have 0,
//2 or 3 active trits, compatible with the (already in-kernel) activity
// pattern activeInKernel: every active column may independently take any
// zero-parity value matching its activity mask.
func NewFromActiveInKernel(activeInKernel algebra.ActiveState) *Iterator {
	it := &Iterator{}
	for z := 0; z < algebra.Slices; z++ {
		for x := 0; x < algebra.Columns; x++ {
			mask := activeInKernel.GetIsYiActive(x, z)
			if mask == 0 {
				continue
			}
			col := NewColumns(x, z, false, 0, -1)
			col.SetValues(possibleColumnValues[0][mask])
			it.ColumnsList = append(it.ColumnsList, col)
		}
	}
	it.finishInit()
	return it
}

// NewFromPossibleAndMandatory forms every in-kernel state whose active
// columns respect possibleActiveTrits (trits that may be active) and
// mandatoryActiveTrits (trits that must be active), used by the forward
// in-kernel extension.
func NewFromPossibleAndMandatory(possibleActiveTrits, mandatoryActiveTrits algebra.ActiveState) *Iterator {
	it := &Iterator{}
	for z := 0; z < algebra.Slices; z++ {
		for x := 0; x < algebra.Columns; x++ {
			if !possibleActiveTrits.IsColumnActive(x, z) {
				continue
			}
			col := NewColumns(x, z, false, 0, -1)
			for _, candidate := range inKernelColumnValues {
				valid := true
				for y := 0; y < algebra.Rows; y++ {
					if candidate[y] != 0 {
						if !possibleActiveTrits.IsTritActive(x, y, z) {
							valid = false
						}
					} else if mandatoryActiveTrits.IsTritActive(x, y, z) {
						valid = false
					}
				}
				if valid {
					col.AddValues(candidate)
				}
			}
			it.ColumnsList = append(it.ColumnsList, col)
		}
	}
	it.finishInit()
	return it
}

// NewFromInKernelColumns forms every in-kernel state compatible with the
// fixed skeleton inKernelColumns, whose per-column activity is read from
// activeB.
func NewFromInKernelColumns(inKernelColumns []Columns, activeB algebra.ActiveState) *Iterator {
	it := &Iterator{}
	for _, col := range inKernelColumns {
		mask := activeB.GetIsYiActive(col.X, col.Z)
		col.SetValues(possibleColumnValues[0][mask])
		it.ColumnsList = append(it.ColumnsList, col)
	}
	it.finishInit()
	return it
}

// NewFromMixedState forms every out-kernel-compatible state: the fixed
// in-kernel skeleton inKernelColumns plus the outKernelComponentColumns of
// a parity-bare component structure, whose unaffected columns are filled
// in from activeB and whose nrComponents components may each be
// multiplied by 2.
func NewFromMixedState(inKernelColumns, outKernelComponentColumns []Columns, nrComponents int, activeB algebra.ActiveState) *Iterator {
	it := &Iterator{NrOutKernelComponents: nrComponents}
	for _, col := range inKernelColumns {
		mask := activeB.GetIsYiActive(col.X, col.Z)
		col.SetValues(possibleColumnValues[0][mask])
		it.ColumnsList = append(it.ColumnsList, col)
	}
	for _, col := range outKernelComponentColumns {
		if !col.IsAffected {
			mask := activeB.GetIsYiActive(col.X, col.Z)
			col.SetValues(possibleColumnValues[col.Parity][mask])
		}
		it.ColumnsList = append(it.ColumnsList, col)
	}
	it.finishInit()
	return it
}

func (it *Iterator) finishInit() {
	if len(it.ColumnsList) == 0 {
		it.End = true
		return
	}
	it.End = false
	it.first()
}

// IsEnd reports whether the iterator has exhausted every combination.
func (it *Iterator) IsEnd() bool { return it.End }

func (it *Iterator) first() {
	for i := range it.ColumnsList {
		it.ColumnsList[i].IndexValue = 0
	}
	it.indexColumn = len(it.ColumnsList) - 1
}

// Next advances to the next combination of column values.
func (it *Iterator) Next() {
	if it.End {
		return
	}
	if it.NrOutKernelComponents > 0 {
		if it.MultiplyOutKernelComponent < uint(1<<uint(it.NrOutKernelComponents))-1 {
			it.MultiplyOutKernelComponent++
			return
		}
		it.MultiplyOutKernelComponent = 0
	}
	for {
		if it.toSibling() {
			break
		}
		if !it.toParent() {
			it.End = true
			return
		}
	}
	for it.toChild() {
	}
}

func (it *Iterator) toChild() bool {
	if it.indexColumn == len(it.ColumnsList)-1 {
		return false
	}
	it.indexColumn++
	it.ColumnsList[it.indexColumn].IndexValue = 0
	return true
}

func (it *Iterator) toSibling() bool { return it.ColumnsList[it.indexColumn].Next() }

func (it *Iterator) toParent() bool {
	if it.indexColumn == 0 {
		return false
	}
	it.indexColumn--
	return true
}

// Value materializes the current combination into a Troika state.
func (it *Iterator) Value() algebra.State {
	var s algebra.State
	for _, col := range it.ColumnsList {
		for y := 0; y < algebra.Rows; y++ {
			v := col.Trit(y)
			if col.IndexOutKernelComponent >= 0 && it.MultiplyOutKernelComponent&(1<<uint(col.IndexOutKernelComponent)) != 0 {
				v = (2 * v) % 3
			}
			s.SetTritValue(v, col.X, y, col.Z)
		}
	}
	it.State = s
	return s
}
