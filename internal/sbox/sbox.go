// Package sbox implements the differential distribution table of the
// Troika SubTrytes map and the compatibility tables derived from it: which
// tryte differences can transition to (or from) a given difference, at
// what weight, and which in-kernel columns of trytes precede a given
// output column through the S-box.
package sbox

import (
	"sort"

	"github.com/troikacore/trailcore/internal/algebra"
)

// table is the Troika S-box lookup, SBOX[x] = S(x).
var table = [27]algebra.Tryte{
	6, 25, 17, 5, 15, 10, 4, 20, 24,
	0, 1, 2, 9, 22, 26, 18, 16, 14,
	3, 13, 23, 7, 11, 12, 8, 21, 19,
}

// Apply evaluates the S-box at x.
func Apply(x algebra.Tryte) algebra.Tryte { return table[x] }

// DDT[output][input] counts the x for which S(x+input) - S(x) == output.
var DDT [27][27]uint32

// DDTRowSums returns, for each output difference, the sum of DDT[output][*]
// over every input difference. Since the S-box is a permutation every row
// sums to 27 (spec.md §8, property 7).
func DDTRowSums() [27]uint32 {
	var sums [27]uint32
	for output := 0; output < 27; output++ {
		for input := 0; input < 27; input++ {
			sums[output] += DDT[output][input]
		}
	}
	return sums
}

// DDTColSums returns, for each input difference, the sum of DDT[*][input]
// over every output difference. Every column also sums to 27.
func DDTColSums() [27]uint32 {
	var sums [27]uint32
	for input := 0; input < 27; input++ {
		for output := 0; output < 27; output++ {
			sums[input] += DDT[output][input]
		}
	}
	return sums
}

// Compatible pairs a tryte difference with the weight of the transition
// that makes it compatible with an implicit, particular opposite-side
// difference.
type Compatible struct {
	Value  algebra.Tryte
	Weight algebra.Weight
}

// outputDiff[input] lists every output difference compatible with input,
// and the weight of that transition. inputDiff is the symmetric table
// keyed by output.
var outputDiff [27][]Compatible
var inputDiff [27][]Compatible

// ColumnCompatible stores a column of three trytes (one per state row),
// the transitions' accumulated weight, and the column's total Hamming
// weight, used to rank backward-in-kernel extension candidates by cost.
type ColumnCompatible struct {
	Trytes        [3]algebra.Tryte
	HammingWeight int
	Weight        algebra.Weight
}

// Cost is 2*HammingWeight + Weight, the ordering key used to rank
// candidate in-kernel box-columns from cheapest to most expensive
// (matches the reference's `operator<` on TryteColumnSTCompatible).
func (c ColumnCompatible) Cost() algebra.Weight {
	return algebra.NewWeight(uint32(2*c.HammingWeight)).Add(c.Weight)
}

func newColumnCompatible(a, b, c Compatible, weightA, weightB, weightC algebra.Weight) ColumnCompatible {
	return ColumnCompatible{
		Trytes:        [3]algebra.Tryte{a.Value, b.Value, c.Value},
		HammingWeight: a.Value.HammingWeight() + b.Value.HammingWeight() + c.Value.HammingWeight(),
		Weight:        weightA.Add(weightB).Add(weightC),
	}
}

// inKernelColumnsBeforeST[i][j][k], for i>=j>=k, lists the in-kernel
// columns of trytes |b0|b1|b2| such that bn is ST-compatible with the
// output difference indexed by i, j, k respectively (in that
// descending order), sorted ascending by Cost. Addressed via
// InKernelColumnsBeforeST, which sorts its arguments first so callers
// need not presort.
var inKernelColumnsBeforeST [27][][][]ColumnCompatible

func init() {
	initDDT()
	initDiffTables()
	initInKernelColumns()
}

func initDDT() {
	for x := 0; x < 27; x++ {
		for input := 0; input < 27; input++ {
			xPlusInput := algebra.Tryte(x).Add(algebra.Tryte(input))
			outputDifference := Apply(xPlusInput).Sub(Apply(algebra.Tryte(x)))
			DDT[outputDifference][input]++
		}
	}
}

func initDiffTables() {
	for output := 0; output < 27; output++ {
		for input := 0; input < 27; input++ {
			var w algebra.Weight
			switch DDT[output][input] {
			case 3:
				w = algebra.NewWeight(2)
			case 2:
				w = algebra.NewWeight(0, 1)
			case 1:
				w = algebra.NewWeight(3)
			case 27:
				w = algebra.NewWeight(0)
			default:
				continue
			}
			outputDiff[input] = append(outputDiff[input], Compatible{Value: algebra.Tryte(output), Weight: w})
			inputDiff[output] = append(inputDiff[output], Compatible{Value: algebra.Tryte(input), Weight: w})
		}
	}
}

func isInKernelColumn(t0, t1, t2 algebra.Tryte) bool {
	for i := 0; i < 3; i++ {
		if (t0.Trit(i)+t1.Trit(i)+t2.Trit(i))%3 != 0 {
			return false
		}
	}
	return true
}

func columnsBeforeST(i, j, k int) []ColumnCompatible {
	var res []ColumnCompatible
	for _, b0 := range inputDiff[i] {
		for _, b1 := range inputDiff[j] {
			for _, b2 := range inputDiff[k] {
				if isInKernelColumn(b0.Value, b1.Value, b2.Value) {
					res = append(res, newColumnCompatible(b0, b1, b2, b0.Weight, b1.Weight, b2.Weight))
				}
			}
		}
	}
	sort.Slice(res, func(a, b int) bool { return res[a].Cost().Less(res[b].Cost()) })
	return res
}

func initInKernelColumns() {
	for i := 0; i < 27; i++ {
		inKernelColumnsBeforeST[i] = make([][][]ColumnCompatible, i+1)
		for j := 0; j <= i; j++ {
			inKernelColumnsBeforeST[i][j] = make([][]ColumnCompatible, j+1)
			for k := 0; k <= j; k++ {
				inKernelColumnsBeforeST[i][j][k] = columnsBeforeST(i, j, k)
			}
		}
	}
}

// InKernelColumnsBeforeST returns the in-kernel box-columns preceding the
// output column (i, j, k) through the S-box, cheapest first. i, j, k may
// be given in any order.
func InKernelColumnsBeforeST(i, j, k int) []ColumnCompatible {
	a, b, c := i, j, k
	if a < b {
		a, b = b, a
	}
	if b < c {
		b, c = c, b
	}
	if a < b {
		a, b = b, a
	}
	return inKernelColumnsBeforeST[a][b][c]
}

// OutputDifferencesFor returns every output tryte difference compatible
// with input, with transition weights.
func OutputDifferencesFor(input algebra.Tryte) []Compatible { return outputDiff[input] }

// InputDifferencesFor returns every input tryte difference compatible
// with output, with transition weights.
func InputDifferencesFor(output algebra.Tryte) []Compatible { return inputDiff[output] }

// AreCompatible reports whether inputTryte is ST-compatible with
// outputTryte, adding the transition's weight into accumulated when so.
func AreCompatible(inputTryte, outputTryte algebra.Tryte, accumulated *algebra.Weight) bool {
	for _, c := range outputDiff[inputTryte] {
		if c.Value == outputTryte {
			*accumulated = accumulated.Add(c.Weight)
			return true
		}
	}
	return false
}

// AreStatesCompatible checks ST-compatibility of inputDifference with
// outputDifference at every position in positions, returning the total
// transition weight. It stops at the first incompatible position.
func AreStatesCompatible(inputDifference, outputDifference *algebra.State, positions []algebra.TrytePosition) (algebra.Weight, bool) {
	var w algebra.Weight
	for _, pos := range positions {
		in := inputDifference.GetTryteAt(pos)
		out := outputDifference.GetTryteAt(pos)
		if !AreCompatible(in, out, &w) {
			return algebra.Weight{}, false
		}
	}
	return w, true
}

// AllAreStatesCompatible checks ST-compatibility of inputDifference with
// outputDifference over every active tryte of inputDifference.
func AllAreStatesCompatible(inputDifference, outputDifference *algebra.State) (algebra.Weight, bool) {
	var positions []algebra.TrytePosition
	for xTryte := 0; xTryte < 3; xTryte++ {
		for y := 0; y < algebra.Rows; y++ {
			for z := 0; z < algebra.Slices; z++ {
				pos := algebra.TrytePosition{X: xTryte, Y: y, Z: z}
				if inputDifference.IsTryteActive(pos) {
					positions = append(positions, pos)
				}
			}
		}
	}
	return AreStatesCompatible(inputDifference, outputDifference, positions)
}
