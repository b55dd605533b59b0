package sbox

import (
	"testing"

	"github.com/troikacore/trailcore/internal/algebra"
)

func TestDDTRowsSumTo27(t *testing.T) {
	for output, sum := range DDTRowSums() {
		if sum != 27 {
			t.Fatalf("DDT row for output %d sums to %d, want 27", output, sum)
		}
	}
	for input, sum := range DDTColSums() {
		if sum != 27 {
			t.Fatalf("DDT column for input %d sums to %d, want 27", input, sum)
		}
	}
}

func TestDDTZeroInputIsIdentity(t *testing.T) {
	if DDT[0][0] != 27 {
		t.Fatalf("a zero input difference must always produce a zero output difference")
	}
}

func TestOutputDiffIsSymmetricWithInputDiff(t *testing.T) {
	for input := 0; input < 27; input++ {
		for _, c := range outputDiff[input] {
			found := false
			for _, back := range inputDiff[c.Value] {
				if int(back.Value) == input {
					found = true
					if !back.Weight.Equal(c.Weight) {
						t.Fatalf("asymmetric weight for input %d <-> output %d", input, c.Value)
					}
				}
			}
			if !found {
				t.Fatalf("input %d listed output %d but inputDiff[%d] omits it", input, c.Value, c.Value)
			}
		}
	}
}

func TestAreCompatibleMatchesDDT(t *testing.T) {
	for input := 0; input < 27; input++ {
		for output := 0; output < 27; output++ {
			var w algebra.Weight
			ok := AreCompatible(algebra.Tryte(input), algebra.Tryte(output), &w)
			if ok != (DDT[output][input] != 0) {
				t.Fatalf("AreCompatible(%d,%d) = %v, DDT says %d", input, output, ok, DDT[output][input])
			}
		}
	}
}

func TestInKernelColumnsBeforeSTOrderedByCost(t *testing.T) {
	cols := InKernelColumnsBeforeST(5, 3, 1)
	for i := 1; i < len(cols); i++ {
		if cols[i].Cost().Less(cols[i-1].Cost()) {
			t.Fatalf("in-kernel columns not sorted ascending by cost at index %d", i)
		}
	}
	for _, col := range cols {
		sum := col.Trytes[0].Trit(0) + col.Trytes[1].Trit(0) + col.Trytes[2].Trit(0)
		if sum%3 != 0 {
			t.Fatalf("column %v is not in the kernel at digit 0", col.Trytes)
		}
	}
}
