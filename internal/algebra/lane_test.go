package algebra

import "testing"

func TestLaneAddSubRoundTrip(t *testing.T) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			var la, lb Lane
			la.Set0(0)
			lb.Set0(0)
			if a == 1 {
				la.Set1(0)
			} else if a == 2 {
				la.Set2(0)
			}
			if b == 1 {
				lb.Set1(0)
			} else if b == 2 {
				lb.Set2(0)
			}
			sum := AddLane(la, lb)
			got := SubLane(sum, lb)
			want := a
			gotVal := 0
			if got.Lane1&1 != 0 {
				gotVal = 1
			} else if got.Lane2&1 != 0 {
				gotVal = 2
			}
			if gotVal != want {
				t.Fatalf("SubLane(AddLane(%d,%d), %d) = %d, want %d", a, b, b, gotVal, want)
			}
		}
	}
}

func TestLaneShiftByIsARing(t *testing.T) {
	var l Lane
	l.Set1(0)
	l.Set2(5)
	l.ShiftBy(Slices)
	if l.Lane1 != 1 || l.Lane2 != 1<<5 {
		t.Fatalf("ShiftBy(Slices) should be the identity, got %+v", l)
	}
	l.ShiftBy(3)
	if l.Lane1 != 1<<3 {
		t.Fatalf("ShiftBy(3) moved trit at 0 to unexpected position: %+v", l)
	}
}

func TestAdd1Cycle(t *testing.T) {
	var l Lane
	l.Add1(4)
	if l.Lane1 != 1<<4 {
		t.Fatalf("Add1 on zero trit should yield value 1")
	}
	l.Add1(4)
	if l.Lane2 != 1<<4 || l.Lane1 != 0 {
		t.Fatalf("Add1 on value-1 trit should yield value 2, got %+v", l)
	}
	l.Add1(4)
	if l.Lane1 != 0 || l.Lane2 != 0 {
		t.Fatalf("Add1 on value-2 trit should wrap to value 0, got %+v", l)
	}
}
