package algebra

import "strconv"

// tryteTable[v] holds the three base-3 digits of v (9*t0+3*t1+t2) and the
// Hamming weight of the tryte, matching the reference's static TRYTES
// table. Generated once at init so the digit and weight lookups below are
// a single table read.
var tryteTable [27][4]int

func init() {
	for v := 0; v < 27; v++ {
		t0 := v / 9
		t1 := (v / 3) % 3
		t2 := v % 3
		weight := 0
		for _, t := range []int{t0, t1, t2} {
			if t != 0 {
				weight++
			}
		}
		tryteTable[v] = [4]int{t0, t1, t2, weight}
	}
}

// Tryte is an integer in [0,27) encoding three base-3 trit values
// 9*t0 + 3*t1 + t2.
type Tryte uint8

// Trit returns the i'th digit (0, 1 or 2) of the tryte, i in [0,3).
func (t Tryte) Trit(i int) int { return tryteTable[t][i] }

// HammingWeight returns the number of nonzero digits.
func (t Tryte) HammingWeight() int { return tryteTable[t][3] }

// IsActive reports whether the tryte differs from zero.
func (t Tryte) IsActive() bool { return t != 0 }

// Add performs the trit-wise ternary addition (each digit mod 3).
func (t Tryte) Add(other Tryte) Tryte {
	var v int
	pow := 9
	for i := 0; i < 3; i++ {
		v += pow * ((t.Trit(i) + other.Trit(i)) % 3)
		pow /= 3
	}
	return Tryte(v)
}

// Sub performs the trit-wise ternary subtraction (each digit mod 3).
func (t Tryte) Sub(other Tryte) Tryte {
	var v int
	pow := 9
	for i := 0; i < 3; i++ {
		v += pow * ((t.Trit(i) - other.Trit(i) + 3) % 3)
		pow /= 3
	}
	return Tryte(v)
}

func (t Tryte) String() string {
	buf := make([]byte, 3)
	for i := 0; i < 3; i++ {
		buf[i] = byte('0' + t.Trit(i))
	}
	return string(buf)
}

// Hex renders the tryte value as a bare hex token, used by the trail
// record file format (spec.md §6).
func (t Tryte) Hex() string { return strconv.FormatUint(uint64(t), 16) }
