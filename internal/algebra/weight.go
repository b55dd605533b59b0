package algebra

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// logWeightFixedPoint and logWeightScale implement the total order design
// note of spec.md §9: rather than comparing `integer + LOG*logPart` as a
// long double, every Weight compares through a fixed-point integer
// `scale*integer + logFixed*logPart`, where logFixed approximates
// LOG = -log3(2/27) to six decimal digits. Comparisons are therefore exact
// integer comparisons, never floating point.
const (
	weightScale    = 1000000
	logWeightFixed = 2369070 // round(LOG * 1e6), LOG = 2.369070246428542692
)

// Weight is the cost of an active S-box transition (or of a state's minimum
// direct/reverse weight): an exact integer part plus a count of LOG-valued
// contributions. Every active tryte contributes one of {2, LOG, 3} to a
// trail's total weight.
type Weight struct {
	Integer uint32
	LogPart uint32
}

// NewWeight builds a Weight with an optional LOG multiplicity.
func NewWeight(integer uint32, logPart ...uint32) Weight {
	w := Weight{Integer: integer}
	if len(logPart) > 0 {
		w.LogPart = logPart[0]
	}
	return w
}

// Add returns the componentwise sum of two weights.
func (w Weight) Add(other Weight) Weight {
	return Weight{Integer: w.Integer + other.Integer, LogPart: w.LogPart + other.LogPart}
}

// Sub returns the componentwise difference. Per spec.md §7, subtracting a
// larger weight from a smaller one is an arithmetic precondition violation:
// it is unreachable given the invariants and is fatal, not a soft error.
func (w Weight) Sub(other Weight) Weight {
	if w.Integer < other.Integer || w.LogPart < other.LogPart {
		panic(errors.AssertionFailedf(
			"weight subtraction underflow: %s - %s (this should be unreachable; the trail invariants guarantee weights only shrink monotonically)",
			w, other))
	}
	return Weight{Integer: w.Integer - other.Integer, LogPart: w.LogPart - other.LogPart}
}

// Scale returns the weight multiplied by a non-negative integer scalar.
func (w Weight) Scale(scalar uint32) Weight {
	return Weight{Integer: w.Integer * scalar, LogPart: w.LogPart * scalar}
}

// fixedPoint returns the exact integer used for ordering: scale*Integer +
// logWeightFixed*LogPart.
func (w Weight) fixedPoint() uint64 {
	return uint64(weightScale)*uint64(w.Integer) + uint64(logWeightFixed)*uint64(w.LogPart)
}

// Compare returns -1, 0 or 1 as w is less than, equal to, or greater than
// other, using the exact fixed-point order of spec.md §9.
func (w Weight) Compare(other Weight) int {
	a, b := w.fixedPoint(), other.fixedPoint()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether w strictly precedes other in the total order.
func (w Weight) Less(other Weight) bool { return w.Compare(other) < 0 }

// LessOrEqual reports whether w does not exceed other; this is the
// predicate the traversal engine and the extension cost functions use for
// budget pruning (spec.md §4.3, §4.7).
func (w Weight) LessOrEqual(other Weight) bool { return w.Compare(other) <= 0 }

// Equal reports exact componentwise equality.
func (w Weight) Equal(other Weight) bool {
	return w.Integer == other.Integer && w.LogPart == other.LogPart
}

// IsZero reports whether the weight is the additive identity.
func (w Weight) IsZero() bool { return w.Integer == 0 && w.LogPart == 0 }

// String renders "integer + logPart*LOG" in a form matching the original
// reference's ostream operator, e.g. "4 + 2*LOG".
func (w Weight) String() string {
	if w.LogPart == 0 {
		return fmt.Sprintf("%d", w.Integer)
	}
	return fmt.Sprintf("%d + %d*LOG", w.Integer, w.LogPart)
}

// CostBound is the integer-valued cost bound used by the generic traversal
// engine (spec.md §4.3): a plain non-negative integer, since bare/mixed
// state costs are already expressed as 2*(#active trytes) sums scaled by
// integer alpha/beta coefficients, with no LOG component (the LOG-valued
// contributions only appear once the S-box transition itself is fixed,
// which happens after a node already exists).
type CostBound = uint32
