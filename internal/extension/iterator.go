// Package extension implements the four one-round trail-core extension
// iterators (spec.md §7): forward and backward, each either unconstrained
// or constrained to land in the kernel. Each walks a fixed-length
// sequence of "parts" (a trit, a tryte, or a box-column, depending on the
// extension), choosing one value at a time and pruning as soon as the
// partial choice cannot meet the extension's weight budget.
package extension

import "github.com/troikacore/trailcore/internal/algebra"

// Part is one chooseable element of an extension: a position plus the
// machinery to iterate over its admissible values in cost order.
type Part[C any] interface {
	SetFirstValue(cache C)
	SetNextValue(cache C) bool
}

// Cache incrementally maintains whatever side information a CostFunction
// needs to judge a partial choice, kept in sync as parts are pushed onto,
// or popped from, the tail of the chosen sequence.
type Cache[P any] interface {
	Push(part P)
	Pop(part P)
}

// CostFunction reports whether the partial or complete choice recorded in
// cache already exceeds the extension's weight budget.
type CostFunction[P any, C any] interface {
	TooHighCost(cache C, indCurPart int) bool
}

// Output renders a complete choice of parts into the extension's
// caller-facing representation, and reports whether it is valid (e.g.
// S-box-compatible) and within budget.
type Output[P any, C any, CF any] interface {
	Set(parts []P, cache C, costFunction CF)
	IsValidAndBelowWeight(maxWeight algebra.Weight) bool
}

// Iterator walks the tree of choices for a fixed parts list, depth-first,
// pruning with CostFunction and reporting only nodes where every part has
// been chosen and Output accepts the result.
//
// kernelVariant selects the backward-in-kernel pruning policy, which
// abandons a cost-exceeding child outright instead of trying its
// siblings, since InKernelTryteColumns values are already sorted cheapest
// first and every later sibling can only cost more.
type Iterator[P Part[C], C Cache[P], CF CostFunction[P, C], Out Output[P, C, CF]] struct {
	parts         []P
	cache         C
	costF         CF
	newOutput     func() Out
	maxWeight     algebra.Weight
	kernelVariant bool

	out         Out
	end         bool
	indCurPart  int
	indLastPart int
}

// New builds an Iterator over parts and immediately advances it to its
// first valid extension, unless couldBeExtended is false (the
// preparation already ruled out any extension).
func New[P Part[C], C Cache[P], CF CostFunction[P, C], Out Output[P, C, CF]](
	parts []P, cache C, costF CF, maxWeight algebra.Weight, newOutput func() Out,
	couldBeExtended, kernelVariant bool,
) *Iterator[P, C, CF, Out] {
	it := &Iterator[P, C, CF, Out]{
		parts: parts, cache: cache, costF: costF, newOutput: newOutput,
		maxWeight: maxWeight, kernelVariant: kernelVariant,
		indCurPart: -1, indLastPart: len(parts) - 1,
	}
	it.end = !couldBeExtended
	if !it.end {
		it.advance()
	}
	return it
}

// IsEnd reports whether every extension has been visited.
func (it *Iterator[P, C, CF, Out]) IsEnd() bool { return it.end }

// Value returns the current extension.
func (it *Iterator[P, C, CF, Out]) Value() Out { return it.out }

// Next advances to the next valid extension.
func (it *Iterator[P, C, CF, Out]) Next() { it.advance() }

func (it *Iterator[P, C, CF, Out]) advance() {
	if it.end {
		return
	}
	for {
		for {
			var ok bool
			if it.kernelVariant {
				ok = it.nextKernelVariant()
			} else {
				ok = it.nextStandard()
			}
			if !ok {
				it.end = true
				return
			}
			if it.indCurPart == it.indLastPart {
				break
			}
		}
		it.out = it.newOutput()
		it.out.Set(it.parts, it.cache, it.costF)
		if it.out.IsValidAndBelowWeight(it.maxWeight) {
			return
		}
	}
}

func (it *Iterator[P, C, CF, Out]) nextStandard() bool {
	if it.toChild() {
		if !it.tooHighCost() {
			return true
		}
	}
	for {
		for it.toSibling() {
			if !it.tooHighCost() {
				return true
			}
		}
		if !it.toParent() {
			return false
		}
	}
}

func (it *Iterator[P, C, CF, Out]) nextKernelVariant() bool {
	if it.toChild() {
		if it.tooHighCost() {
			it.toParent()
		} else {
			return true
		}
	}
	for {
		if it.toSibling() {
			if !it.tooHighCost() {
				return true
			}
		}
		if !it.toParent() {
			return false
		}
	}
}

func (it *Iterator[P, C, CF, Out]) tooHighCost() bool {
	return it.costF.TooHighCost(it.cache, it.indCurPart)
}

func (it *Iterator[P, C, CF, Out]) toChild() bool {
	if it.indCurPart == it.indLastPart {
		return false
	}
	it.indCurPart++
	it.parts[it.indCurPart].SetFirstValue(it.cache)
	it.cache.Push(it.parts[it.indCurPart])
	return true
}

func (it *Iterator[P, C, CF, Out]) toParent() bool {
	if it.indCurPart <= 0 {
		return false
	}
	it.cache.Pop(it.parts[it.indCurPart])
	it.indCurPart--
	return true
}

func (it *Iterator[P, C, CF, Out]) toSibling() bool {
	it.cache.Pop(it.parts[it.indCurPart])
	if !it.parts[it.indCurPart].SetNextValue(it.cache) {
		it.cache.Push(it.parts[it.indCurPart])
		return false
	}
	it.cache.Push(it.parts[it.indCurPart])
	return true
}
