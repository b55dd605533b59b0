// Package traversal implements a generic, prunable depth-first tree
// iterator: the shared engine behind the tree searches in this module
// (the bare-state, mixed-state and KK searches each instantiate it with
// their own Unit/Cache/Output types; the extension iterators use
// internal/extension's own fixed-parts engine instead).
//
// The traversal visits a tree whose nodes are sequences of Units, built
// one unit at a time in the order a UnitSet defines, pruning any branch
// whose cost exceeds a fixed budget or whose unit sequence is not the
// canonical representative of its symmetry class.
package traversal

// Cache incrementally maintains whatever side information a UnitSet and
// CostFunction need to examine a unit list cheaply. Push/Pop keep it in
// sync as units are appended to, or removed from, the tail of the list.
type Cache[Unit any] interface {
	Push(unit Unit)
	PushDummy()
	Pop(unit Unit)
}

// CostFunction computes the cost of the current unit list, used to prune
// the tree at a fixed budget.
type CostFunction[Unit any, C any] interface {
	Cost(unitList []Unit, cache C) uint32
}

// UnitSet defines how new units are discovered and ordered for a tree of
// Units built incrementally against a Cache.
type UnitSet[Unit any, C any] interface {
	// FirstChildUnit returns the smallest unit that can extend unitList,
	// or ok=false if no such unit exists. This replaces the reference
	// algorithm's EndOfSet exception with an ordinary two-valued return,
	// per the redesign note on exception-based control flow.
	FirstChildUnit(unitList []Unit, cache C) (unit Unit, ok bool)
	// IterateUnit returns the next unit in order after lastUnit that can
	// extend unitList (with lastUnit already popped from it and cache),
	// or ok=false once the order is exhausted.
	IterateUnit(unitList []Unit, lastUnit Unit, cache C) (unit Unit, ok bool)
	// IsCanonical reports whether unitList is the canonical
	// representative of its equivalence class.
	IsCanonical(unitList []Unit, cache C) bool
}

// Output renders the current node (unit list plus cache) into a
// caller-facing representation.
type Output[Unit any, C any, CF any] interface {
	Set(unitList []Unit, cache C, costFunction CF, maxCost uint32)
}

// TreeIterator walks a tree of Units depth-first in the order a UnitSet
// defines, pruning any branch whose cost exceeds maxCost or whose unit
// list is not canonical.
type TreeIterator[Unit any, C Cache[Unit], CF CostFunction[Unit, C], Set UnitSet[Unit, C], Out Output[Unit, C, CF]] struct {
	unitSet      Set
	unitList     []Unit
	cache        C
	newOutput    func() Out
	costFunction CF
	cost         []uint32
	maxCost      uint32
	end          bool
	initialized  bool
	empty        bool
	index        uint64
}

// New builds a TreeIterator over unitSet, with cache as the initial
// (empty) cache representation, costFunction as the cost function, and
// maxCost as the pruning budget. newOutput must return a fresh zero Out
// value on each call; it backs Value. If setFirstNode is true, the
// iterator is immediately advanced to its first node.
func New[Unit any, C Cache[Unit], CF CostFunction[Unit, C], Set UnitSet[Unit, C], Out Output[Unit, C, CF]](
	unitSet Set, cache C, costFunction CF, maxCost uint32, newOutput func() Out, setFirstNode bool,
) *TreeIterator[Unit, C, CF, Set, Out] {
	it := &TreeIterator[Unit, C, CF, Set, Out]{
		unitSet:      unitSet,
		cache:        cache,
		costFunction: costFunction,
		maxCost:      maxCost,
		newOutput:    newOutput,
		empty:        true,
	}
	if setFirstNode {
		it.initialize()
	}
	return it
}

// IsEnd reports whether the iterator has exhausted the tree.
func (it *TreeIterator[Unit, C, CF, Set, Out]) IsEnd() bool { return it.end }

// IsEmpty reports whether the tree had no node at all.
func (it *TreeIterator[Unit, C, CF, Set, Out]) IsEmpty() bool { return it.empty }

// Index returns the 0-based count of nodes visited so far.
func (it *TreeIterator[Unit, C, CF, Set, Out]) Index() uint64 { return it.index }

// Next advances the iterator to the next node. Call it before the first
// Value if the iterator was built with setFirstNode=false.
func (it *TreeIterator[Unit, C, CF, Set, Out]) Next() {
	if !it.initialized {
		it.initialize()
		return
	}
	if it.end {
		return
	}
	it.index++
	if !it.next() {
		it.end = true
	}
}

// Value renders the current node.
func (it *TreeIterator[Unit, C, CF, Set, Out]) Value() Out {
	out := it.newOutput()
	out.Set(it.unitList, it.cache, it.costFunction, it.maxCost)
	return out
}

func (it *TreeIterator[Unit, C, CF, Set, Out]) initialize() {
	it.index = 0
	if it.first() {
		it.end = false
		it.empty = false
	} else {
		it.end = true
		it.empty = true
	}
	it.initialized = true
}

func (it *TreeIterator[Unit, C, CF, Set, Out]) first() bool { return it.toChild() }

func (it *TreeIterator[Unit, C, CF, Set, Out]) next() bool {
	if it.toChild() {
		return true
	}
	for {
		if it.toSibling() {
			return true
		}
		if !it.toParent() {
			return false
		}
	}
}

// toChild moves to the first child of the current node, obtained by
// appending the smallest admissible unit.
func (it *TreeIterator[Unit, C, CF, Set, Out]) toChild() bool {
	newUnit, ok := it.unitSet.FirstChildUnit(it.unitList, it.cache)
	if !ok {
		return false
	}
	it.push(newUnit)
	if it.cost[len(it.cost)-1] <= it.maxCost && it.isCanonical() {
		return true
	}
	if it.iterateHighestUnit() {
		return true
	}
	it.pop()
	return false
}

// toSibling moves to the first sibling of the current node, obtained by
// iterating the highest unit of the current node.
func (it *TreeIterator[Unit, C, CF, Set, Out]) toSibling() bool {
	if len(it.unitList) == 0 {
		return false
	}
	return it.iterateHighestUnit()
}

// toParent moves to the parent of the current node, obtained by removing
// its highest unit.
func (it *TreeIterator[Unit, C, CF, Set, Out]) toParent() bool {
	if len(it.unitList) == 0 {
		return false
	}
	return it.pop()
}

// iterateHighestUnit advances the highest unit of the current node
// through the order UnitSet defines, skipping any value that exceeds
// maxCost or is not canonical.
func (it *TreeIterator[Unit, C, CF, Set, Out]) iterateHighestUnit() bool {
	lastUnit := it.unitList[len(it.unitList)-1]
	it.pop()
	for {
		nextUnit, ok := it.unitSet.IterateUnit(it.unitList, lastUnit, it.cache)
		if !ok {
			it.pushDummy(lastUnit)
			return false
		}
		lastUnit = nextUnit
		it.push(lastUnit)
		if it.cost[len(it.cost)-1] <= it.maxCost && it.isCanonical() {
			return true
		}
		it.pop()
	}
}

func (it *TreeIterator[Unit, C, CF, Set, Out]) push(newUnit Unit) {
	it.unitList = append(it.unitList, newUnit)
	it.cache.Push(newUnit)
	it.cost = append(it.cost, it.costFunction.Cost(it.unitList, it.cache))
}

// pushDummy leaves something on the stack for toParent to pop after a
// unit's order has been fully exhausted.
func (it *TreeIterator[Unit, C, CF, Set, Out]) pushDummy(newUnit Unit) {
	it.unitList = append(it.unitList, newUnit)
	it.cache.PushDummy()
	it.cost = append(it.cost, 0)
}

func (it *TreeIterator[Unit, C, CF, Set, Out]) pop() bool {
	if len(it.unitList) == 0 {
		return false
	}
	last := it.unitList[len(it.unitList)-1]
	it.cache.Pop(last)
	it.unitList = it.unitList[:len(it.unitList)-1]
	it.cost = it.cost[:len(it.cost)-1]
	return true
}

func (it *TreeIterator[Unit, C, CF, Set, Out]) isCanonical() bool {
	return it.unitSet.IsCanonical(it.unitList, it.cache)
}
