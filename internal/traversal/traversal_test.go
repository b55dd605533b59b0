package traversal_test

import (
	"testing"

	"github.com/troikacore/trailcore/internal/traversal"
)

// subsetCache tracks the running sum of the unit list so subsetCost and
// subsetSet need not recompute it from scratch. A Pop right after
// PushDummy only removes the dummy, like the module's real caches.
type subsetCache struct {
	sum   int
	dummy bool
}

func (c *subsetCache) Push(unit int) { c.sum += unit; c.dummy = false }
func (c *subsetCache) PushDummy()    { c.dummy = true }
func (c *subsetCache) Pop(unit int) {
	if c.dummy {
		c.dummy = false
		return
	}
	c.sum -= unit
}

// subsetSet enumerates strictly increasing sequences drawn from
// {1,2,3,4,5}, used to exercise the tree iterator end to end.
type subsetSet struct{}

func (subsetSet) FirstChildUnit(unitList []int, cache *subsetCache) (int, bool) {
	next := 1
	if len(unitList) > 0 {
		next = unitList[len(unitList)-1] + 1
	}
	if next > 5 {
		return 0, false
	}
	return next, true
}

func (subsetSet) IterateUnit(unitList []int, lastUnit int, cache *subsetCache) (int, bool) {
	if lastUnit+1 > 5 {
		return 0, false
	}
	return lastUnit + 1, true
}

func (subsetSet) IsCanonical(unitList []int, cache *subsetCache) bool { return true }

type subsetCost struct{}

func (subsetCost) Cost(unitList []int, cache *subsetCache) uint32 { return uint32(cache.sum) }

type subsetOutput struct{ values []int }

func (o *subsetOutput) Set(unitList []int, cache *subsetCache, costFunction subsetCost, maxCost uint32) {
	o.values = append([]int(nil), unitList...)
}

func TestTreeIteratorEnumeratesAllIncreasingSequences(t *testing.T) {
	it := traversal.New[int, *subsetCache, subsetCost, subsetSet, *subsetOutput](
		subsetSet{}, &subsetCache{}, subsetCost{}, 100,
		func() *subsetOutput { return &subsetOutput{} }, true,
	)
	var got [][]int
	for !it.IsEnd() {
		got = append(got, it.Value().values)
		it.Next()
	}
	// 2^5 - 1 = 31 nonempty strictly increasing subsequences of {1..5}.
	if len(got) != 31 {
		t.Fatalf("got %d nodes, want 31", len(got))
	}
	if !sliceEqual(got[0], []int{1}) {
		t.Fatalf("first node should be [1], got %v", got[0])
	}
}

func TestTreeIteratorPrunesByMaxCost(t *testing.T) {
	it := traversal.New[int, *subsetCache, subsetCost, subsetSet, *subsetOutput](
		subsetSet{}, &subsetCache{}, subsetCost{}, 3,
		func() *subsetOutput { return &subsetOutput{} }, true,
	)
	count := 0
	for !it.IsEnd() {
		v := it.Value().values
		sum := 0
		for _, x := range v {
			sum += x
		}
		if sum > 3 {
			t.Fatalf("node %v exceeds maxCost 3", v)
		}
		count++
		it.Next()
	}
	// sums <=3: [1],[2],[3],[1,2]
	if count != 4 {
		t.Fatalf("got %d nodes within budget 3, want 4", count)
	}
}

func TestEmptyTreeReportsEmpty(t *testing.T) {
	it := traversal.New[int, *subsetCache, subsetCost, subsetSet, *subsetOutput](
		subsetSet{}, &subsetCache{}, subsetCost{}, 0,
		func() *subsetOutput { return &subsetOutput{} }, true,
	)
	if !it.IsEmpty() || !it.IsEnd() {
		t.Fatalf("a tree with maxCost 0 should be empty (every unit costs >=1)")
	}
}

func sliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
