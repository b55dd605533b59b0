package barestate_test

import (
	"testing"

	"github.com/troikacore/trailcore/internal/barestate"
	"github.com/troikacore/trailcore/internal/traversal"
)

func TestNewColumnStartsAtOrigin(t *testing.T) {
	c := barestate.NewColumn()
	if c.Rank != 0 || c.IndexValue != 0 {
		t.Fatalf("NewColumn should start at rank 0, indexValue 0; got rank=%d indexValue=%d", c.Rank, c.IndexValue)
	}
}

func TestColumnLessOrdersBySupraUnitThenRank(t *testing.T) {
	a := barestate.NewColumn()
	b := a
	b.DSupraUnit++
	if !a.Less(b) {
		t.Fatal("a column with a smaller DSupraUnit should compare less")
	}
	if b.Less(a) == false && a.Less(b) == false {
		t.Fatal("Less should be strict")
	}
}

func TestBareStateSearchStaysWithinBudget(t *testing.T) {
	unitSet := barestate.ColumnsSet{}
	cache := barestate.NewCache()
	costF := barestate.NewTwoRoundTrailCoreCostBoundFunction(1, 1)

	it := traversal.New[
		barestate.Column, *barestate.Cache,
		barestate.TwoRoundTrailCoreCostBoundFunction,
		barestate.ColumnsSet, *barestate.BareState,
	](unitSet, cache, costF, 6,
		func() *barestate.BareState { return &barestate.BareState{} }, true)

	visited, valid := 0, 0
	for !it.IsEnd() && visited < 500 {
		v := it.Value()
		if v.Valid {
			valid++
			if v.WA+v.WB > 6 {
				t.Fatalf("a valid bare state exceeded the cost budget: WA=%d WB=%d", v.WA, v.WB)
			}
		}
		visited++
		it.Next()
	}
	if visited == 0 {
		t.Fatal("expected the bare-state search to visit at least one node")
	}
}
