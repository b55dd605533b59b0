package trail_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/trail"
)

func oneActiveTritState(x, y, z, value int) algebra.State {
	var s algebra.State
	s.SetTritValue(value, x, y, z)
	return s
}

func TestNewTwoRoundTrailCoreCheckPasses(t *testing.T) {
	stateA := oneActiveTritState(0, 0, 0, 1)
	stateB := stateA
	stateB.Lambda()

	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())
	if err := tc.Check(); err != nil {
		t.Fatalf("Check() failed on a well-formed 2-round trail core: %v", err)
	}
	if tc.NrRounds != 2 {
		t.Fatalf("NrRounds = %d, want 2", tc.NrRounds)
	}
}

func TestCheckRejectsBrokenLambdaCompatibility(t *testing.T) {
	stateA := oneActiveTritState(0, 0, 0, 1)
	stateB := oneActiveTritState(3, 1, 5, 2) // unrelated to Lambda(stateA)

	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())
	if err := tc.Check(); err == nil {
		t.Fatal("Check() should reject a B not equal to Lambda(A)")
	}
}

func TestExtendForwardGrowsRoundsAndWeight(t *testing.T) {
	stateA := oneActiveTritState(0, 0, 0, 1)
	stateB := stateA
	stateB.Lambda()
	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())

	stateC := oneActiveTritState(1, 0, 0, 1)
	stateD := stateC
	stateD.Lambda()
	wBC := algebra.NewWeight(4)

	if err := tc.ExtendForward(stateC, stateD, wBC, stateD.Weight()); err != nil {
		t.Fatalf("ExtendForward failed: %v", err)
	}
	if tc.NrRounds != 3 {
		t.Fatalf("NrRounds = %d, want 3", tc.NrRounds)
	}
	if len(tc.Differences) != 4 {
		t.Fatalf("len(Differences) = %d, want 4", len(tc.Differences))
	}
	want := stateA.Weight().Add(wBC).Add(stateD.Weight())
	if !tc.Weight.Equal(want) {
		t.Fatalf("Weight = %s, want %s", tc.Weight, want)
	}
}

func TestTranslateIsReversible(t *testing.T) {
	stateA := oneActiveTritState(2, 1, 5, 1)
	stateB := stateA
	stateB.Lambda()
	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())

	original := tc
	tc.Translate(4)
	tc.Translate(algebra.Slices - 4)
	if !tc.Differences[0].Equal(original.Differences[0]) || !tc.Differences[1].Equal(original.Differences[1]) {
		t.Fatal("Translate(dz) then Translate(Slices-dz) should return to the original state")
	}
}

func TestMakeCanonicalPicksSmallestTranslate(t *testing.T) {
	stateA := oneActiveTritState(0, 0, 10, 1)
	stateB := stateA
	stateB.Lambda()
	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())

	tc.MakeCanonical()
	for dz := 1; dz < algebra.Slices; dz++ {
		candidate := tc
		candidate.Translate(dz)
		if candidate.Less(tc) {
			t.Fatalf("MakeCanonical left a smaller translate at dz=%d", dz)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	stateA := oneActiveTritState(4, 2, 8, 2)
	stateB := stateA
	stateB.Lambda()
	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())

	var buf bytes.Buffer
	if err := tc.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := trail.Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.NrRounds != tc.NrRounds || !loaded.Weight.Equal(tc.Weight) {
		t.Fatalf("round-tripped trail core differs: got %+v, want %+v", loaded, tc)
	}
	for i := range tc.Differences {
		if !loaded.Differences[i].Equal(tc.Differences[i]) {
			t.Fatalf("difference %d did not round-trip", i)
		}
	}
}

func TestFileIteratorStopsAtEOF(t *testing.T) {
	stateA := oneActiveTritState(0, 0, 0, 1)
	stateB := stateA
	stateB.Lambda()
	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())

	var buf bytes.Buffer
	if err := tc.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := tc.Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	it := trail.NewFileIterator(&buf)
	count := 0
	for !it.IsEnd() {
		count++
		it.Next()
	}
	if count != 2 {
		t.Fatalf("iterated %d trail cores, want 2", count)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil after a clean end of stream", err)
	}
}

func TestFileIteratorSkipsMalformedRecordAndContinues(t *testing.T) {
	stateA := oneActiveTritState(0, 0, 0, 1)
	stateB := stateA
	stateB.Lambda()
	tc := trail.NewTwoRoundTrailCore(stateA, stateB, stateA.Weight(), stateB.Weight())

	var good bytes.Buffer
	if err := tc.Save(&good); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A malformed record corrupts one token of an otherwise correctly
	// sized record, so the reader can still count its way to the next
	// record's boundary: only the token's content is bad, not the
	// record's shape.
	tokens := strings.Fields(good.String())
	tokens[5] = "not-hex"
	var buf bytes.Buffer
	buf.WriteString(strings.Join(tokens, " "))
	buf.WriteByte('\n')
	buf.Write(good.Bytes())

	it := trail.NewFileIterator(&buf)
	if it.IsEnd() {
		t.Fatalf("iterator ended immediately; the malformed record should have been skipped")
	}
	if !it.Value().Weight.Equal(tc.Weight) {
		t.Fatalf("value after skipping the malformed record = %+v, want %+v", it.Value(), tc)
	}
	it.Next()
	if !it.IsEnd() {
		t.Fatalf("expected end of stream after the one good record")
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil: a malformed record is recoverable, not fatal", err)
	}
}

func TestFileIteratorStopsOnTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("2 0 0") // round count says 2 rounds, but no further tokens follow

	it := trail.NewFileIterator(&buf)
	if !it.IsEnd() {
		t.Fatalf("expected a truncated record to end iteration")
	}
	if err := it.Err(); err == nil || !errors.Is(err, trail.ErrTruncatedRecord) {
		t.Fatalf("Err() = %v, want ErrTruncatedRecord", err)
	}
}
