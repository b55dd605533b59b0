package trailstore_test

import (
	"path/filepath"
	"testing"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/trail"
	"github.com/troikacore/trailcore/internal/trailstore"
)

func oneActiveTritState(x, y, z int) algebra.State {
	var s algebra.State
	s.SetTritValue(1, x, y, z)
	return s
}

// sampleTrailCore builds a Check()-passing 2-round trail core: b is
// Lambda(a), and the weight breakdown matches a.Weight()/b.Weight(),
// so TrailCore.Check accepts it.
func sampleTrailCore(z int) trail.TrailCore {
	a := oneActiveTritState(0, 0, z)
	b := a
	b.Lambda()
	return trail.NewTwoRoundTrailCore(a, b, a.Weight(), b.Weight())
}

func TestEncodeDecodeTrailCoreRoundTrips(t *testing.T) {
	original := sampleTrailCore(5)

	decoded, err := trailstore.DecodeTrailCore(trailstore.EncodeTrailCore(original))
	if err != nil {
		t.Fatalf("DecodeTrailCore: %v", err)
	}

	if decoded.NrRounds != original.NrRounds {
		t.Fatalf("NrRounds = %d, want %d", decoded.NrRounds, original.NrRounds)
	}
	if len(decoded.Differences) != len(original.Differences) {
		t.Fatalf("len(Differences) = %d, want %d", len(decoded.Differences), len(original.Differences))
	}
	for i := range original.Differences {
		if decoded.Differences[i] != original.Differences[i] {
			t.Fatalf("Differences[%d] mismatch", i)
		}
	}
	if decoded.WMinRev != original.WMinRev || decoded.WMinDir != original.WMinDir {
		t.Fatalf("weights mismatch: got %v/%v, want %v/%v", decoded.WMinRev, decoded.WMinDir, original.WMinRev, original.WMinDir)
	}
}

func TestEncodeCanonicalKeyIgnoresZTranslation(t *testing.T) {
	a := sampleTrailCore(3)
	b := sampleTrailCore(3)
	b.Translate(7)

	keyA := trailstore.EncodeCanonicalKey(a)
	keyB := trailstore.EncodeCanonicalKey(b)
	if string(keyA) != string(keyB) {
		t.Fatalf("canonical keys differ across z-translates")
	}
}

func TestStoreAppendAndReplay(t *testing.T) {
	store, err := trailstore.Open(filepath.Join(t.TempDir(), "stream"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	want := []trail.TrailCore{sampleTrailCore(1), sampleTrailCore(2), sampleTrailCore(3)}
	for _, tr := range want {
		if err := store.Append(tr); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := store.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var got []trail.TrailCore
	for tr := range store.All() {
		got = append(got, tr)
	}
	if len(got) != len(want) {
		t.Fatalf("replayed %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Differences[0] != want[i].Differences[0] {
			t.Fatalf("record %d: replay order not preserved", i)
		}
	}
}

func TestStoreReopenResumesSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream")

	store, err := trailstore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Append(sampleTrailCore(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := trailstore.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if err := reopened.Append(sampleTrailCore(2)); err != nil {
		t.Fatalf("Append after reopen: %v", err)
	}

	var count int
	for range reopened.All() {
		count++
	}
	if count != 2 {
		t.Fatalf("replayed %d records after reopen, want 2", count)
	}
}

func TestCanonicalSetDeduplicatesZTranslates(t *testing.T) {
	set := trailstore.NewCanonicalSet()

	a := sampleTrailCore(4)
	b := sampleTrailCore(4)
	b.Translate(10)

	isNewA, err := set.Add(a)
	if err != nil {
		t.Fatalf("Add(a): %v", err)
	}
	if !isNewA {
		t.Fatalf("Add(a) should report new")
	}

	isNewB, err := set.Add(b)
	if err != nil {
		t.Fatalf("Add(b): %v", err)
	}
	if isNewB {
		t.Fatalf("Add(b) should be a duplicate of a's z-translate")
	}

	count, err := set.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count = %d, want 1", count)
	}
}

func TestDeduplicatePass(t *testing.T) {
	store, err := trailstore.Open(filepath.Join(t.TempDir(), "stream"))
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	defer store.Close()

	set, err := trailstore.OpenCanonicalSet(filepath.Join(t.TempDir(), "canonical"))
	if err != nil {
		t.Fatalf("OpenCanonicalSet: %v", err)
	}
	defer set.Close()

	distinct := sampleTrailCore(1)
	duplicate := sampleTrailCore(1)
	duplicate.Translate(6)
	// A trit in another column, so no z-translate of it equals distinct.
	other := oneActiveTritState(1, 0, 2)
	otherB := other
	otherB.Lambda()

	for _, tr := range []trail.TrailCore{distinct, duplicate, trail.NewTwoRoundTrailCore(other, otherB, other.Weight(), otherB.Weight())} {
		if err := store.Append(tr); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	var unique []trail.TrailCore
	total, uniqueCount, err := trailstore.Deduplicate(store, set, func(t trail.TrailCore) error {
		unique = append(unique, t)
		return nil
	})
	if err != nil {
		t.Fatalf("Deduplicate: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if uniqueCount != 2 {
		t.Fatalf("uniqueCount = %d, want 2", uniqueCount)
	}
	if len(unique) != 2 {
		t.Fatalf("onUnique called %d times, want 2", len(unique))
	}
}
