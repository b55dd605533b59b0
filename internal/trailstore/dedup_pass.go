package trailstore

import (
	"github.com/troikacore/trailcore/internal/trail"
)

// Deduplicate replays every record of store, keeping only the first
// representative of each z-translate equivalence class as tracked by
// set, and calls onUnique once per new representative in MakeCanonical
// form. It returns the total number of records replayed and the number
// that were unique.
func Deduplicate(store *Store, set *CanonicalSet, onUnique func(trail.TrailCore) error) (total, unique uint64, err error) {
	for t := range store.All() {
		total++
		isNew, addErr := set.Add(t)
		if addErr != nil {
			return total, unique, addErr
		}
		if !isNew {
			continue
		}
		unique++
		set.Metrics.UniqueRecord()
		if onUnique != nil {
			canonical := t
			canonical.MakeCanonical()
			if err := onUnique(canonical); err != nil {
				return total, unique, err
			}
		}
	}
	return total, unique, nil
}

// WeightHistogram replays every record of store and tallies a count
// per integer total weight, the distribution the reference prints
// alongside its trail-core output.
func WeightHistogram(store *Store) map[uint32]uint64 {
	histogram := make(map[uint32]uint64)
	for t := range store.All() {
		histogram[t.Weight.Integer]++
	}
	return histogram
}
