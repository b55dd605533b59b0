package trailstore

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/troikacore/trailcore/internal/metrics"
	"github.com/troikacore/trailcore/internal/trail"
)

// CanonicalSet is an ordered set of canonical trail-core keys, backed
// by Pebble the same way Store is, one key per EncodeCanonicalKey
// result, giving the sorted-iteration and on-disk-spill
// properties spec.md §5's "in-memory ordered set... must be sized
// accordingly" calls for once a run's candidate count runs into the
// billions. Deduplicate uses it to keep one representative per
// z-translate equivalence class. Metrics is optional and nil-safe.
type CanonicalSet struct {
	db      *pebble.DB
	Metrics *metrics.Counters
}

// OpenCanonicalSet creates or reopens a canonical-key set at path.
func OpenCanonicalSet(path string) (*CanonicalSet, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "trailstore: opening canonical set at %q", path)
	}
	return &CanonicalSet{db: db}, nil
}

// NewCanonicalSet builds an empty canonical-key set backed by an
// in-memory Pebble instance (vfs.NewMem), for callers — tests among
// them — that want the set's exact dedup semantics without a path on
// disk to manage.
func NewCanonicalSet() *CanonicalSet {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		panic(errors.Wrap(err, "trailstore: opening in-memory canonical set"))
	}
	return &CanonicalSet{db: db}
}

// Add canonicalizes t and inserts its key if not already present,
// reporting whether it was new.
func (c *CanonicalSet) Add(t trail.TrailCore) (isNew bool, err error) {
	key := EncodeCanonicalKey(t)
	if _, closer, err := c.db.Get(key); err == nil {
		_ = closer.Close()
		return false, nil
	} else if !errors.Is(err, pebble.ErrNotFound) {
		return false, errors.Wrap(err, "trailstore: canonical-set lookup")
	}

	if err := c.db.Set(key, nil, pebble.NoSync); err != nil {
		return false, errors.Wrap(err, "trailstore: canonical-set insert")
	}
	return true, nil
}

// Count returns the number of distinct canonical keys in the set.
func (c *CanonicalSet) Count() (uint64, error) {
	it, err := c.db.NewIter(nil)
	if err != nil {
		return 0, errors.Wrap(err, "trailstore: canonical-set count")
	}
	defer it.Close()

	var n uint64
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, nil
}

// Close releases the set's resources.
func (c *CanonicalSet) Close() error {
	return c.db.Close()
}
