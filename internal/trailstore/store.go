package trailstore

import (
	"encoding/binary"
	"iter"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/metrics"
	"github.com/troikacore/trailcore/internal/trail"
)

// Store is an append-only stream of trail-core records backed by
// Pebble: records are keyed by a monotonically increasing big-endian
// sequence number, so a forward iterator over the whole keyspace
// replays them in append order (spec.md §5, "billions of candidates...
// efficient sequential append and later sequential scan"). Metrics is
// optional and nil-safe; set it after Open to report append counts.
type Store struct {
	db      *pebble.DB
	seq     atomic.Uint64
	Metrics *metrics.Counters
}

// Open creates or reopens an append-only trail-core stream at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "trailstore: opening store at %q", path)
	}

	s := &Store{db: db}
	if err := s.recoverSeq(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// recoverSeq positions the append sequence counter after the highest
// key already in the store, so reopening a store resumes appending
// rather than overwriting.
func (s *Store) recoverSeq() error {
	it, err := s.db.NewIter(nil)
	if err != nil {
		return errors.Wrap(err, "trailstore: creating recovery iterator")
	}
	defer it.Close()

	if it.Last() && len(it.Key()) == 8 {
		s.seq.Store(binary.BigEndian.Uint64(it.Key()) + 1)
	}
	return nil
}

// Append stores t as the next record in the stream.
func (s *Store) Append(t trail.TrailCore) error {
	seq := s.seq.Add(1) - 1
	key := binary.BigEndian.AppendUint64(nil, seq)
	if err := s.db.Set(key, EncodeTrailCore(t), pebble.NoSync); err != nil {
		return errors.Wrapf(err, "trailstore: appending record %d", seq)
	}
	s.Metrics.AppendedRecord()
	return nil
}

// All replays every record in append order.
func (s *Store) All() iter.Seq[trail.TrailCore] {
	return func(yield func(trail.TrailCore) bool) {
		it, err := s.db.NewIter(nil)
		if err != nil {
			log.Error().Err(err).Msg("trailstore: replay iterator failed")
			return
		}
		defer it.Close()

		for it.First(); it.Valid(); it.Next() {
			t, err := DecodeTrailCore(it.Value())
			if err != nil {
				log.Error().Err(err).Msg("trailstore: skipping malformed record")
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Flush ensures every appended record is persisted to storage.
func (s *Store) Flush() error {
	return s.db.Flush()
}

// Close releases the store's resources.
func (s *Store) Close() error {
	return s.db.Close()
}
