// Package trailstore persists trail cores to a Pebble-backed append-only
// stream and deduplicates them against a Pebble-backed ordered set of
// canonical forms, the storage substrate spec.md §5/§6 leaves to "an
// append-only stream" and "an in-memory ordered set" respectively.
package trailstore

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/troikacore/trailcore/internal/algebra"
	"github.com/troikacore/trailcore/internal/trail"
)

// encodeState appends the 27 lanes of s to buf as pairs of big-endian
// uint32s (Lane1, Lane2), 216 bytes per state.
func encodeState(buf []byte, s algebra.State) []byte {
	for _, lane := range s.Lanes {
		buf = binary.BigEndian.AppendUint32(buf, lane.Lane1)
		buf = binary.BigEndian.AppendUint32(buf, lane.Lane2)
	}
	return buf
}

func decodeState(b []byte) (algebra.State, []byte, error) {
	var s algebra.State
	for i := range s.Lanes {
		if len(b) < 8 {
			return algebra.State{}, nil, errors.New("trailstore: truncated state")
		}
		s.Lanes[i].Lane1 = binary.BigEndian.Uint32(b[0:4])
		s.Lanes[i].Lane2 = binary.BigEndian.Uint32(b[4:8])
		b = b[8:]
	}
	return s, b, nil
}

func encodeWeight(buf []byte, w algebra.Weight) []byte {
	buf = binary.BigEndian.AppendUint32(buf, w.Integer)
	buf = binary.BigEndian.AppendUint32(buf, w.LogPart)
	return buf
}

func decodeWeight(b []byte) (algebra.Weight, []byte, error) {
	if len(b) < 8 {
		return algebra.Weight{}, nil, errors.New("trailstore: truncated weight")
	}
	w := algebra.NewWeight(binary.BigEndian.Uint32(b[0:4]), binary.BigEndian.Uint32(b[4:8]))
	return w, b[8:], nil
}

// EncodeTrailCore serializes a trail core to a flat byte record: round
// count, WMinRev, WMinDir, every difference state, then every transition
// weight. Record length is fixed for a given NrRounds, so the stream
// writer does not need a length prefix per record, only a round-count
// tag to size the read on the way back out.
func EncodeTrailCore(t trail.TrailCore) []byte {
	buf := make([]byte, 0, 4+8+8+len(t.Differences)*216+len(t.Weights)*8)
	buf = binary.BigEndian.AppendUint32(buf, t.NrRounds)
	buf = encodeWeight(buf, t.WMinRev)
	buf = encodeWeight(buf, t.WMinDir)
	for _, s := range t.Differences {
		buf = encodeState(buf, s)
	}
	for _, w := range t.Weights {
		buf = encodeWeight(buf, w)
	}
	return buf
}

// DecodeTrailCore parses a record produced by EncodeTrailCore.
func DecodeTrailCore(b []byte) (trail.TrailCore, error) {
	if len(b) < 4 {
		return trail.TrailCore{}, errors.New("trailstore: truncated record")
	}
	nrRounds := binary.BigEndian.Uint32(b[0:4])
	b = b[4:]

	wMinRev, b, err := decodeWeight(b)
	if err != nil {
		return trail.TrailCore{}, err
	}
	wMinDir, b, err := decodeWeight(b)
	if err != nil {
		return trail.TrailCore{}, err
	}

	if nrRounds < 2 {
		return trail.TrailCore{}, errors.Newf("trailstore: invalid round count %d", nrRounds)
	}
	nrDifferences := int(2 * (nrRounds - 1))
	differences := make([]algebra.State, nrDifferences)
	for i := range differences {
		var s algebra.State
		s, b, err = decodeState(b)
		if err != nil {
			return trail.TrailCore{}, err
		}
		differences[i] = s
	}

	nrWeights := int(nrRounds) - 2
	weights := make([]algebra.Weight, nrWeights)
	for i := range weights {
		var w algebra.Weight
		w, b, err = decodeWeight(b)
		if err != nil {
			return trail.TrailCore{}, err
		}
		weights[i] = w
	}

	return trail.New(differences, wMinRev, wMinDir, weights)
}

// EncodeCanonicalKey encodes the canonical form of t (the trail core's
// smallest z-translate) for use as an ordered-set key: calling
// MakeCanonical first ensures two trail cores that are z-translates of
// each other always encode to the same key.
func EncodeCanonicalKey(t trail.TrailCore) []byte {
	canonical := t
	canonical.Differences = append([]algebra.State(nil), t.Differences...)
	canonical.MakeCanonical()
	buf := make([]byte, 0, 4+len(canonical.Differences)*216)
	buf = binary.BigEndian.AppendUint32(buf, canonical.NrRounds)
	for _, s := range canonical.Differences {
		buf = encodeState(buf, s)
	}
	return buf
}
