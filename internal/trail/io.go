package trail

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/troikacore/trailcore/internal/algebra"
)

// ErrMalformedRecord marks a trail record whose tokens were present
// but failed to parse as valid hex data: the reader has already
// consumed every token belonging to the record, so the caller may
// simply try again at the next one (spec.md §7's loader policy: fail
// the single record, skip it, surface a diagnostic, keep going).
var ErrMalformedRecord = errors.New("malformed trail record")

// ErrTruncatedRecord marks a record that began (its round-count token
// parsed) but ran out of input before all of its tokens were read.
// Unlike ErrMalformedRecord this is fatal: the stream itself ended
// mid-record rather than carrying bad content for a record of known
// length (spec.md §7: "a partial record is a fatal error").
var ErrTruncatedRecord = errors.New("truncated trail record")

// lanesPerState is the number of (mask1, mask2) hex pairs one encoded
// state contributes to a record.
const lanesPerState = algebra.Columns * algebra.Rows

// Save writes the trail core as whitespace-separated hex tokens, in
// the order: nrRounds, wMinRev, each transition weight, wMinDir, then
// every difference state as lanesPerState (mask1, mask2) pairs
// (spec.md §6's trail record file format).
func (t TrailCore) Save(w io.Writer) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
		defer bw.Flush()
	}

	tokens := make([]string, 0, 4+2*len(t.Weights)+2*lanesPerState*len(t.Differences))
	tokens = append(tokens, hexUint32(t.NrRounds))
	tokens = append(tokens, hexWeight(t.WMinRev)...)
	for _, weight := range t.Weights {
		tokens = append(tokens, hexWeight(weight)...)
	}
	tokens = append(tokens, hexWeight(t.WMinDir)...)
	for _, state := range t.Differences {
		tokens = append(tokens, hexState(state)...)
	}

	if _, err := bw.WriteString(strings.Join(tokens, " ")); err != nil {
		return errors.Wrap(err, "writing trail record")
	}
	return bw.WriteByte('\n')
}

func hexUint32(v uint32) string {
	return strconv.FormatUint(uint64(v), 16)
}

func hexWeight(w algebra.Weight) []string {
	return []string{hexUint32(w.Integer), hexUint32(w.LogPart)}
}

func hexState(s algebra.State) []string {
	tokens := make([]string, 0, 2*len(s.Lanes))
	for _, lane := range s.Lanes {
		tokens = append(tokens, hexUint32(lane.Lane1), hexUint32(lane.Lane2))
	}
	return tokens
}

// Reader scans a stream of whitespace-delimited hex tokens and
// assembles trail-core records from them, one Load call at a time.
// Tokens may wrap across physical lines the way spec.md §6's grammar
// lays a record out; blank lines and trailing whitespace between
// records are tolerated for free by word-based scanning.
type Reader struct {
	sc *bufio.Scanner
}

// NewReader wraps r for repeated Load calls. Each Load call advances
// the same underlying scan position, so r must not be read from by
// any other caller while a Reader is in use.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 4096), 1<<20)
	sc.Split(bufio.ScanWords)
	return &Reader{sc: sc}
}

func (rd *Reader) next() (string, bool) {
	if !rd.sc.Scan() {
		return "", false
	}
	return rd.sc.Text(), true
}

// tokensAfterRoundCount returns how many further whitespace-delimited
// tokens a record carries once nrRounds is known, so a malformed
// record can be skipped in one pass rather than re-synchronizing
// token by token.
func tokensAfterRoundCount(nrRounds uint32) int {
	nrWeights := nrRounds - 2
	nrDifferences := 2 * (nrRounds - 1)
	return int(4 + 2*nrWeights + 2*uint32(lanesPerState)*nrDifferences)
}

// Load reads one trail core from rd, in the format Save writes.
//
// It returns io.EOF (the loader's end-of-file sentinel, spec.md §6)
// when no further record is available. ErrMalformedRecord reports a
// record whose tokens failed to parse; rd has already advanced past
// every token of that record. ErrTruncatedRecord reports a record
// that began but ran out of tokens before completing, which is fatal
// rather than skippable.
func (rd *Reader) Load() (TrailCore, error) {
	nrRoundsTok, ok := rd.next()
	if !ok {
		return TrailCore{}, io.EOF
	}
	nrRounds64, err := strconv.ParseUint(nrRoundsTok, 16, 32)
	if err != nil || nrRounds64 < 2 {
		return TrailCore{}, errors.Wrapf(ErrMalformedRecord, "round count token %q", nrRoundsTok)
	}
	nrRounds := uint32(nrRounds64)

	want := tokensAfterRoundCount(nrRounds)
	values := make([]uint32, 0, want)
	for i := 0; i < want; i++ {
		tok, ok := rd.next()
		if !ok {
			return TrailCore{}, errors.Wrapf(ErrTruncatedRecord, "expected %d tokens after round count %d, got %d", want, nrRounds, i)
		}
		v, err := strconv.ParseUint(tok, 16, 32)
		if err != nil {
			// Keep consuming the record's remaining tokens so the
			// reader lands exactly on the next record's boundary
			// before reporting the failure.
			for j := i + 1; j < want; j++ {
				if _, ok := rd.next(); !ok {
					break
				}
			}
			return TrailCore{}, errors.Wrapf(ErrMalformedRecord, "token %q at position %d", tok, i)
		}
		values = append(values, uint32(v))
	}

	pos := 0
	nextWeight := func() algebra.Weight {
		w := algebra.NewWeight(values[pos], values[pos+1])
		pos += 2
		return w
	}
	nextState := func() algebra.State {
		var s algebra.State
		for i := range s.Lanes {
			s.Lanes[i] = algebra.Lane{Lane1: values[pos], Lane2: values[pos+1]}
			pos += 2
		}
		return s
	}

	wMinRev := nextWeight()
	weights := make([]algebra.Weight, nrRounds-2)
	for i := range weights {
		weights[i] = nextWeight()
	}
	wMinDir := nextWeight()

	differences := make([]algebra.State, 2*(nrRounds-1))
	for i := range differences {
		differences[i] = nextState()
	}

	core, err := New(differences, wMinRev, wMinDir, weights)
	if err != nil {
		return TrailCore{}, errors.Wrap(err, "assembling trail record")
	}
	return core, nil
}

// Load reads one trail core from r in the format Save writes; it is a
// convenience for callers with a single record to read (r is wrapped
// in a fresh Reader for this one call, so the caller must read r
// sequentially through this function, not mix it with a Reader of
// their own).
func Load(r io.Reader) (TrailCore, error) {
	return NewReader(r).Load()
}

// FileIterator reads a sequence of trail cores from a stream, skipping
// and logging malformed records rather than stopping on them, the way
// the reference's TrailFileIterator keeps going past bad input.
type FileIterator struct {
	rd      *Reader
	current TrailCore
	end     bool
	err     error
}

// NewFileIterator builds an iterator over r, already positioned at the
// first trail core.
func NewFileIterator(r io.Reader) *FileIterator {
	it := &FileIterator{rd: NewReader(r)}
	it.Next()
	return it
}

// IsEnd reports whether the stream has been fully consumed, whether
// cleanly or because Next hit a fatal error; call Err to tell the two
// apart.
func (it *FileIterator) IsEnd() bool { return it.end }

// Err returns the fatal error that stopped iteration, or nil after a
// clean end of stream.
func (it *FileIterator) Err() error { return it.err }

// Value returns the current trail core.
func (it *FileIterator) Value() TrailCore { return it.current }

// Next advances to the next trail core in the stream. A malformed
// record is logged and skipped; a truncated record or any other
// read failure stops iteration and is recorded in Err.
func (it *FileIterator) Next() {
	for {
		t, err := it.rd.Load()
		switch {
		case err == nil:
			it.current = t
			return
		case errors.Is(err, io.EOF):
			it.end = true
			return
		case errors.Is(err, ErrMalformedRecord):
			log.Error().Err(err).Msg("trail: skipping malformed record")
			continue
		default:
			log.Error().Err(err).Msg("trail: fatal error reading trail record")
			it.err = err
			it.end = true
			return
		}
	}
}
