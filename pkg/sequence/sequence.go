package sequence

import (
	"errors"
	"fmt"
	"iter"
)

// Limits on the size of a SequenceSet, matching the defaults this
// sequencer's audio-thread preallocation is sized against.
const (
	SequenceCountMax = 8
	MaxEventCount    = 2048
)

// ErrOutOfCapacity is returned when adding an event or sequence would
// exceed MaxEventCount / SequenceCountMax.
var ErrOutOfCapacity = errors.New("sequence: out of capacity")

// ErrInvalidTimestamp is returned when an event's TimestampBeats violates
// 0 <= timestamp < length_beats for its owning sequence.
var ErrInvalidTimestamp = errors.New("sequence: invalid timestamp")

// SequenceEvent is a single MIDI message placed at a beat offset within its
// owning sequence's loop.
type SequenceEvent struct {
	// TimestampBeats must satisfy 0 <= TimestampBeats < the owning
	// sequence's LengthBeats.
	TimestampBeats float64
	Message        MidiMessage
}

// Sequence is a looped, beat-indexed list of MIDI events. Event order is not
// semantically significant: the scheduler scans every event of every
// sequence on each buffer, so Events need not be sorted by TimestampBeats.
type Sequence struct {
	// LengthBeats is the loop period; must be positive.
	LengthBeats float64
	Events      []SequenceEvent
}

// validate checks the sequence's own invariant: every event's timestamp is
// within [0, LengthBeats).
func (s *Sequence) validate() error {
	if s.LengthBeats <= 0 {
		return fmt.Errorf("%w: length_beats must be positive, got %v", ErrInvalidTimestamp, s.LengthBeats)
	}
	for _, e := range s.Events {
		if e.TimestampBeats < 0 || e.TimestampBeats >= s.LengthBeats {
			return fmt.Errorf("%w: timestamp_beats %v outside [0, %v)", ErrInvalidTimestamp, e.TimestampBeats, s.LengthBeats)
		}
	}
	return nil
}

// SequenceSet is a bounded, ordered collection of Sequences. It is built and
// mutated entirely outside the audio callback; the audio thread only ever
// holds a read-only snapshot (see Store).
type SequenceSet struct {
	sequences []Sequence
	eventN    int
}

// NewSequenceSet returns an empty SequenceSet.
func NewSequenceSet() *SequenceSet {
	return &SequenceSet{}
}

// Len returns the number of sequences currently held.
func (s *SequenceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sequences)
}

// EventCount returns the total number of events across all sequences.
func (s *SequenceSet) EventCount() int {
	if s == nil {
		return 0
	}
	return s.eventN
}

// Sequences returns the underlying slice of sequences in insertion order.
// Callers must treat the returned slice as read-only; the scheduler relies
// on that discipline to stay allocation-free.
func (s *SequenceSet) Sequences() []Sequence {
	if s == nil {
		return nil
	}
	return s.sequences
}

// IterSequences returns a finite, restartable iterator over the sequences
// in insertion order, per the Sequence Store contract (spec §4.2).
func (s *SequenceSet) IterSequences() iter.Seq[Sequence] {
	return func(yield func(Sequence) bool) {
		if s == nil {
			return
		}
		for _, seq := range s.sequences {
			if !yield(seq) {
				return
			}
		}
	}
}

// AddSequence appends a new, initially empty-or-populated sequence. It is
// outside-callback only. Fails with ErrOutOfCapacity if SequenceCountMax or
// MaxEventCount would be exceeded, or ErrInvalidTimestamp if any of seq's
// events already violate its length invariant.
func (s *SequenceSet) AddSequence(seq Sequence) error {
	if len(s.sequences) >= SequenceCountMax {
		return fmt.Errorf("%w: sequence count limit %d reached", ErrOutOfCapacity, SequenceCountMax)
	}
	if s.eventN+len(seq.Events) > MaxEventCount {
		return fmt.Errorf("%w: event count limit %d reached", ErrOutOfCapacity, MaxEventCount)
	}
	if err := seq.validate(); err != nil {
		return err
	}
	s.sequences = append(s.sequences, seq)
	s.eventN += len(seq.Events)
	return nil
}

// AddEvent inserts event into the sequence at sequenceIndex, maintaining
// 0 <= timestamp_beats < length_beats. It is outside-callback only.
func (s *SequenceSet) AddEvent(sequenceIndex int, event SequenceEvent) error {
	if sequenceIndex < 0 || sequenceIndex >= len(s.sequences) {
		return fmt.Errorf("sequence: index %d out of range", sequenceIndex)
	}
	if s.eventN >= MaxEventCount {
		return fmt.Errorf("%w: event count limit %d reached", ErrOutOfCapacity, MaxEventCount)
	}
	seq := &s.sequences[sequenceIndex]
	if event.TimestampBeats < 0 || event.TimestampBeats >= seq.LengthBeats {
		return fmt.Errorf("%w: timestamp_beats %v outside [0, %v)", ErrInvalidTimestamp, event.TimestampBeats, seq.LengthBeats)
	}
	seq.Events = append(seq.Events, event)
	s.eventN++
	return nil
}

// Clone returns a deep copy of s, suitable for publishing as an immutable
// snapshot: mutating the original after Clone never affects the copy.
func (s *SequenceSet) Clone() *SequenceSet {
	if s == nil {
		return nil
	}
	out := &SequenceSet{
		sequences: make([]Sequence, len(s.sequences)),
		eventN:    s.eventN,
	}
	for i, seq := range s.sequences {
		out.sequences[i] = Sequence{
			LengthBeats: seq.LengthBeats,
			Events:      append([]SequenceEvent(nil), seq.Events...),
		}
	}
	return out
}
