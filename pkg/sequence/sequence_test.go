package sequence

import (
	"errors"
	"strings"
	"testing"
)

func TestAddSequenceCapacity(t *testing.T) {
	set := NewSequenceSet()
	for i := 0; i < SequenceCountMax; i++ {
		if err := set.AddSequence(Sequence{LengthBeats: 1.0}); err != nil {
			t.Fatalf("AddSequence %d: %v", i, err)
		}
	}
	if err := set.AddSequence(Sequence{LengthBeats: 1.0}); !errors.Is(err, ErrOutOfCapacity) {
		t.Fatalf("expected ErrOutOfCapacity, got %v", err)
	}
}

func TestAddSequenceInvalidTimestamp(t *testing.T) {
	set := NewSequenceSet()
	seq := Sequence{
		LengthBeats: 1.0,
		Events: []SequenceEvent{
			{TimestampBeats: 1.0, Message: NewNoteOn(0, 60, 100)},
		},
	}
	if err := set.AddSequence(seq); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestAddEventInvalidTimestamp(t *testing.T) {
	set := NewSequenceSet()
	if err := set.AddSequence(Sequence{LengthBeats: 1.0}); err != nil {
		t.Fatalf("AddSequence: %v", err)
	}
	err := set.AddEvent(0, SequenceEvent{TimestampBeats: 1.5, Message: NewNoteOn(0, 60, 100)})
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestAddEventOutOfCapacity(t *testing.T) {
	set := NewSequenceSet()
	if err := set.AddSequence(Sequence{LengthBeats: 1.0}); err != nil {
		t.Fatalf("AddSequence: %v", err)
	}
	for i := 0; i < MaxEventCount; i++ {
		if err := set.AddEvent(0, SequenceEvent{TimestampBeats: 0, Message: NewNoteOn(0, 60, 100)}); err != nil {
			t.Fatalf("AddEvent %d: %v", i, err)
		}
	}
	if err := set.AddEvent(0, SequenceEvent{TimestampBeats: 0, Message: NewNoteOn(0, 60, 100)}); !errors.Is(err, ErrOutOfCapacity) {
		t.Fatalf("expected ErrOutOfCapacity, got %v", err)
	}
}

func TestIterSequencesInsertionOrder(t *testing.T) {
	set := NewSequenceSet()
	for i := 0; i < 3; i++ {
		if err := set.AddSequence(Sequence{LengthBeats: float64(i + 1)}); err != nil {
			t.Fatalf("AddSequence %d: %v", i, err)
		}
	}
	var lengths []float64
	for seq := range set.IterSequences() {
		lengths = append(lengths, seq.LengthBeats)
	}
	want := []float64{1, 2, 3}
	if len(lengths) != len(want) {
		t.Fatalf("got %v sequences, want %v", lengths, want)
	}
	for i := range want {
		if lengths[i] != want[i] {
			t.Fatalf("got %v, want %v", lengths, want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	set := NewSequenceSet()
	if err := set.AddSequence(Sequence{LengthBeats: 1.0, Events: []SequenceEvent{{TimestampBeats: 0, Message: NewNoteOn(0, 60, 100)}}}); err != nil {
		t.Fatalf("AddSequence: %v", err)
	}
	clone := set.Clone()
	_ = set.AddEvent(0, SequenceEvent{TimestampBeats: 0.5, Message: NewNoteOff(0, 60, 0)})
	if clone.EventCount() != 1 {
		t.Fatalf("clone should be unaffected by mutation of original, got %d events", clone.EventCount())
	}
}

func TestMidiMessageBytes(t *testing.T) {
	on := NewNoteOn(1, 60, 100)
	if got, want := on.Bytes(), [3]byte{0x91, 60, 100}; got != want {
		t.Fatalf("NoteOn.Bytes() = %v, want %v", got, want)
	}
	off := NewNoteOff(1, 60, 100)
	if got, want := off.Bytes(), [3]byte{0x81, 60, 0}; got != want {
		t.Fatalf("NoteOff.Bytes() = %v, want %v", got, want)
	}
}

func TestLoadSequenceSetYAML(t *testing.T) {
	doc := `
sequences:
  - length_beats: 1.0
    events:
      - timestamp_beats: 0.0
        type: note_on
        channel: 0
        note: 60
        velocity: 100
      - timestamp_beats: 0.5
        type: note_off
        channel: 0
        note: 60
`
	set, err := LoadSequenceSetYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSequenceSetYAML: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("got %d sequences, want 1", set.Len())
	}
	if set.EventCount() != 2 {
		t.Fatalf("got %d events, want 2", set.EventCount())
	}
}

func TestLoadSequenceSetYAMLRejectsInvalidTimestamp(t *testing.T) {
	doc := `
sequences:
  - length_beats: 1.0
    events:
      - timestamp_beats: 2.0
        type: note_on
        note: 60
`
	if _, err := LoadSequenceSetYAML(strings.NewReader(doc)); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}
