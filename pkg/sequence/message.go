package sequence

import "fmt"

// Kind tags the variant held by a MidiMessage.
type Kind uint8

const (
	// Other covers any message the scheduler passes through without
	// interpreting (e.g. program change, CC); it carries no channel/note
	// payload of its own beyond whatever Other callers choose to stash in
	// Channel/Note/Velocity.
	Other Kind = iota
	NoteOn
	NoteOff
)

// MidiMessage is a fixed-size, allocation-free tagged variant covering the
// three message shapes this sequencer emits. It is deliberately a plain
// struct rather than an interface: values are copied, never boxed, so
// nothing here ever touches the heap on the audio thread.
type MidiMessage struct {
	Kind     Kind
	Channel  uint8 // 0..15
	Note     uint8 // 0..127
	Velocity uint8 // 0..127
}

// Bytes encodes the message as the 3-byte MIDI status+data wire form. Other
// is encoded as-is from its fields and is not a meaningful MIDI status byte
// on its own; callers that emit Other messages are expected to have set
// Channel/Note/Velocity to whatever raw status/data bytes they need.
func (m MidiMessage) Bytes() [3]byte {
	switch m.Kind {
	case NoteOn:
		return [3]byte{0x90 | (m.Channel & 0x0F), m.Note & 0x7F, m.Velocity & 0x7F}
	case NoteOff:
		return [3]byte{0x80 | (m.Channel & 0x0F), m.Note & 0x7F, 0}
	default:
		return [3]byte{m.Channel, m.Note, m.Velocity}
	}
}

func (m MidiMessage) String() string {
	switch m.Kind {
	case NoteOn:
		return fmt.Sprintf("NoteOn{ch:%d note:%d vel:%d}", m.Channel, m.Note, m.Velocity)
	case NoteOff:
		return fmt.Sprintf("NoteOff{ch:%d note:%d vel:%d}", m.Channel, m.Note, m.Velocity)
	default:
		return fmt.Sprintf("Other{%d %d %d}", m.Channel, m.Note, m.Velocity)
	}
}

// NewNoteOn builds a NoteOn message, masking channel to its low 4 bits and
// note/velocity to their low 7 bits (out-of-range values wrap, not clamp).
func NewNoteOn(channel, note, velocity uint8) MidiMessage {
	return MidiMessage{Kind: NoteOn, Channel: channel & 0x0F, Note: note & 0x7F, Velocity: velocity & 0x7F}
}

// NewNoteOff builds a NoteOff message. MIDI note-off velocity is
// conventionally 0.
func NewNoteOff(channel, note, velocity uint8) MidiMessage {
	return MidiMessage{Kind: NoteOff, Channel: channel & 0x0F, Note: note & 0x7F, Velocity: velocity & 0x7F}
}
