package orchestrator

import (
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// MeltysynthTransport is a MidiTransport that feeds dispatched packets
// straight into a go-meltysynth Synthesizer, so a developer running the
// demo command can actually hear a sequence while iterating. It applies
// each note immediately on Send rather than queuing by TimestampTicks: it
// is a preview convenience, not a sample-accurate renderer, and sits
// entirely outside the (silent) core scheduler — the non-goal "audio
// synthesis" in spec §1 binds the scheduler, not this optional collaborator.
type MeltysynthTransport struct {
	synth *meltysynth.Synthesizer
}

// NewMeltysynthTransport wraps an already-constructed synthesizer (see
// cmd/miditimeline for how it is built from a SoundFont).
func NewMeltysynthTransport(synth *meltysynth.Synthesizer) *MeltysynthTransport {
	return &MeltysynthTransport{synth: synth}
}

// Send forwards the packet's raw status/data bytes to the synthesizer in
// one call, the same channel/command/data1/data2 split the engine's own
// MIDI bridge uses to forward messages into meltysynth.
func (t *MeltysynthTransport) Send(destination string, packet AbsoluteMidiPacket) error {
	status := packet.Bytes[0]
	channel := int32(status & 0x0F)
	command := int32(status & 0xF0)
	data1 := int32(packet.Bytes[1])
	data2 := int32(packet.Bytes[2])

	t.synth.ProcessMidiMessage(channel, command, data1, data2)
	return nil
}
