package sequence

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors the on-disk authoring format: a list of sequences, each a
// loop length in beats and an ordered list of events. This is a
// control-path-only concern; the audio thread never parses YAML.
type yamlDoc struct {
	Sequences []yamlSequence `yaml:"sequences"`
}

type yamlSequence struct {
	LengthBeats float64     `yaml:"length_beats"`
	Events      []yamlEvent `yaml:"events"`
}

type yamlEvent struct {
	TimestampBeats float64 `yaml:"timestamp_beats"`
	Type           string  `yaml:"type"` // "note_on" | "note_off" | "other"
	Channel        uint8   `yaml:"channel"`
	Note           uint8   `yaml:"note"`
	Velocity       uint8   `yaml:"velocity"`
}

// LoadSequenceSetYAML parses a YAML document describing a SequenceSet,
// applying the same capacity and per-event timestamp invariants AddEvent
// enforces, so a malformed authoring file can never make it as far as the
// audio thread.
//
// Example document:
//
//	sequences:
//	  - length_beats: 4
//	    events:
//	      - timestamp_beats: 0
//	        type: note_on
//	        channel: 0
//	        note: 60
//	        velocity: 100
//	      - timestamp_beats: 0.5
//	        type: note_off
//	        channel: 0
//	        note: 60
func LoadSequenceSetYAML(r io.Reader) (*SequenceSet, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("sequence: parsing yaml: %w", err)
	}

	set := NewSequenceSet()
	for i, ys := range doc.Sequences {
		seq := Sequence{LengthBeats: ys.LengthBeats}
		for _, ye := range ys.Events {
			msg, err := messageFromYAML(ye)
			if err != nil {
				return nil, fmt.Errorf("sequence: sequence %d: %w", i, err)
			}
			seq.Events = append(seq.Events, SequenceEvent{
				TimestampBeats: ye.TimestampBeats,
				Message:        msg,
			})
		}
		if err := set.AddSequence(seq); err != nil {
			return nil, fmt.Errorf("sequence: sequence %d: %w", i, err)
		}
	}
	return set, nil
}

func messageFromYAML(ye yamlEvent) (MidiMessage, error) {
	switch ye.Type {
	case "note_on":
		return NewNoteOn(ye.Channel, ye.Note, ye.Velocity), nil
	case "note_off":
		return NewNoteOff(ye.Channel, ye.Note, ye.Velocity), nil
	case "other", "":
		return MidiMessage{Kind: Other, Channel: ye.Channel, Note: ye.Note, Velocity: ye.Velocity}, nil
	default:
		return MidiMessage{}, fmt.Errorf("unknown event type %q", ye.Type)
	}
}
