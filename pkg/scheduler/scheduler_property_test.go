package scheduler

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/miditimeline/pkg/sequence"
)

// TestRenderPurityProperty validates spec.md §8: for identical inputs,
// Render always produces identical output.
func TestRenderPurityProperty(t *testing.T) {
	cfg := Config{TempoBPM: 120, SampleRate: 44100, BufferSize: 512}
	set := sequence.NewSequenceSet()
	_ = set.AddSequence(sequence.Sequence{
		LengthBeats: 4.0,
		Events: []sequence.SequenceEvent{
			{TimestampBeats: 0.0, Message: sequence.NewNoteOn(0, 60, 100)},
			{TimestampBeats: 1.5, Message: sequence.NewNoteOff(0, 60, 0)},
			{TimestampBeats: 3.9, Message: sequence.NewNoteOn(0, 64, 90)},
		},
	})

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("render is pure given identical beat position", prop.ForAll(
		func(beatPosition float64) bool {
			a := make([]ScheduledMidiEvent, 0, sequence.MaxEventCount)
			a, _ = Render(beatPosition, cfg, set, a)
			b := make([]ScheduledMidiEvent, 0, sequence.MaxEventCount)
			b, _ = Render(beatPosition, cfg, set, b)

			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 1000),
	))

	properties.TestingRun(t)
}

// TestRenderOffsetBoundsProperty validates spec.md §8: every emitted event's
// offset lies in [0, buffer_size).
func TestRenderOffsetBoundsProperty(t *testing.T) {
	cfg := Config{TempoBPM: 95, SampleRate: 48000, BufferSize: 256}
	set := sequence.NewSequenceSet()
	_ = set.AddSequence(sequence.Sequence{
		LengthBeats: 2.0,
		Events: []sequence.SequenceEvent{
			{TimestampBeats: 0.0, Message: sequence.NewNoteOn(0, 36, 127)},
			{TimestampBeats: 0.25, Message: sequence.NewNoteOff(0, 36, 0)},
			{TimestampBeats: 1.999, Message: sequence.NewNoteOn(0, 38, 100)},
		},
	})

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("every emitted offset is within [0, buffer_size)", prop.ForAll(
		func(beatPosition float64) bool {
			out := make([]ScheduledMidiEvent, 0, sequence.MaxEventCount)
			out, _ = Render(beatPosition, cfg, set, out)
			for _, e := range out {
				if e.OffsetSamples < 0 || e.OffsetSamples >= cfg.BufferSize {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 500),
	))

	properties.TestingRun(t)
}

// TestRenderExactlyOncePerLoopProperty validates spec.md §8: for contiguous
// buffers advancing beat_position by exactly buffer_size samples' worth of
// beats, every event is emitted exactly once per loop period, provided
// buffer_size < L.
func TestRenderExactlyOncePerLoopProperty(t *testing.T) {
	cfg := Config{TempoBPM: 128, SampleRate: 44100, BufferSize: 480}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("each event fires exactly once per loop when buffer_size < L", prop.ForAll(
		func(lengthBeats, eventBeat float64) bool {
			set := sequence.NewSequenceSet()
			_ = set.AddSequence(sequence.Sequence{
				LengthBeats: lengthBeats,
				Events: []sequence.SequenceEvent{
					{TimestampBeats: eventBeat, Message: sequence.NewNoteOn(0, 60, 100)},
				},
			})

			l := cfg.SampleRate * 60 / cfg.TempoBPM * lengthBeats
			if cfg.BufferSize >= l {
				return true // precondition not met, nothing to check
			}
			beatsPerBuffer := cfg.BufferSize / (cfg.SampleRate * 60 / cfg.TempoBPM)

			emitted := 0
			beatPosition := 0.0
			samplesCovered := 0.0
			for samplesCovered < l {
				out := make([]ScheduledMidiEvent, 0, sequence.MaxEventCount)
				out, _ = Render(beatPosition, cfg, set, out)
				// The final buffer runs past L into the next loop
				// iteration; an emission at or past L (within half a
				// sample of rounding) belongs to that next iteration.
				for _, e := range out {
					if samplesCovered+e.OffsetSamples < l-0.5 {
						emitted++
					}
				}
				beatPosition += beatsPerBuffer
				samplesCovered += cfg.BufferSize
			}
			return emitted == 1
		},
		gen.Float64Range(2.0, 8.0),
		genEventBeat(),
	))

	properties.TestingRun(t)
}

// genEventBeat generates a beat offset in [0, 2), small enough to be a
// valid timestamp for any lengthBeats generated above (which is >= 2.0).
func genEventBeat() gopter.Gen {
	return gen.Float64Range(0, 1.999)
}

// TestRenderExactlyOnceWhenBufferCoversLoopProperty validates spec.md §4.3's
// mandatory degenerate case directly: whenever buffer_size >= L, a single
// Render call emits every event exactly once, for arbitrary (not just
// exact-multiple) buffer_size/L ratios and arbitrary start positions.
func TestRenderExactlyOnceWhenBufferCoversLoopProperty(t *testing.T) {
	cfg := Config{TempoBPM: 120, SampleRate: 44100}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("each event fires exactly once when buffer_size >= L, for any ratio", prop.ForAll(
		func(lengthBeats, eventBeat, ratio, startBeat float64) bool {
			l := cfg.SampleRate * 60 / cfg.TempoBPM * lengthBeats
			cfgWithBuffer := cfg
			cfgWithBuffer.BufferSize = l * ratio // ratio >= 1, deliberately non-integer

			set := sequence.NewSequenceSet()
			_ = set.AddSequence(sequence.Sequence{
				LengthBeats: lengthBeats,
				Events: []sequence.SequenceEvent{
					{TimestampBeats: eventBeat, Message: sequence.NewNoteOn(0, 60, 100)},
				},
			})

			out := make([]ScheduledMidiEvent, 0, sequence.MaxEventCount)
			out, res := Render(startBeat, cfgWithBuffer, set, out)
			if res.Truncated || len(out) != 1 {
				return false
			}
			return out[0].OffsetSamples >= 0 && out[0].OffsetSamples < cfgWithBuffer.BufferSize
		},
		gen.Float64Range(0.5, 8.0),
		genEventBeat(),
		gen.Float64Range(1.0, 5.37),
		gen.Float64Range(0, 1000),
	))

	properties.TestingRun(t)
}
