// Package scheduler implements the timeline scheduler: the stateless,
// per-buffer function that walks a SequenceSet and emits the MIDI events
// that fall inside the current audio buffer, offset-stamped relative to
// the buffer start.
package scheduler

import (
	"math"

	"github.com/zurustar/miditimeline/pkg/sequence"
	"github.com/zurustar/miditimeline/pkg/timeline"
)

// Config is the immutable-per-call rendering configuration.
type Config struct {
	TempoBPM   float64
	SampleRate float64
	BufferSize float64 // samples per callback
}

// ScheduledMidiEvent is one event the scheduler has placed inside the
// current buffer.
type ScheduledMidiEvent struct {
	// OffsetSamples is the sample offset from buffer start, satisfying
	// 0 <= OffsetSamples < Config.BufferSize.
	OffsetSamples float64
	Message       sequence.MidiMessage
}

// Result carries the render outcome: Truncated is set when the output
// slice ran out of capacity before every in-window event could be
// appended. It is a non-fatal, telemetry-only condition (spec §4.3/§7).
type Result struct {
	Truncated bool
}

// Render walks every sequence in set and appends to out one
// ScheduledMidiEvent per event whose modular sample position falls in the
// half-open window [buffer_start, buffer_end) of the buffer starting at
// beatPosition, converted to samples via cfg.
//
// Render is pure, idempotent and allocation-free: out must already have
// enough capacity (len(out) == 0, cap(out) >= sequence.MaxEventCount is the
// usual audio-thread discipline) and Render never grows it past that
// capacity — if capacity runs out mid-walk, Render stops appending and
// returns Result{Truncated: true} rather than reallocating.
//
// Render never reorders events: within a sequence, events are visited and
// (if in window) appended in the order IterSequences/Events presents them.
func Render(beatPosition float64, cfg Config, set *sequence.SequenceSet, out []ScheduledMidiEvent) ([]ScheduledMidiEvent, Result) {
	var result Result
	if set == nil {
		return out, result
	}

	for seq := range set.IterSequences() {
		l := timeline.BeatsToSamples(seq.LengthBeats, cfg.TempoBPM, cfg.SampleRate)
		if l <= 0 {
			continue
		}
		start := timeline.ModularPosition(beatPosition, seq.LengthBeats, cfg.TempoBPM, cfg.SampleRate)
		rawEnd := start + cfg.BufferSize
		// A buffer at least as long as the loop covers every sample
		// position at least once, so every event must fire exactly once
		// regardless of how many whole loops fit in the buffer — not just
		// when BufferSize happens to be an exact multiple of l. Each
		// event's unique offset is its distance past start, modulo l.
		coversFullLoop := cfg.BufferSize >= l
		wraps := !coversFullLoop && rawEnd > l
		end := rawEnd
		if wraps {
			end = math.Mod(rawEnd, l)
		}

		for _, evt := range seq.Events {
			e := timeline.BeatsToSamples(evt.TimestampBeats, cfg.TempoBPM, cfg.SampleRate)

			var offset float64
			var inWindow bool
			switch {
			case coversFullLoop:
				offset = math.Mod(e-start+l, l)
				inWindow = true
			case !wraps:
				if e >= start && e < end {
					offset = e - start
					inWindow = true
				}
			default:
				switch {
				case e >= start && e < l:
					offset = e - start
					inWindow = true
				case e >= 0 && e < end:
					offset = (l - start) + e
					inWindow = true
				}
			}

			if !inWindow {
				continue
			}
			if len(out) == cap(out) {
				result.Truncated = true
				return out, result
			}
			out = append(out, ScheduledMidiEvent{OffsetSamples: offset, Message: evt.Message})
		}
	}

	return out, result
}

