// Package orchestrator implements the callback orchestrator: the glue the
// audio host invokes once per buffer, which queries the shared-clock
// service, invokes the timeline scheduler, forwards resulting packets to
// the MIDI transport, and fills the audio buffer with silence.
package orchestrator

import (
	"math"
	"time"

	"github.com/zurustar/miditimeline/pkg/scheduler"
	"github.com/zurustar/miditimeline/pkg/sequence"
)

// BufferParams carries the per-callback values the audio host hands to the
// orchestrator (spec §6): buffer size, sample rate, output latency, and
// the host's own notion of elapsed stream time. SampleTime/SampleClock
// describe this one audio stream, not the shared peer-sync timeline —
// beat position always comes from Clock.ClockMicros(), never from these.
type BufferParams struct {
	BufferSizeSamples int
	SampleRateHz      int
	OutputLatency     time.Duration
	SampleTime        time.Duration
	SampleClock       uint64
}

// Orchestrator is the stateful glue around the stateless scheduler: it owns
// the snapshot stores the audio thread reads from, the external
// collaborators (clock, host clock, MIDI transport), and the preallocated
// scratch buffer the scheduler writes into.
//
// All fields set at construction are safe for the audio thread to use
// without locking: Config and SequenceSet are read through Store.Load
// (spec §5), the collaborators are plain interface values fixed for the
// orchestrator's lifetime, and scratch is exclusively owned by the audio
// thread (spec §3 Ownership & lifecycle).
type Orchestrator struct {
	ConfigStore   *sequence.Store[scheduler.Config]
	SequenceStore *sequence.Store[sequence.SequenceSet]

	Clock     ClockService
	HostClock HostClock
	Transport MidiTransport
	Telemetry *Telemetry

	Destination  string
	QuantumBeats float64 // process-wide quantum for the clock service only; default 4

	scratch []scheduler.ScheduledMidiEvent
}

// New builds an Orchestrator with a preallocated scratch buffer of
// capacity sequence.MaxEventCount, ready to process buffers.
func New(configStore *sequence.Store[scheduler.Config], seqStore *sequence.Store[sequence.SequenceSet], clock ClockService, hostClock HostClock, transport MidiTransport, destination string) *Orchestrator {
	return &Orchestrator{
		ConfigStore:   configStore,
		SequenceStore: seqStore,
		Clock:         clock,
		HostClock:     hostClock,
		Transport:     transport,
		Destination:   destination,
		QuantumBeats:  4,
		scratch:       make([]scheduler.ScheduledMidiEvent, 0, sequence.MaxEventCount),
	}
}

// RenderBuffer is the per-buffer entry point the audio host calls (spec
// §4.4). It never blocks, never allocates past construction, and never
// returns an error: every failure condition is converted to telemetry.
//
// dst is zero-filled in place and returned, matching the "audio synthesis
// is a non-goal" contract — this system never produces audible samples of
// its own, and never allocates a buffer of its own to do so.
func (o *Orchestrator) RenderBuffer(params BufferParams, dst []byte) []byte {
	for i := range dst {
		dst[i] = 0
	}

	snapshot, err := o.Clock.CaptureAudioSnapshot()
	if err != nil {
		if o.Telemetry != nil {
			o.Telemetry.Post(EventClockUnavailable, err.Error())
		}
		return dst
	}
	if !snapshot.IsPlaying() {
		return dst
	}

	hostMicros := o.Clock.ClockMicros()
	beatPosition := snapshot.BeatAtTime(hostMicros, o.QuantumBeats)

	hostNow := o.HostClock.MonotonicTicks()
	numer, denom := o.HostClock.TimebaseInfo()
	ticksPerMs := TicksPerMillisecond(numer, denom)

	cfg := o.ConfigStore.Load()
	seqSet := o.SequenceStore.Load()
	if cfg == nil || seqSet == nil {
		return dst
	}
	schedCfg := *cfg

	o.scratch = o.scratch[:0]
	events, result := scheduler.Render(beatPosition, schedCfg, seqSet, o.scratch)
	o.scratch = events
	if result.Truncated && o.Telemetry != nil {
		o.Telemetry.Post(EventTruncated, "")
	}

	latencyMs := float64(params.OutputLatency.Microseconds()) / 1000.0
	latencyTicks := int64(math.Round(latencyMs * ticksPerMs))

	for _, ev := range events {
		offsetMs := ev.OffsetSamples * 1000.0 / float64(params.SampleRateHz)
		offsetTicks := int64(math.Round(offsetMs * ticksPerMs))
		timestampTicks := uint64(int64(hostNow) + offsetTicks - latencyTicks)

		packet := AbsoluteMidiPacket{
			TimestampTicks: timestampTicks,
			Bytes:          ev.Message.Bytes(),
		}
		if err := o.Transport.Send(o.Destination, packet); err != nil {
			if o.Telemetry != nil {
				o.Telemetry.Post(EventMidiSendFailed, err.Error())
			}
		}
	}

	return dst
}
