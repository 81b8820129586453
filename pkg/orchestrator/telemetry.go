package orchestrator

import (
	"log/slog"
	"sync/atomic"
)

// EventKind tags a telemetry event posted from the audio thread.
type EventKind uint8

const (
	EventTruncated EventKind = iota
	EventMidiSendFailed
	EventClockUnavailable
)

func (k EventKind) String() string {
	switch k {
	case EventTruncated:
		return "truncated"
	case EventMidiSendFailed:
		return "midi_send_failed"
	case EventClockUnavailable:
		return "clock_unavailable"
	default:
		return "unknown"
	}
}

// telemetryEvent is posted to the non-blocking channel; detail is an
// optional human-readable cause (e.g. the underlying transport error),
// logged off-thread.
type telemetryEvent struct {
	kind   EventKind
	detail string
}

// Telemetry counts and logs the non-fatal conditions the audio callback can
// encounter (spec §7): Truncated, MidiSendFailed, ClockUnavailable. Posting
// from the audio thread never blocks: the channel is buffered and a full
// channel simply drops the event rather than stalling the callback.
type Telemetry struct {
	log *slog.Logger
	ch  chan telemetryEvent

	truncated        atomic.Uint64
	midiSendFailed   atomic.Uint64
	clockUnavailable atomic.Uint64
	dropped          atomic.Uint64

	done chan struct{}
}

// NewTelemetry starts the background drain goroutine and returns a ready
// Telemetry. bufferSize bounds how many pending events can queue before the
// audio thread starts silently dropping them; it should comfortably exceed
// one buffer's worth of worst-case events.
func NewTelemetry(log *slog.Logger, bufferSize int) *Telemetry {
	if log == nil {
		log = slog.Default()
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}
	t := &Telemetry{
		log:  log,
		ch:   make(chan telemetryEvent, bufferSize),
		done: make(chan struct{}),
	}
	go t.run()
	return t
}

// Post records one occurrence of kind and, if it fits, enqueues it for
// off-thread logging. Safe to call from the audio thread: it never blocks.
func (t *Telemetry) Post(kind EventKind, detail string) {
	switch kind {
	case EventTruncated:
		t.truncated.Add(1)
	case EventMidiSendFailed:
		t.midiSendFailed.Add(1)
	case EventClockUnavailable:
		t.clockUnavailable.Add(1)
	}

	select {
	case t.ch <- telemetryEvent{kind: kind, detail: detail}:
	default:
		t.dropped.Add(1)
	}
}

// Counts returns the running totals for each telemetry kind plus how many
// events were dropped because the channel was full.
func (t *Telemetry) Counts() (truncated, midiSendFailed, clockUnavailable, dropped uint64) {
	return t.truncated.Load(), t.midiSendFailed.Load(), t.clockUnavailable.Load(), t.dropped.Load()
}

// Close stops the drain goroutine. It does not close the channel that the
// audio thread posts to; Post remains safe to call after Close (events are
// simply counted, not logged).
func (t *Telemetry) Close() {
	close(t.done)
}

func (t *Telemetry) run() {
	for {
		select {
		case ev := <-t.ch:
			t.log.Warn("scheduler telemetry", "kind", ev.kind.String(), "detail", ev.detail)
		case <-t.done:
			return
		}
	}
}
