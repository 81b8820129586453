package orchestrator

import (
	"errors"
	"sync"
	"time"
)

// ErrClockUnavailable is returned by ClockService.CaptureAudioSnapshot when
// the shared-clock/peer-sync service cannot produce a snapshot for this
// buffer. The orchestrator degrades to silence for that buffer rather than
// propagating the error to the audio host (spec §7).
var ErrClockUnavailable = errors.New("orchestrator: clock snapshot unavailable")

// ClockSnapshot is the immutable view of the shared timeline captured once
// per buffer. It mirrors the shared-clock service's `state` object (spec
// §6): a beat position function of host time, and whether the shared
// transport is currently playing.
type ClockSnapshot interface {
	// BeatAtTime returns the beat position at hostMicros, phase-aligned to
	// quantumBeats. quantumBeats affects only the clock service's own
	// phase accounting for peer alignment; it does not feed the
	// scheduler directly (spec §6 Glossary: Quantum).
	BeatAtTime(hostMicros int64, quantumBeats float64) float64
	// IsPlaying reports whether the shared transport is currently
	// running. When false, the orchestrator emits only silence.
	IsPlaying() bool
}

// ClockService is the external shared-clock/peer-sync collaborator
// consumed by the orchestrator (spec §6). The networked implementation —
// discovering peers and exchanging phase over the local network — is out
// of scope for this repository; only this interface is specified.
type ClockService interface {
	CaptureAudioSnapshot() (ClockSnapshot, error)
	ClockMicros() int64
	// SetTempoCallback registers a telemetry-only hook invoked when the
	// shared tempo changes. It never feeds the scheduler (spec §6).
	SetTempoCallback(fn func(tempoBPM float64))
}

// staticSnapshot is a fixed beat position / playing state, useful for tests
// and for StaticClock.
type staticSnapshot struct {
	beatPosition float64
	playing      bool
}

func (s staticSnapshot) BeatAtTime(_ int64, _ float64) float64 { return s.beatPosition }
func (s staticSnapshot) IsPlaying() bool                       { return s.playing }

// StaticClock is a ClockService test double that always reports the same
// beat position and playing state, regardless of host time or quantum.
type StaticClock struct {
	BeatPosition float64
	Playing      bool
	Err          error // if set, CaptureAudioSnapshot returns this error
}

func (c *StaticClock) CaptureAudioSnapshot() (ClockSnapshot, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return staticSnapshot{beatPosition: c.BeatPosition, playing: c.Playing}, nil
}

func (c *StaticClock) ClockMicros() int64 { return 0 }

func (c *StaticClock) SetTempoCallback(fn func(tempoBPM float64)) {}

// LocalClock is a free-running, non-networked approximation of the
// shared-clock service, useful for the demo command when no peer-sync
// service is attached. It derives beat position from wall-clock elapsed
// time and a fixed tempo; it never discovers or aligns with peers.
type LocalClock struct {
	TempoBPM float64

	mu      sync.Mutex
	start   time.Time
	started bool
	playing bool
	tempoCB func(tempoBPM float64)
}

// Start marks the clock as running from now.
func (c *LocalClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
	c.started = true
	c.playing = true
}

// Stop marks the clock as stopped; CaptureAudioSnapshot continues to
// succeed but IsPlaying reports false.
func (c *LocalClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

func (c *LocalClock) CaptureAudioSnapshot() (ClockSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil, ErrClockUnavailable
	}
	elapsed := time.Since(c.start)
	beats := elapsed.Minutes() * c.TempoBPM
	return staticSnapshot{beatPosition: beats, playing: c.playing}, nil
}

func (c *LocalClock) ClockMicros() int64 {
	return time.Now().UnixMicro()
}

func (c *LocalClock) SetTempoCallback(fn func(tempoBPM float64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tempoCB = fn
}
