package orchestrator

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// EbitenAudioHost adapts an Orchestrator to Ebitengine's audio.Context /
// audio.Player, the same io.Reader-driven shape this codebase already uses
// for its own audio playback streams: the realtime thread pulls bytes
// through Read, and Read is where the per-buffer callback happens.
//
// Read never blocks on anything but the orchestrator's own (non-blocking)
// work: it zero-fills its output and lets RenderBuffer dispatch MIDI on the
// side.
type EbitenAudioHost struct {
	orch         *Orchestrator
	sampleRateHz int

	start       time.Time
	startSet    atomic.Bool
	sampleCount atomic.Int64

	ctx    *audio.Context
	player *audio.Player
}

// NewEbitenAudioHost creates an audio host around orch. sampleRateHz
// describes the stream the caller will open; the buffer size of each call
// is taken from the length Read is given. ctx may be nil, in which case a
// new audio.Context is created.
func NewEbitenAudioHost(orch *Orchestrator, ctx *audio.Context, sampleRateHz int) *EbitenAudioHost {
	if ctx == nil {
		ctx = audio.NewContext(sampleRateHz)
	}
	return &EbitenAudioHost{orch: orch, sampleRateHz: sampleRateHz, ctx: ctx}
}

// Start opens the underlying ebiten audio player and begins pulling
// buffers through Read.
func (h *EbitenAudioHost) Start() error {
	player, err := h.ctx.NewPlayer(h)
	if err != nil {
		return err
	}
	h.start = time.Now()
	h.startSet.Store(true)
	h.player = player
	h.player.Play()
	return nil
}

// Stop closes the underlying player.
func (h *EbitenAudioHost) Stop() {
	if h.player != nil {
		h.player.Close()
		h.player = nil
	}
}

// bytesPerSample is 16-bit stereo PCM, matching the format Ebitengine's
// audio.Player expects and this codebase's own MIDI stream already
// produces.
const bytesPerSample = 4

// Read implements io.Reader: it is the realtime audio callback. Each call
// is one buffer; RenderBuffer fills p with silence and dispatches any
// in-window MIDI events via the orchestrator's transport.
func (h *EbitenAudioHost) Read(p []byte) (int, error) {
	n := len(p) - len(p)%bytesPerSample
	if n == 0 {
		return 0, nil
	}

	sampleTime := time.Duration(0)
	if h.startSet.Load() {
		sampleTime = time.Since(h.start)
	}

	params := BufferParams{
		BufferSizeSamples: n / bytesPerSample,
		SampleRateHz:      h.sampleRateHz,
		OutputLatency:     0,
		SampleTime:        sampleTime,
		SampleClock:       uint64(h.sampleCount.Load()),
	}
	h.orch.RenderBuffer(params, p[:n])
	h.sampleCount.Add(int64(params.BufferSizeSamples))

	return n, nil
}

var _ io.Reader = (*EbitenAudioHost)(nil)
