// Command miditimeline is a demo host for the network-synchronized MIDI
// step sequencer: it loads a SequenceSet from a YAML file, drives a
// free-running LocalClock in place of the networked shared-clock service,
// and repeatedly calls the orchestrator the way a real audio host's
// callback would.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/miditimeline/pkg/cli"
	"github.com/zurustar/miditimeline/pkg/logger"
	"github.com/zurustar/miditimeline/pkg/orchestrator"
	"github.com/zurustar/miditimeline/pkg/scheduler"
	"github.com/zurustar/miditimeline/pkg/sequence"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "miditimeline:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("parsing args: %w", err)
	}

	if config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	if err := logger.Init(config.LogLevel); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	log := logger.Get()
	log.Info("miditimeline starting", "tempo", config.TempoBPM, "sample_rate", config.SampleRateHz, "buffer_size", config.BufferSizeSamples)

	seqSet, err := loadSequenceSet(config.SequenceFile)
	if err != nil {
		return fmt.Errorf("loading sequence set: %w", err)
	}
	log.Info("sequence set loaded", "sequences", seqSet.Len(), "events", seqSet.EventCount())

	orch, cleanup, err := buildOrchestrator(config, seqSet, log)
	if err != nil {
		return fmt.Errorf("building orchestrator: %w", err)
	}
	defer cleanup()

	ctx := context.Background()
	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	if config.Preview {
		log.Info("entering preview playback; waiting for timeout or interrupt")
		<-ctx.Done()
		return nil
	}

	return runHeadlessLoop(ctx, orch, config, log)
}

// loadSequenceSet opens and parses the sequence file named on the command
// line.
func loadSequenceSet(path string) (*sequence.SequenceSet, error) {
	if path == "" {
		return nil, fmt.Errorf("no sequence file given (see -h)")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sequence.LoadSequenceSetYAML(f)
}

// buildOrchestrator wires the Orchestrator and its collaborators from the
// parsed Config. The returned cleanup func stops the clock, any preview
// audio host, and the telemetry drain goroutine.
func buildOrchestrator(config *cli.Config, seqSet *sequence.SequenceSet, log *slog.Logger) (*orchestrator.Orchestrator, func(), error) {
	schedCfg := scheduler.Config{
		TempoBPM:   config.TempoBPM,
		SampleRate: float64(config.SampleRateHz),
		BufferSize: float64(config.BufferSizeSamples),
	}
	cfgStore := sequence.NewStore(&schedCfg)
	seqStore := sequence.NewStore(seqSet)

	clock := &orchestrator.LocalClock{TempoBPM: config.TempoBPM}
	clock.Start()

	hostClock := orchestrator.NewSystemHostClock()
	telemetry := orchestrator.NewTelemetry(log, 256)

	var transport orchestrator.MidiTransport = orchestrator.DiscardTransport{}
	var audioHost *orchestrator.EbitenAudioHost

	cleanup := func() {
		if audioHost != nil {
			audioHost.Stop()
		}
		clock.Stop()
		telemetry.Close()
	}

	orch := orchestrator.New(cfgStore, seqStore, clock, hostClock, transport, config.Destination)
	orch.Telemetry = telemetry
	orch.QuantumBeats = config.QuantumBeats

	if config.Preview {
		synth, err := loadSoundFont(config.SoundFontPath, config.SampleRateHz)
		if err != nil {
			return nil, cleanup, fmt.Errorf("loading soundfont: %w", err)
		}
		orch.Transport = orchestrator.NewMeltysynthTransport(synth)

		audioHost = orchestrator.NewEbitenAudioHost(orch, nil, config.SampleRateHz)
		if err := audioHost.Start(); err != nil {
			return nil, cleanup, fmt.Errorf("starting audio host: %w", err)
		}
		log.Info("preview audio host started", "soundfont", config.SoundFontPath)
	}

	return orch, cleanup, nil
}

// loadSoundFont opens a SoundFont file and constructs a meltysynth
// Synthesizer at the configured sample rate, for the -preview transport.
func loadSoundFont(path string, sampleRateHz int) (*meltysynth.Synthesizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sf, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, fmt.Errorf("parsing soundfont: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(sampleRateHz))
	return meltysynth.NewSynthesizer(sf, settings)
}

// runHeadlessLoop drives RenderBuffer on a fixed cadence matching one
// buffer's worth of wall-clock time, standing in for a real audio host's
// callback thread when no preview audio device is attached.
func runHeadlessLoop(ctx context.Context, orch *orchestrator.Orchestrator, config *cli.Config, log *slog.Logger) error {
	bufferDuration := time.Duration(float64(config.BufferSizeSamples) / float64(config.SampleRateHz) * float64(time.Second))
	ticker := time.NewTicker(bufferDuration)
	defer ticker.Stop()

	scratch := make([]byte, config.BufferSizeSamples*4)
	start := time.Now()
	var sampleClock uint64

	for {
		select {
		case <-ctx.Done():
			log.Info("run loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			params := orchestrator.BufferParams{
				BufferSizeSamples: config.BufferSizeSamples,
				SampleRateHz:      config.SampleRateHz,
				SampleTime:        time.Since(start),
				SampleClock:       sampleClock,
			}
			orch.RenderBuffer(params, scratch)
			sampleClock += uint64(config.BufferSizeSamples)
		}
	}
}
