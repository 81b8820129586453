// Package cli parses the command-line / environment-variable configuration
// surface for the demo sequencer binary (spec §6 "Configuration surface").
// None of this runs on the audio thread; it only builds the
// construction-time Config and locates the sequence file to load.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything parsed from argv/env needed to construct an
// Orchestrator and its collaborators.
type Config struct {
	SequenceFile string // path to the YAML SequenceSet document (positional arg)

	TempoBPM          float64
	SampleRateHz      int
	BufferSizeSamples int
	QuantumBeats      float64 // process-wide quantum for the clock service only; default 4

	Destination   string
	SoundFontPath string // optional; required by Preview for the meltysynth preview transport
	Preview       bool   // audition the sequence through the local software synthesizer

	Timeout  time.Duration // 0 is unlimited
	LogLevel string        // debug, info, warn, error
	ShowHelp bool
}

// ParseArgs parses args (typically os.Args[1:]) into a Config, applying
// environment-variable fallbacks for log level and timeout the same way
// this codebase's other command-line entry points do.
func ParseArgs(args []string) (*Config, error) {
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("miditimeline", flag.ContinueOnError)

	config := &Config{}

	fs.Float64Var(&config.TempoBPM, "tempo", 120, "tempo in beats per minute")
	fs.Float64Var(&config.TempoBPM, "b", 120, "tempo in beats per minute (short form)")
	fs.IntVar(&config.SampleRateHz, "sample-rate", 44100, "audio sample rate in Hz")
	fs.IntVar(&config.BufferSizeSamples, "buffer-size", 512, "audio buffer size in samples")
	fs.Float64Var(&config.QuantumBeats, "quantum", 4, "clock-service phase quantum in beats (does not affect the scheduler)")
	fs.StringVar(&config.Destination, "destination", "default", "MIDI transport destination name")
	fs.StringVar(&config.SoundFontPath, "soundfont", "", "path to a SoundFont (.sf2) file, required by -preview")
	fs.BoolVar(&config.Preview, "preview", false, "audition the sequence through the local software synthesizer")

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "exit after this many seconds (0 = unlimited)")
	fs.IntVar(&timeoutSec, "t", 0, "exit after this many seconds (short form)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (short form)")
	fs.BoolVar(&config.ShowHelp, "help", false, "show this help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show this help (short form)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// Environment variables only apply when the flag's value equals its
	// default, so an explicit non-default flag wins; a flag explicitly set
	// to its default value (e.g. "-l info") is still overridden by the
	// environment.
	if config.LogLevel == "info" {
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			config.LogLevel = strings.ToLower(v)
		}
	}
	if timeoutSec == 0 {
		if v := os.Getenv("TIMEOUT"); v != "" {
			if t, err := strconv.Atoi(v); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if config.TempoBPM <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %v", config.TempoBPM)
	}
	if config.SampleRateHz <= 0 {
		return nil, fmt.Errorf("sample-rate must be positive, got %d", config.SampleRateHz)
	}
	if config.BufferSizeSamples <= 0 {
		return nil, fmt.Errorf("buffer-size must be positive, got %d", config.BufferSizeSamples)
	}
	if config.Preview && config.SoundFontPath == "" {
		return nil, fmt.Errorf("-preview requires -soundfont")
	}

	if fs.NArg() > 0 {
		config.SequenceFile = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs moves flags before positional arguments so the flag
// package's strict left-to-right parsing doesn't stop at the first bare
// path.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// A flag's value may follow as a separate argument
			// (e.g. "-t 5"); boolean flags never consume one.
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if arg != "-h" && arg != "-help" && arg != "--help" && arg != "-preview" && arg != "--preview" {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp writes the usage message to stdout.
func PrintHelp() {
	fmt.Fprint(os.Stdout, `miditimeline - network-synchronized MIDI step sequencer

Usage:
  miditimeline [options] <sequence-file.yaml>

Options:
  -b, --tempo <bpm>          Tempo in beats per minute (default 120)
      --sample-rate <hz>     Audio sample rate (default 44100)
      --buffer-size <n>      Audio buffer size in samples (default 512)
      --quantum <beats>      Clock-service phase quantum (default 4)
      --destination <name>  MIDI transport destination name (default "default")
      --soundfont <path>     SoundFont (.sf2) for -preview
      --preview              Audition the sequence through the local synth
  -t, --timeout <seconds>    Exit after this many seconds (default: unlimited)
  -l, --log-level <level>    debug, info, warn, error (default info)
  -h, --help                 Show this help

Environment Variables:
  LOG_LEVEL   same as --log-level
  TIMEOUT     same as --timeout

Examples:
  miditimeline sequences/four-on-the-floor.yaml
  miditimeline --tempo 128 --preview --soundfont piano.sf2 sequences/arp.yaml
`)
}
