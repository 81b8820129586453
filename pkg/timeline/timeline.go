// Package timeline implements the pure time-conversion math shared by the
// sequence store and the scheduler: mapping between musical beats, audio
// samples and MIDI subticks for a given tempo and sample rate.
//
// Every function here is allocation-free and side-effect-free. Callers must
// not pass NaN or infinite inputs; behavior is undefined if they do.
package timeline

import "math"

// PPQ is the number of subticks (pulses) per quarter note used by
// subtick_of_beat. 96 matches the resolution most step sequencers quantize
// to.
const PPQ = 96

// BeatsToSamples converts a beat offset to a sample offset at the given
// tempo (beats per minute) and sample rate (samples per second).
func BeatsToSamples(beats, tempoBPM float64, sampleRate float64) float64 {
	return beats / tempoBPM * 60 * sampleRate
}

// SamplesPerBeat returns the number of audio samples spanned by one beat at
// the given tempo and sample rate.
func SamplesPerBeat(tempoBPM float64, sampleRate float64) float64 {
	return sampleRate * 60 / tempoBPM
}

// SamplesPerSubtick returns the number of audio samples spanned by one
// PPQ subtick.
func SamplesPerSubtick(tempoBPM float64, sampleRate float64) float64 {
	return SamplesPerBeat(tempoBPM, sampleRate) / PPQ
}

// SubtickOfBeat returns the PPQ subtick index of a beat position's
// fractional part, in [0, PPQ). Only the fractional part of beatPosition
// matters, so this is periodic with period 1 beat.
func SubtickOfBeat(beatPosition float64) int {
	frac := beatPosition - math.Floor(beatPosition)
	return int(math.Floor(PPQ * frac))
}

// ModularPosition converts a beat position to a sample offset modulo the
// sample-length of lengthBeats, i.e. the sample position within one loop
// iteration of a sequence of that length.
func ModularPosition(beats, lengthBeats, tempoBPM, sampleRate float64) float64 {
	return math.Mod(BeatsToSamples(beats, tempoBPM, sampleRate), BeatsToSamples(lengthBeats, tempoBPM, sampleRate))
}
