// Package tone turns a duration and a set of tone parameters into an audible,
// click-free morse element.
package tone

import (
	"math"
	"time"
)

const (
	// EnvelopeRamp is the linear fade-in and fade-out applied to every tone
	EnvelopeRamp = time.Millisecond
	// FilterOffsetHz places the low-pass cutoff above the tone frequency
	FilterOffsetHz = 200.0

	DefaultFrequencyHz = 700.0
	DefaultVolumeDb    = 0.0

	MinFrequencyHz = 100.0
	MaxFrequencyHz = 3000.0
	MinVolumeDb    = -60.0
	MaxVolumeDb    = 0.0
)

// Params describes the sound of a tone.
type Params struct {
	FrequencyHz float64
	VolumeDb    float64
}

// DefaultParams returns a 700 Hz tone at full volume.
func DefaultParams() Params {
	return Params{
		FrequencyHz: DefaultFrequencyHz,
		VolumeDb:    DefaultVolumeDb,
	}
}

// Gain converts the volume to a linear peak amplitude: 10^(dB/20).
func (p Params) Gain() float64 {
	return math.Pow(10, p.VolumeDb/20)
}

// CutoffHz returns the low-pass filter cutoff for this tone.
func (p Params) CutoffHz() float64 {
	return p.FrequencyHz + FilterOffsetHz
}

// ClampFrequency limits hz to the playable range.
func ClampFrequency(hz float64) float64 {
	if math.IsNaN(hz) {
		return DefaultFrequencyHz
	}
	return math.Min(math.Max(hz, MinFrequencyHz), MaxFrequencyHz)
}

// ClampVolume limits db to the supported attenuation range.
func ClampVolume(db float64) float64 {
	if math.IsNaN(db) {
		return DefaultVolumeDb
	}
	return math.Min(math.Max(db, MinVolumeDb), MaxVolumeDb)
}
