// internal/dsp/oscillator.go
// Package dsp provides the signal generation and filtering blocks used to build tones.
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and less than Nyquist
	ErrInvalidFrequency = errors.New("frequency must be positive and less than Nyquist frequency")
)

const twoPi = 2 * math.Pi

// Oscillator is a phase-accumulating sine generator.
type Oscillator struct {
	phase float64
	step  float64 // phase increment per sample: 2π f / fs
}

// NewOscillator creates a sine oscillator at frequency Hz for the given sample rate.
func NewOscillator(frequency, sampleRate float64) (*Oscillator, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return nil, ErrInvalidFrequency
	}
	return &Oscillator{step: twoPi * frequency / sampleRate}, nil
}

// Next returns the next sample in the range -1.0 to 1.0.
func (o *Oscillator) Next() float64 {
	v := math.Sin(o.phase)
	o.phase += o.step
	if o.phase >= twoPi {
		o.phase -= twoPi
	}
	return v
}
