// internal/dsp/goertzel.go
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidBlockSize indicates block size must be positive
	ErrInvalidBlockSize = errors.New("block size must be positive")
	// ErrInsufficientSamples indicates not enough samples for the configured block size
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// Goertzel measures the level of a single frequency in a block of samples.
// It is used to check rendered tones: a pure sine of amplitude A at the target
// frequency measures approximately A.
type Goertzel struct {
	blockSize   int
	coefficient float64 // 2 * cos(2π k / N)
	normalizer  float64 // 2 / N
}

// NewGoertzel creates a detector for frequency Hz over blocks of blockSize samples.
func NewGoertzel(frequency, sampleRate float64, blockSize int) (*Goertzel, error) {
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if frequency <= 0 || frequency >= sampleRate/2 {
		return nil, ErrInvalidFrequency
	}

	k := frequency / sampleRate * float64(blockSize)
	omega := twoPi * k / float64(blockSize)

	return &Goertzel{
		blockSize:   blockSize,
		coefficient: 2 * math.Cos(omega),
		normalizer:  2 / float64(blockSize),
	}, nil
}

// BlockSize returns the number of samples consumed per measurement.
func (g *Goertzel) BlockSize() int {
	return g.blockSize
}

// Magnitude returns the level of the target frequency in the first BlockSize samples.
func (g *Goertzel) Magnitude(samples []float32) (float64, error) {
	if len(samples) < g.blockSize {
		return 0, ErrInsufficientSamples
	}

	var s0, s1, s2 float64
	for i := 0; i < g.blockSize; i++ {
		s0 = float64(samples[i]) + g.coefficient*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - g.coefficient*s1*s2
	// Guard against floating point errors causing negative values
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * g.normalizer, nil
}
