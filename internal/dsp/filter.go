// internal/dsp/filter.go
package dsp

import "math"

const (
	// ButterworthQ gives a maximally flat passband for a second-order section
	ButterworthQ = 1 / math.Sqrt2
	// maxCutoffRatio keeps the cutoff safely below Nyquist
	maxCutoffRatio = 0.45
)

// LowPass is a second-order low-pass biquad (RBJ audio EQ cookbook),
// evaluated in transposed direct form II.
type LowPass struct {
	cutoff         float64
	b0, b1, b2     float64
	a1, a2         float64
	state1, state2 float64
}

// NewLowPass creates a low-pass filter. Cutoffs at or above 0.45 × sampleRate are
// clamped to that value so the filter stays stable.
func NewLowPass(cutoff, sampleRate float64) (*LowPass, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cutoff <= 0 {
		return nil, ErrInvalidFrequency
	}
	if limit := sampleRate * maxCutoffRatio; cutoff > limit {
		cutoff = limit
	}

	omega := twoPi * cutoff / sampleRate
	cosine := math.Cos(omega)
	alpha := math.Sin(omega) / (2 * ButterworthQ)
	a0 := 1 + alpha

	return &LowPass{
		cutoff: cutoff,
		b0:     (1 - cosine) / 2 / a0,
		b1:     (1 - cosine) / a0,
		b2:     (1 - cosine) / 2 / a0,
		a1:     -2 * cosine / a0,
		a2:     (1 - alpha) / a0,
	}, nil
}

// Process filters one sample.
func (f *LowPass) Process(x float64) float64 {
	y := f.b0*x + f.state1
	f.state1 = f.b1*x - f.a1*y + f.state2
	f.state2 = f.b2*x - f.a2*y
	return y
}
