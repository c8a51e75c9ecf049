package tone

import (
	"fmt"
	"math"
	"time"

	"github.com/ColonelBlimp/cwtrainer/internal/dsp"
)

// chain is one tone's oscillator -> low-pass -> envelope gain stage. It is
// consumed sample by sample and is never reused.
type chain struct {
	osc    *dsp.Oscillator
	filter *dsp.LowPass

	sampleRate float64
	total      int     // samples
	length     float64 // seconds, total / sampleRate
	ramp       float64 // seconds
	gain       float64
	pos        int
}

func newChain(d time.Duration, p Params, sampleRate float64) (*chain, error) {
	osc, err := dsp.NewOscillator(p.FrequencyHz, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oscillator: %w", err)
	}
	filter, err := dsp.NewLowPass(p.CutoffHz(), sampleRate)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	total := int(math.Round(d.Seconds() * sampleRate))
	length := float64(total) / sampleRate
	return &chain{
		osc:        osc,
		filter:     filter,
		sampleRate: sampleRate,
		total:      total,
		length:     length,
		ramp:       dsp.ClampRamp(EnvelopeRamp.Seconds(), length),
		gain:       p.Gain(),
	}, nil
}

// Read implements audio.Voice.
func (c *chain) Read(buf []float32) int {
	n := 0
	for n < len(buf) && c.pos < c.total {
		t := float64(c.pos) / c.sampleRate
		v := c.filter.Process(c.osc.Next()) * dsp.Envelope(t, c.length, c.ramp, c.gain)
		buf[n] = float32(v)
		n++
		c.pos++
	}
	return n
}

// Len returns the total number of samples the chain produces.
func (c *chain) Len() int {
	return c.total
}

// Render produces the samples of a single tone offline, exactly as they would
// be sent to the playback device.
func Render(d time.Duration, p Params, sampleRate float64) ([]float32, error) {
	c, err := newChain(d, p, sampleRate)
	if err != nil {
		return nil, err
	}
	out := make([]float32, c.Len())
	c.Read(out)
	return out, nil
}
