// Package wavout renders training sessions to WAV files instead of the sound card.
package wavout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ColonelBlimp/cwtrainer/internal/tone"
)

const (
	BitDepth = 16
	// pcmFormat is the WAVE_FORMAT_PCM tag
	pcmFormat = 1
)

var ErrEmpty = errors.New("nothing recorded")

// Recorder stands in for both the synthesizer and the clock: tones are
// rendered and gaps become silence, without waiting in real time.
type Recorder struct {
	sampleRate float64

	mu      sync.Mutex
	samples []float32
}

// NewRecorder creates an empty mono recording at sampleRate Hz.
func NewRecorder(sampleRate float64) *Recorder {
	return &Recorder{sampleRate: sampleRate}
}

// Ready always succeeds; a recording needs no device.
func (r *Recorder) Ready() error {
	return nil
}

// Play appends a rendered tone.
func (r *Recorder) Play(ctx context.Context, d time.Duration, p tone.Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	samples, err := tone.Render(d, p, r.sampleRate)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, samples...)
	return nil
}

// Sleep appends d of silence.
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n := int(math.Round(d.Seconds() * r.sampleRate))
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, make([]float32, n)...)
	return nil
}

// Len returns the number of samples recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Duration returns the length of the recording.
func (r *Recorder) Duration() time.Duration {
	return time.Duration(math.Round(float64(r.Len()) / r.sampleRate * float64(time.Second)))
}

// Samples returns a copy of the recording.
func (r *Recorder) Samples() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float32(nil), r.samples...)
}

// Encode writes the recording as 16-bit mono PCM WAV.
func (r *Recorder) Encode(w io.WriteSeeker) error {
	samples := r.Samples()
	if len(samples) == 0 {
		return ErrEmpty
	}

	rate := int(r.sampleRate)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           toPCM16(samples),
		SourceBitDepth: BitDepth,
	}

	enc := wav.NewEncoder(w, rate, BitDepth, 1, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}

// Save encodes the recording to path.
func (r *Recorder) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return r.Encode(f)
}

func toPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		out[i] = int(math.Round(v * math.MaxInt16))
	}
	return out
}
