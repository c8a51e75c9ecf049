package tone

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
)

// DefaultCompletionSlack is how long past the nominal tone length the
// synthesizer waits for the device before treating the tone as finished.
const DefaultCompletionSlack = 250 * time.Millisecond

// Sink is where tone voices are played. *audio.Output implements it.
type Sink interface {
	Attach(v audio.Voice) <-chan struct{}
	Detach(v audio.Voice)
	Ready() error
	SampleRate() float64
}

// Synthesizer plays one tone at a time on a Sink.
type Synthesizer struct {
	sink  Sink
	log   zerolog.Logger
	slack time.Duration
	live  atomic.Int32
}

// NewSynthesizer creates a synthesizer that renders tones to sink.
func NewSynthesizer(sink Sink, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		sink:  sink,
		log:   log.With().Str("component", "tone").Logger(),
		slack: DefaultCompletionSlack,
	}
}

// Ready reports whether the underlying sink can produce sound.
func (s *Synthesizer) Ready() error {
	return s.sink.Ready()
}

// Live returns the number of tone chains currently allocated.
func (s *Synthesizer) Live() int {
	return int(s.live.Load())
}

// Play sounds a tone of duration d and blocks until it has finished. If ctx is
// cancelled first, the tone is cut off and ctx.Err() is returned. The tone's
// resources are released before Play returns in every case.
func (s *Synthesizer) Play(ctx context.Context, d time.Duration, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	c, err := newChain(d, p, s.sink.SampleRate())
	if err != nil {
		return fmt.Errorf("build tone: %w", err)
	}
	s.live.Add(1)
	defer s.release(c)

	done := s.sink.Attach(c)
	timer := time.NewTimer(d + s.slack)
	defer timer.Stop()

	select {
	case <-done:
		// The sink also closes done when the device goes away
		if err := s.sink.Ready(); err != nil {
			return fmt.Errorf("playback interrupted: %w", err)
		}
		return nil
	case <-timer.C:
		s.log.Debug().Dur("duration", d).Msg("Tone completion timer fired before device")
		return nil
	case <-ctx.Done():
		s.log.Trace().Dur("duration", d).Msg("Tone cut off")
		return ctx.Err()
	}
}

func (s *Synthesizer) release(c *chain) {
	s.sink.Detach(c)
	s.live.Add(-1)
}
