package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/tone"
)

// Synth sounds single tones. *tone.Synthesizer implements it.
type Synth interface {
	Play(ctx context.Context, d time.Duration, p tone.Params) error
	Ready() error
}

// SequencePlayer sounds the symbols of one character.
type SequencePlayer struct {
	synth Synth
	clock Clock
}

// NewSequencePlayer creates a player that sounds tones on synth and waits on clock.
func NewSequencePlayer(synth Synth, clock Clock) *SequencePlayer {
	if clock == nil {
		clock = RealClock{}
	}
	return &SequencePlayer{synth: synth, clock: clock}
}

// Play sounds symbols in order at wpm, with one intra-character gap between
// consecutive symbols and none after the last. It returns nil once the final
// tone has finished. If ctx is cancelled the in-flight tone is cut short and
// the context error is returned.
func (p *SequencePlayer) Play(ctx context.Context, symbols []cw.Symbol, params tone.Params, wpm int) error {
	timing, err := cw.Durations(cw.ClampWPM(wpm))
	if err != nil {
		return err
	}

	for i, s := range symbols {
		if err := p.synth.Play(ctx, timing.Tone(s), params); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("play %s: %w", s, err)
		}
		if i == len(symbols)-1 {
			break
		}
		if err := p.clock.Sleep(ctx, timing.IntraGap); err != nil {
			return err
		}
	}
	return nil
}
