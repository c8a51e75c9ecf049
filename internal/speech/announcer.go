package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/GiGurra/cmder"
	"github.com/rs/zerolog"
)

const (
	DefaultEspeakPath = "espeak-ng"
	DefaultRate       = 160 // words per minute
	DefaultTimeout    = 5 * time.Second
)

// Announcer speaks a short text. Speak returns exactly once, when the speech
// has finished or has been skipped.
type Announcer interface {
	Speak(ctx context.Context, text string, lang Language) error
}

// Silent never makes a sound.
type Silent struct{}

func (Silent) Speak(ctx context.Context, _ string, _ Language) error {
	return ctx.Err()
}

// Espeak speaks through the espeak-ng command line synthesizer.
type Espeak struct {
	path    string
	rate    int
	timeout time.Duration
	log     zerolog.Logger
}

// NewEspeak locates the espeak binary. If it is not installed the announcer
// still works but skips every announcement.
func NewEspeak(path string, rate int, log zerolog.Logger) *Espeak {
	log = log.With().Str("component", "speech").Logger()
	if path == "" {
		path = DefaultEspeakPath
	}
	if rate <= 0 {
		rate = DefaultRate
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		log.Warn().Str("path", path).Msg("Speech synthesizer not found, announcements disabled")
		resolved = ""
	} else {
		log.Debug().Str("path", resolved).Msg("Speech synthesizer found")
	}

	return &Espeak{
		path:    resolved,
		rate:    rate,
		timeout: DefaultTimeout,
		log:     log,
	}
}

// Available reports whether a synthesizer binary was found.
func (e *Espeak) Available() bool {
	return e.path != ""
}

func (e *Espeak) Speak(ctx context.Context, text string, lang Language) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.Available() || text == "" {
		return nil
	}

	res := cmder.New(e.path, "-v", lang.Voice(), "-s", strconv.Itoa(e.rate), text).
		WithAttemptTimeout(e.timeout).
		Run(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("speak %q: %w", text, res.Err)
	}
	e.log.Trace().Str("text", text).Str("voice", lang.Voice()).Msg("Announced")
	return nil
}
