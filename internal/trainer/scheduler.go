// Package trainer drives a listening drill: random characters are sounded as
// morse, repeated, optionally announced, and separated by word gaps until the
// session is stopped.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/recovery"
	"github.com/ColonelBlimp/cwtrainer/internal/speech"
	"github.com/ColonelBlimp/cwtrainer/internal/tone"
)

var (
	// ErrAudioUnavailable is returned by Start when no tone can be produced
	ErrAudioUnavailable = errors.New("audio unavailable")

	// errComplete ends a session that reached its character limit
	errComplete = errors.New("session complete")
)

// Persister stores a single preference. *config.Store implements it.
type Persister interface {
	Persist(key string, value any) error
}

// Settings are the user preferences the scheduler reads at the start of every
// unit of work.
type Settings struct {
	WPM           int
	Repetitions   int
	Tone          tone.Params
	Language      speech.Language
	Announce      bool
	FarnsworthWPM int // 0 disables Farnsworth spacing
}

// DefaultSettings returns 20 WPM, three repetitions, a 700 Hz tone and
// English announcements.
func DefaultSettings() Settings {
	return Settings{
		WPM:         20,
		Repetitions: 3,
		Tone:        tone.DefaultParams(),
		Language:    speech.DefaultLanguage,
		Announce:    true,
	}
}

func (s Settings) normalize() Settings {
	s.WPM = cw.ClampWPM(s.WPM)
	s.Repetitions = max(s.Repetitions, 1)
	s.FarnsworthWPM = max(s.FarnsworthWPM, 0)
	s.Tone.FrequencyHz = tone.ClampFrequency(s.Tone.FrequencyHz)
	s.Tone.VolumeDb = tone.ClampVolume(s.Tone.VolumeDb)
	if !s.Language.Valid() {
		s.Language = speech.ParseLanguage(string(s.Language))
	}
	return s
}

// Options configures a Scheduler. Zero values select the defaults.
type Options struct {
	Settings Settings
	// Alphabet restricts the characters drawn; unknown runes are ignored and
	// an empty alphabet means the whole table
	Alphabet []rune
	// Characters ends each session after this many characters; 0 runs until Stop
	Characters int
	Rand       *rand.Rand
	Clock      Clock
	Announcer  speech.Announcer
	Persister  Persister
	Observer   Observer
	Log        zerolog.Logger
}

type session struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	char       rune
	symbols    []cw.Symbol
	played     int // repetitions of char completed
	characters int // characters started
	fresh      bool
}

// Scheduler runs at most one training session at a time. All methods are safe
// for concurrent use.
type Scheduler struct {
	synth     Synth
	player    *SequencePlayer
	clock     Clock
	announcer speech.Announcer
	persister Persister
	observer  Observer
	log       zerolog.Logger
	alphabet  []rune
	limit     int

	mu       sync.Mutex
	settings Settings
	rng      *rand.Rand
	state    State
	sess     *session
	last     *session
}

// New creates an idle scheduler that plays tones on synth.
func New(synth Synth, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Announcer == nil {
		opts.Announcer = speech.Silent{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}

	alphabet := lo.Uniq(lo.Filter(lo.Map(opts.Alphabet, func(r rune, _ int) rune {
		return unicode.ToUpper(r)
	}), func(r rune, _ int) bool {
		_, ok := cw.Lookup(r)
		return ok
	}))
	if len(alphabet) == 0 {
		alphabet = cw.Characters()
	}

	return &Scheduler{
		synth:     synth,
		player:    NewSequencePlayer(synth, opts.Clock),
		clock:     opts.Clock,
		announcer: opts.Announcer,
		persister: opts.Persister,
		observer:  opts.Observer,
		log:       opts.Log.With().Str("component", "trainer").Logger(),
		alphabet:  alphabet,
		limit:     max(opts.Characters, 0),
		settings:  opts.Settings.normalize(),
		rng:       opts.Rand,
	}
}

// Start begins a session. It is a no-op while a session is active. If the
// synthesizer cannot produce sound, Start returns ErrAudioUnavailable and the
// scheduler stays idle.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess != nil {
		return nil
	}
	if err := s.synth.Ready(); err != nil {
		return fmt.Errorf("%w: %w", ErrAudioUnavailable, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:     uuid.New(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.sess = sess
	s.last = sess
	s.nextCharacter(sess)

	s.log.Info().
		Str("session", sess.id.String()).
		Int("wpm", s.settings.WPM).
		Int("repetitions", s.settings.Repetitions).
		Msg("Training started")

	go s.run(sess)
	return nil
}

// Stop ends the active session and waits until its driver has exited. When
// Stop returns no tone is sounding and no wait is pending. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	sess := s.last
	if s.sess != nil {
		s.sess.cancel()
		s.sess = nil
		s.state = StateIdle
	}
	s.mu.Unlock()

	if sess != nil {
		<-sess.done
	}
}

// Done returns a channel closed when the most recent session has ended. It is
// already closed if no session was ever started.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return s.last.done
}

// Err returns the error that ended the most recent session, or nil if it was
// stopped, completed, or is still running.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	return s.last.err
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether a session is running.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess != nil
}

// Session returns the id of the active session, or uuid.Nil when idle.
func (s *Scheduler) Session() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return uuid.Nil
	}
	return s.sess.id
}

// nextCharacter draws a character uniformly from the alphabet. Requires s.mu.
func (s *Scheduler) nextCharacter(sess *session) {
	r := s.alphabet[s.rng.IntN(len(s.alphabet))]
	symbols, _ := cw.Lookup(r)

	sess.char = r
	sess.symbols = symbols
	sess.played = 0
	sess.characters++
	sess.fresh = true

	if s.settings.Announce {
		s.state = StateAnnouncing
	} else {
		s.state = StatePlaying
	}
}

func (s *Scheduler) run(sess *session) {
	defer recovery.HandlePanicFunc(sess.cancel)

	var err error
	for err == nil {
		err = s.step(sess)
	}
	s.finish(sess, err)
}

// step performs the blocking work of the current state and then advances the
// state. The lock is not held while blocked.
func (s *Scheduler) step(sess *session) error {
	s.mu.Lock()
	if err := sess.ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	state := s.state
	set := s.settings
	char, symbols, played := sess.char, sess.symbols, sess.played
	fresh := sess.fresh
	sess.fresh = false
	s.mu.Unlock()

	ctx := sess.ctx
	if fresh {
		if timing, err := cw.Durations(set.WPM); err == nil {
			s.log.Debug().
				Str("char", string(char)).
				Dur("length", timing.CharacterDuration(symbols)).
				Msg("Character picked")
		}
		s.emit(Event{Kind: EventCharacter, Session: sess.id, Char: char, Pattern: cw.Format(symbols)})
	}

	switch state {
	case StateAnnouncing:
		if err := s.announce(ctx, char, set); err != nil {
			return err
		}
		return s.advance(sess, func() { s.state = StatePlaying })

	case StatePlaying:
		s.emit(Event{Kind: EventRepetition, Session: sess.id, Char: char, Pattern: cw.Format(symbols), Repetition: played + 1})
		if err := s.player.Play(ctx, symbols, set.Tone, set.WPM); err != nil {
			return err
		}
		return s.advance(sess, func() {
			sess.played++
			if sess.played < s.settings.Repetitions {
				s.state = StateGap
			} else {
				s.state = StateRevealing
			}
		})

	case StateGap:
		timing, err := cw.Farnsworth(set.WPM, set.FarnsworthWPM)
		if err != nil {
			return err
		}
		if err := s.clock.Sleep(ctx, timing.InterCharGap); err != nil {
			return err
		}
		return s.advance(sess, func() { s.state = StatePlaying })

	case StateRevealing:
		s.emit(Event{Kind: EventRevealed, Session: sess.id, Char: char, Pattern: cw.Format(symbols)})
		if err := s.announce(ctx, char, set); err != nil {
			return err
		}
		return s.advance(sess, func() { s.state = StateWordGap })

	case StateWordGap:
		timing, err := cw.Farnsworth(set.WPM, set.FarnsworthWPM)
		if err != nil {
			return err
		}
		if err := s.clock.Sleep(ctx, timing.InterWordGap); err != nil {
			return err
		}
		if s.limit > 0 && sess.characters >= s.limit {
			return errComplete
		}
		return s.advance(sess, func() { s.nextCharacter(sess) })

	default:
		return fmt.Errorf("unexpected state %s", state)
	}
}

// advance applies a state transition unless the session has been stopped in
// the meantime.
func (s *Scheduler) advance(sess *session, transition func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sess.ctx.Err(); err != nil {
		return err
	}
	transition()
	return nil
}

// announce speaks char when announcements are enabled. Speech failures only
// skip the announcement.
func (s *Scheduler) announce(ctx context.Context, char rune, set Settings) error {
	if !set.Announce {
		return nil
	}
	err := s.announcer.Speak(ctx, speech.Name(char, set.Language), set.Language)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("char", string(char)).Msg("Announcement skipped")
	}
	return nil
}

func (s *Scheduler) finish(sess *session, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, errComplete) {
		err = nil
	}

	s.mu.Lock()
	sess.err = err
	if s.sess == sess {
		s.sess = nil
		s.state = StateIdle
	}
	characters := sess.characters
	s.mu.Unlock()
	sess.cancel()

	if err != nil {
		s.log.Error().Err(err).Str("session", sess.id.String()).Msg("Training aborted")
	} else {
		s.log.Info().
			Str("session", sess.id.String()).
			Int("characters", characters).
			Msg("Training stopped")
	}

	s.emit(Event{Kind: EventStopped, Session: sess.id, Err: err})
	close(sess.done)
}

func (s *Scheduler) emit(e Event) {
	if s.observer != nil {
		s.observer(e)
	}
}
