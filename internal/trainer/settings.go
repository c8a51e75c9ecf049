package trainer

import (
	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/speech"
	"github.com/ColonelBlimp/cwtrainer/internal/tone"
)

// SetWPM sets the character speed, clamped to at least 1, and returns the value
// in effect. Like every setter it applies from the next tone, gap or
// announcement; anything already sounding is left alone.
func (s *Scheduler) SetWPM(wpm int) int {
	wpm = cw.ClampWPM(wpm)
	s.update(func(set *Settings) { set.WPM = wpm })
	s.persist(config.KeyWPM, wpm)
	return wpm
}

// SetRepetitions sets how many times each character is played, at least once.
func (s *Scheduler) SetRepetitions(n int) int {
	n = max(n, 1)
	s.update(func(set *Settings) { set.Repetitions = n })
	s.persist(config.KeyRepetitions, n)
	return n
}

// SetToneFrequency sets the tone pitch, clamped to the supported range in Hz.
func (s *Scheduler) SetToneFrequency(hz float64) float64 {
	hz = tone.ClampFrequency(hz)
	s.update(func(set *Settings) { set.Tone.FrequencyHz = hz })
	s.persist(config.KeyToneFrequency, hz)
	return hz
}

// SetToneVolume sets the tone level in dB, clamped to -60..0.
func (s *Scheduler) SetToneVolume(db float64) float64 {
	db = tone.ClampVolume(db)
	s.update(func(set *Settings) { set.Tone.VolumeDb = db })
	s.persist(config.KeyToneVolume, db)
	return db
}

// SetLanguage selects the announcement language; unsupported codes select English.
func (s *Scheduler) SetLanguage(code string) speech.Language {
	lang := speech.ParseLanguage(code)
	s.update(func(set *Settings) { set.Language = lang })
	s.persist(config.KeyLanguage, string(lang))
	return lang
}

// SetAnnounce turns spoken announcements on or off.
func (s *Scheduler) SetAnnounce(on bool) bool {
	s.update(func(set *Settings) { set.Announce = on })
	s.persist(config.KeyAnnounce, on)
	return on
}

// SetFarnsworth sets the effective speed for Farnsworth spacing; 0 disables it.
func (s *Scheduler) SetFarnsworth(wpm int) int {
	wpm = max(wpm, 0)
	s.update(func(set *Settings) { set.FarnsworthWPM = wpm })
	s.persist(config.KeyFarnsworthWPM, wpm)
	return wpm
}

// Settings returns a snapshot of the current preferences.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// WPM returns the character speed.
func (s *Scheduler) WPM() int { return s.Settings().WPM }

// Repetitions returns how many times each character is played.
func (s *Scheduler) Repetitions() int { return s.Settings().Repetitions }

// ToneParams returns the tone used from the next repetition on.
func (s *Scheduler) ToneParams() tone.Params { return s.Settings().Tone }

// ToneVolume returns the tone level in dB. ToneParams().Gain() is the matching
// linear peak amplitude.
func (s *Scheduler) ToneVolume() float64 { return s.Settings().Tone.VolumeDb }

// Language returns the announcement language.
func (s *Scheduler) Language() speech.Language { return s.Settings().Language }

func (s *Scheduler) update(fn func(*Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
}

// persist stores a changed preference. Failures are logged, the in-memory
// value stays in effect.
func (s *Scheduler) persist(key string, value any) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Persist(key, value); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to save preference")
	}
}
