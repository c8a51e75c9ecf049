// internal/cw/timing.go
package cw

import (
	"errors"
	"time"
)

// Morse code timing ratios (ITU standard)
const (
	// DahDitRatio is the ratio of dah duration to dit duration (ITU: 3:1)
	DahDitRatio = 3
	// IntraCharSpaceRatio is the ratio of space between elements within a character to dit (ITU: 1:1)
	IntraCharSpaceRatio = 1
	// InterCharSpaceRatio is the ratio of space between characters to dit (ITU: 3:1)
	InterCharSpaceRatio = 3
	// WordSpaceRatio is the ratio of space between words to dit (ITU: 7:1)
	WordSpaceRatio = 7

	// DitsPerWord is the standard word "PARIS " = 50 dit units
	DitsPerWord = 50
	// DitAtOneWPM is the dit duration at 1 WPM: 60s / 50 units = 1.2s
	DitAtOneWPM = 1200 * time.Millisecond

	// farnsworthSpaceUnits is the number of spacing units in "PARIS " (4 char gaps of 3 + one word gap of 7)
	farnsworthSpaceUnits = 19
	// parisSymbolSeconds is the symbol-only portion of "PARIS " at 1 WPM: 31 units * 1.2s
	parisSymbolSeconds = 37.2
)

var (
	// ErrInvalidWPM indicates WPM must be positive
	ErrInvalidWPM = errors.New("WPM must be positive")
	// ErrInvalidFarnsworthWPM indicates Farnsworth WPM must not be negative
	ErrInvalidFarnsworthWPM = errors.New("farnsworth WPM must not be negative")
)

// Timing holds every duration derived from a speed setting.
type Timing struct {
	Dit          time.Duration
	Dah          time.Duration
	IntraGap     time.Duration // between elements of one character
	InterCharGap time.Duration // between characters
	InterWordGap time.Duration // between words
}

// ClampWPM returns wpm raised to the minimum valid speed of 1.
func ClampWPM(wpm int) int {
	if wpm < 1 {
		return 1
	}
	return wpm
}

// Durations derives all timing values from wpm using the PARIS convention.
// Every value is an exact multiple of the dit.
func Durations(wpm int) (Timing, error) {
	if wpm <= 0 {
		return Timing{}, ErrInvalidWPM
	}
	dit := DitAtOneWPM / time.Duration(wpm)
	return Timing{
		Dit:          dit,
		Dah:          DahDitRatio * dit,
		IntraGap:     IntraCharSpaceRatio * dit,
		InterCharGap: InterCharSpaceRatio * dit,
		InterWordGap: WordSpaceRatio * dit,
	}, nil
}

// Farnsworth keeps the element timing of charWPM but stretches the character and
// word gaps so the overall rate drops to effectiveWPM (ARRL formula).
// An effectiveWPM of 0, or one that is not below charWPM, yields Durations(charWPM).
func Farnsworth(charWPM, effectiveWPM int) (Timing, error) {
	t, err := Durations(charWPM)
	if err != nil {
		return Timing{}, err
	}
	if effectiveWPM < 0 {
		return Timing{}, ErrInvalidFarnsworthWPM
	}
	if effectiveWPM == 0 || effectiveWPM >= charWPM {
		return t, nil
	}

	c := float64(charWPM)
	s := float64(effectiveWPM)
	delay := (60*c - parisSymbolSeconds*s) / (s * c) // seconds of spacing per word
	unit := time.Duration(delay / farnsworthSpaceUnits * float64(time.Second))

	t.InterCharGap = InterCharSpaceRatio * unit
	t.InterWordGap = WordSpaceRatio * unit
	return t, nil
}

// Tone returns the tone duration for a single symbol.
func (t Timing) Tone(s Symbol) time.Duration {
	if s == Dah {
		return t.Dah
	}
	return t.Dit
}

// CharacterDuration returns the sounding length of one character: its tones
// plus the intra-character gaps, without any trailing gap.
func (t Timing) CharacterDuration(symbols []Symbol) time.Duration {
	var total time.Duration
	for i, s := range symbols {
		if i > 0 {
			total += t.IntraGap
		}
		total += t.Tone(s)
	}
	return total
}
