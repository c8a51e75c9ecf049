// internal/cw/morse.go
// Package cw holds the Morse code table and the timing model used by the trainer.
package cw

import (
	"strings"
	"unicode"
)

// Symbol is a single Morse code element.
type Symbol uint8

const (
	// Dit is the short element (1 unit)
	Dit Symbol = iota
	// Dah is the long element (DahDitRatio units)
	Dah
)

// String returns the conventional notation: "." for dit, "-" for dah.
func (s Symbol) String() string {
	if s == Dah {
		return "-"
	}
	return "."
}

// order fixes the iteration order of the table: letters, digits, punctuation.
const order = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789.,?"

// patterns maps each trainable character to its dot/dash notation.
var patterns = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'.': ".-.-.-", ',': "--..--", '?': "..--..",
}

// table is built once from patterns and never mutated afterwards.
var table = buildTable()

func buildTable() map[rune][]Symbol {
	t := make(map[rune][]Symbol, len(patterns))
	for r, p := range patterns {
		symbols := make([]Symbol, 0, len(p))
		for _, c := range p {
			if c == '-' {
				symbols = append(symbols, Dah)
			} else {
				symbols = append(symbols, Dit)
			}
		}
		t[r] = symbols
	}
	return t
}

// Len returns the number of characters in the table.
func Len() int {
	return len(table)
}

// Characters returns every character of the table in a fixed order.
func Characters() []rune {
	return []rune(order)
}

// Lookup returns the symbol sequence for r. Letters are matched case-insensitively.
// The returned slice is a copy and may be modified by the caller.
func Lookup(r rune) ([]Symbol, bool) {
	symbols, ok := table[unicode.ToUpper(r)]
	if !ok {
		return nil, false
	}
	out := make([]Symbol, len(symbols))
	copy(out, symbols)
	return out, true
}

// Pattern returns the dot/dash notation for r, or "" if r is not in the table.
func Pattern(r rune) string {
	return patterns[unicode.ToUpper(r)]
}

// Format renders a symbol sequence as dot/dash text.
func Format(symbols []Symbol) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(s.String())
	}
	return b.String()
}
