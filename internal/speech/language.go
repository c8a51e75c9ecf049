// Package speech announces training characters aloud.
package speech

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// Language is a supported announcement language, identified by its BCP 47 base code.
type Language string

const (
	English Language = "en"
	French  Language = "fr"

	DefaultLanguage = English
)

var (
	supported = []Language{English, French}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.French})
)

// Supported returns the announcement languages in display order.
func Supported() []Language {
	return append([]Language(nil), supported...)
}

// ParseLanguage maps a stored or user supplied code to a supported language.
// Regional variants match their base language ("fr-CA" is French). Anything
// unsupported, malformed or empty falls back to English.
func ParseLanguage(code string) Language {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	return supported[idx]
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return lo.Contains(supported, l)
}

// Next cycles to the following supported language.
func (l Language) Next() Language {
	i := lo.IndexOf(supported, l)
	return supported[(i+1)%len(supported)]
}

// Voice returns the espeak-ng voice name for l.
func (l Language) Voice() string {
	if !l.Valid() {
		return string(DefaultLanguage)
	}
	return string(l)
}

func (l Language) String() string {
	switch l {
	case English:
		return "English"
	case French:
		return "French"
	default:
		return string(l)
	}
}
