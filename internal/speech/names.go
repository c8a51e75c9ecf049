package speech

import "unicode"

var punctuation = map[Language]map[rune]string{
	English: {
		'.': "period",
		',': "comma",
		'?': "question mark",
	},
	French: {
		'.': "point",
		',': "virgule",
		'?': "point d'interrogation",
	},
}

// Name returns the text spoken for r. Letters and digits are spoken as
// themselves; punctuation uses its name in lang.
func Name(r rune, lang Language) string {
	if !lang.Valid() {
		lang = DefaultLanguage
	}
	if name, ok := punctuation[lang][r]; ok {
		return name
	}
	return string(unicode.ToUpper(r))
}
