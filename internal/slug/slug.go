// Package slug строит URL-безопасные идентификаторы из заголовков.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	dashes = regexp.MustCompile(`[-\s]+`)
)

// Make возвращает ASCII-slug: диакритика снимается, всё, кроме букв, цифр,
// пробелов, '_' и '-', выбрасывается, пробелы схлопываются в '-'.
// Символы вне ASCII (например, кириллица) отбрасываются.
func Make(s string) string {
	return build(s, false)
}

// MakeUnicode работает как Make, но сохраняет буквы любых алфавитов.
func MakeUnicode(s string) string {
	return build(s, true)
}

func build(s string, allowUnicode bool) string {
	if allowUnicode {
		s = norm.NFKC.String(s)
	} else {
		t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		folded, _, err := transform.String(t, s)
		if err == nil {
			s = folded
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case !allowUnicode && r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	out := dashes.ReplaceAllString(strings.TrimSpace(b.String()), "-")
	return strings.Trim(out, "-_")
}
