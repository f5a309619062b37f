package util

import (
	"strings"
	"unicode"
)

const maxNameRunes = 50

// SanitizeName trims a display name, drops control and invisible characters
// and caps it at 50 runes.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range strings.TrimSpace(name) {
		if unicode.IsControl(r) || isInvisibleUnicode(r) {
			continue
		}
		b.WriteRune(r)
	}

	runes := []rune(strings.TrimSpace(b.String()))
	if len(runes) > maxNameRunes {
		runes = runes[:maxNameRunes]
	}
	return strings.TrimSpace(string(runes))
}

// NormalizeEmail trims the address and lower-cases it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isInvisibleUnicode(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F', '\u2060', '\uFEFF':
		return true
	}
	// Format characters (Cf).
	return unicode.Is(unicode.Cf, r)
}
