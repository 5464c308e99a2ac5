package utils

import (
	"strings"
	"unicode"
)

// Title capitalises the first letter of every run of letters and lowercases
// the rest, so "created_at" becomes "Created_At". A letter following an
// apostrophe or a digit stays lowercase ("don't", "1st").
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	var prev rune
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if prevLetter || prev == '\'' || unicode.IsDigit(prev) {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		default:
			b.WriteRune(r)
			prevLetter = false
		}
		prev = r
	}
	return b.String()
}
