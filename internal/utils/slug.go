package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and collapses every non-alphanumeric run into a single
// hyphen. Output is trimmed to maxLen (rune count) when maxLen > 0.
func Slugify(s string, maxLen int) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if maxLen > 0 {
		runes := []rune(out)
		if len(runes) > maxLen {
			out = strings.Trim(string(runes[:maxLen]), "-")
		}
	}
	return out
}
