package textutil

import "unicode/utf8"

// Truncate shortens a string to at most maxLen bytes, appending "..." if
// truncated. It never splits a multi-byte character.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
