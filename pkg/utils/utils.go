package utils

import (
	"fmt"
	"unicode/utf8"
)

// FormatSeconds renders seconds with one fractional digit, e.g. "12.3"
func FormatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%.1f", seconds)
}

// Truncate shortens s to at most maxLen bytes, marking the cut with "...".
// The cut never splits a multi-byte rune.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	suffix := "..."
	if maxLen <= len(suffix) {
		suffix = ""
	}

	cut := max(maxLen-len(suffix), 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
