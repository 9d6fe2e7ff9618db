package util

import (
	"fmt"
	"strings"
	"unicode"
)

// Human formats a byte count.
func Human(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Plural returns "1 chapter" / "3 chapters".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Words counts whitespace-separated words outside of markup tags.
func Words(markup string) int {
	inTag := false
	stripped := strings.Map(func(r rune) rune {
		switch {
		case r == '<':
			inTag = true
			return ' '
		case r == '>':
			inTag = false
			return ' '
		case inTag:
			return -1
		case unicode.IsSpace(r):
			return ' '
		}
		return r
	}, markup)

	return len(strings.Fields(stripped))
}
