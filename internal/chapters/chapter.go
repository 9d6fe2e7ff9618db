package chapters

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chapter is one unit of a segmented document. Content holds serialized
// markup and is never modified after segmentation.
type Chapter struct {
	Title   string
	Content string
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = string(clean)
	s = reUnderscore.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

// FileName returns a stable file name for the chapter at index i (0-based).
func (c Chapter) FileName(i int) string {
	base := fmt.Sprintf("%03d", i+1)
	if title := sanitize(c.Title); title != "" {
		base += "_" + title
	}
	return base + ".html"
}

// Preview returns the first n runes of the content on a single line.
func (c Chapter) Preview(n int) string {
	s := strings.ReplaceAll(c.Content, "\n", " ")
	if utf8.RuneCountInString(s) > n {
		s = string([]rune(s)[:n])
	}
	return s + "..."
}
