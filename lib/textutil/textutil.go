package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CollapseWhitespace trims `s` and replaces every whitespace run with one space.
func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Slugify lowercases `name`, keeps only letters, digits, whitespace and
// hyphens, then joins the remaining words with single hyphens.
func Slugify(name string) string {
	var kept strings.Builder
	for _, c := range strings.ToLower(name) {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || unicode.IsSpace(c) || c == '-' {
			kept.WriteRune(c)
		}
	}
	return strings.Join(strings.Fields(kept.String()), "-")
}

// Truncate returns the first `n` runes of `s`.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
