// Package slug turns free-form titles into filesystem-safe identifiers.
package slug

import (
	"regexp"
	"strings"
)

// Fallback is returned when a title has no usable characters.
const Fallback = "decision"

var (
	quoteReplacer = strings.NewReplacer(
		"'", "", `"`, "", "`", "",
		"‘", "", "’", "", "“", "", "”", "",
	)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// Make returns the lowercase hyphenated slug for title.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = quoteReplacer.Replace(s)
	s = nonAlnumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}
