package catalog

import (
	"regexp"
	"strings"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify lowercases, strips punctuation and collapses whitespace and runs
// of hyphens into single hyphens. "Classic Cotton Tee" -> "classic-cotton-tee".
func Slugify(input string) string {
	s := strings.ToLower(input)
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
