// Package slug builds URL-safe identifiers for topics and locations.
package slug

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	whitespace  = regexp.MustCompile(`[\s\p{Z}]+`)
	nonWord     = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases s, turns whitespace runs into hyphens, drops anything that
// is not a word character or hyphen, collapses repeated hyphens and trims
// leading/trailing hyphens.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespace.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Suffix returns n random lowercase hex characters (n <= 32)
func Suffix(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// New returns Slugify(title) + "-" + a 4 character random suffix.
// Titles with no slug-safe characters get a longer bare suffix instead.
func New(title string) string {
	base := Slugify(title)
	if base == "" {
		return Suffix(12)
	}
	return base + "-" + Suffix(4)
}
