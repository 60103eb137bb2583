// Package address provides deterministic cleanup of free-form Indian
// postal addresses before they hit the geocoder.
package address

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	commaRunRe   = regexp.MustCompile(`,\s*,`)
	pinRe        = regexp.MustCompile(`\b\d{6}\b`)
)

// abbreviations maps common address shorthand to its expanded form.
// Matching is case-insensitive and bounded to whole words.
var abbreviations = []struct {
	re   *regexp.Regexp
	full string
}{
	{regexp.MustCompile(`(?i)\bNgr\b`), "Nagar"},
	{regexp.MustCompile(`(?i)\bRd\b`), "Road"},
	{regexp.MustCompile(`(?i)\bCol\b`), "Colony"},
}

// Normalize collapses whitespace runs to single spaces, collapses repeated
// commas, expands known abbreviations and trims the result. The cleanup
// passes run until the string stops changing, so Normalize is pure, total
// and idempotent.
func Normalize(raw string) string {
	s := raw
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = commaRunRe.ReplaceAllString(s, ", ")
	for _, a := range abbreviations {
		s = a.re.ReplaceAllString(s, a.full)
	}
	return strings.TrimSpace(s)
}

// ExtractPIN returns the first standalone 6-digit postal code in text, or
// the empty string if none is present. Digit runs longer than six never
// match.
func ExtractPIN(text string) string {
	return pinRe.FindString(text)
}

// CityBeforeRegion guesses the locality token that precedes the given
// region name, either as "<city> <6-digit PIN>, <region>" or as a
// comma-delimited token immediately before the region. Returns the empty
// string when no plausible token is found.
func CityBeforeRegion(text, region string) string {
	quoted := regexp.QuoteMeta(region)
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+\d{6}\s*,\s*` + quoted),
		regexp.MustCompile(`(?i),\s*([A-Za-z\s]+)\s*,\s*` + quoted),
	}
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
