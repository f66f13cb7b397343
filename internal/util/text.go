package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reCitation = regexp.MustCompile(`(?s)\[.*?\]`)
	reNonKey   = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
	footnotes  = strings.NewReplacer("\u00a0", " ", "†", "", "‡", "", "*", "")
)

// Normalize strips citation markers, footnote glyphs and redundant whitespace
// from a scraped cell.
func Normalize(input string) string {
	s := reCitation.ReplaceAllString(input, "")
	s = footnotes.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func StripDiacritics(input string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// Fold is the case- and accent-insensitive form used to key the override tables.
func Fold(input string) string {
	return strings.ToLower(StripDiacritics(Normalize(input)))
}

// NameKey is the lookup key for a country label. Never displayed.
func NameKey(input string) string {
	s := CanonicalName(Normalize(input))
	s = StripDiacritics(s)
	s = reNonKey.ReplaceAllString(s, "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func StringPtr(v string) *string { return &v }

func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
