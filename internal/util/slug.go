// Package util holds small text helpers shared by the service layer and the CLI.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds slugs used in file names.
const MaxSlugLength = 60

var (
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

// Slugify converts a title to a lowercase ASCII slug suitable for file names.
// Accents are folded ("Élan" -> "elan"); everything else that is not a letter
// or digit becomes a single dash. The result is at most MaxSlugLength bytes
// and never starts or ends with a dash. Titles with nothing usable return "book".
//
//	"The Fox & the Kite!" -> "the-fox-the-kite"
func Slugify(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	s := nonAlphanumericRe.ReplaceAllString(strings.ToLower(folded), "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	if s == "" {
		return "book"
	}
	return s
}

// NormalizeTitle puts a title in NFC form, trims it, and collapses runs of whitespace.
func NormalizeTitle(title string) string {
	title = norm.NFC.String(title)
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(title), " ")
}
