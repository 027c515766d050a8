package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that do not decompose into a base letter plus a combining mark.
	specialLetters = strings.NewReplacer(
		"ß", "ss", "æ", "ae", "ø", "o", "œ", "oe", "ł", "l", "ı", "i", "đ", "d", "&", " and ",
	)
)

// Generate turns a product name into a URL-friendly slug: lower case ASCII
// letters and digits separated by single hyphens.
//
//	"Linen Shirt / Oversized"  → "linen-shirt-oversized"
//	"Crème Brûlée Knit"        → "creme-brulee-knit"
//	"Tee & Shorts"             → "tee-and-shorts"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = specialLetters.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Normalize returns s as a slug if it is one already, otherwise Generate(s).
// Admin input may carry a hand-written slug or a title.
func Normalize(s string) string {
	if IsValid(s) {
		return s
	}
	return Generate(s)
}

var validSlug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsValid reports whether s is already in slug form.
func IsValid(s string) bool {
	return validSlug.MatchString(s)
}
