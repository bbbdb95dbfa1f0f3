package transform

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	texttransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	pathSafePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

	// NFD decomposition followed by combining-mark removal strips accents,
	// so "À propos" transliterates to "A propos".
	deaccenter = texttransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// IsPathSafe reports whether s already satisfies PrestaShop's link_rewrite
// rules: lowercase ASCII alphanumerics separated by single hyphens, with no
// leading or trailing hyphen.
func IsPathSafe(s string) bool {
	return pathSafePattern.MatchString(s)
}

// SanitizeSlug derives a link_rewrite-safe slug: accents stripped, lowercased,
// runs of anything non-alphanumeric collapsed into single hyphens, hyphens
// trimmed from both ends. Returns "" when nothing usable remains.
func SanitizeSlug(s string) string {
	if s == "" {
		return ""
	}
	if out, _, err := texttransform.String(deaccenter, s); err == nil {
		s = out
	}
	// Anything non-ASCII that survived decomposition has no transliteration
	// and becomes a hyphen below.
	s = strings.ToLower(s)
	s = nonAlnumPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
