package transform

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// DecodeEntities decodes HTML entities (&amp; -> &, &#8217; -> ’). Decoding is
// applied exactly once per field in the pipeline; the function itself is
// idempotent for already-decoded input that contains no entity sequences.
func DecodeEntities(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(s)
}

// StripTags removes all HTML tags and collapses whitespace, keeping only the
// text content.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	clean := tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(clean, " "))
}

// Truncate shortens s to at most max runes, cutting at the last word boundary
// so no word is split. Input shorter than max is returned unchanged.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ")
}
