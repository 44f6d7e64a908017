package project

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
	deaccenter = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slug derives the canonical project identifier from the stable external
// identity ("owner/repo" for GitHub, protocol slug for DeFiLlama) and the
// source name. The same identity always yields the same slug.
func Slug(identity, source string) string {
	cleaned := identity

	if folded, _, err := transform.String(deaccenter, identity); err == nil {
		cleaned = folded
	}

	cleaned = strings.ToLower(cleaned)
	cleaned = nonAlnumRe.ReplaceAllString(cleaned, "-")
	cleaned = strings.Trim(cleaned, "-")

	if cleaned == "" {
		cleaned = "unknown"
	}

	return cleaned + "-" + source
}
