package normalize

import (
	"regexp"
	"strings"
)

var (
	disallowedNameChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_ &'-]`)
	leadingArticle      = regexp.MustCompile(`(?i)^(the|a|an)\s+`)
)

// NormalizeName canonicalises a business name for comparison: whitespace
// runs collapse to one space, characters other than word characters,
// spaces, '&', '\'' and '-' are dropped, one leading English article is
// removed, and the ends are trimmed. Spaces left around a dropped
// character are kept, so "Joe ! Pizza" keys as "Joe  Pizza".
func NormalizeName(name string) string {
	cleaned := collapseSpaces(name)
	if cleaned == "" {
		return ""
	}
	cleaned = disallowedNameChars.ReplaceAllString(cleaned, "")
	cleaned = leadingArticle.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// TidyName trims and collapses whitespace without altering characters.
func TidyName(name string) string {
	return collapseSpaces(name)
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
