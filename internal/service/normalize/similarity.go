package normalize

import "strings"

// Operating points for name similarity.
const (
	// DuplicateThreshold classifies two same-city leads as one business.
	DuplicateThreshold = 0.85
	// SimilarThreshold classifies same-city, same-country leads as related
	// during verification.
	SimilarThreshold = 0.7
)

// Similarity scores two business names in [0,1]. It is a cheap overlap
// heuristic for catching near-identical names across sources, not an edit
// distance.
func Similarity(a, b string) float64 {
	s1 := []rune(strings.ToLower(NormalizeName(a)))
	s2 := []rune(strings.ToLower(NormalizeName(b)))

	if string(s1) == string(s2) {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	longer, shorter := s2, s1
	if len(s1) > len(s2) {
		longer, shorter = s1, s2
	}

	longerStr := string(longer)
	if strings.Contains(longerStr, string(shorter)) {
		return float64(len(shorter)) / float64(len(longer))
	}

	matches := 0
	for _, r := range shorter {
		if strings.ContainsRune(longerStr, r) {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}

// SameCity compares two city names case-insensitively.
func SameCity(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
