// utils/validation.go
package utils

import "strings"

// Minimum length of a tag search term
const MinTagQueryLength = 3

// ValidateRatingValue checks that a submitted rating is within 1..5
func ValidateRatingValue(value float64) bool {
	return value >= 1 && value <= 5
}

// ParseTagQuery splits a comma-separated tag query into trimmed, non-empty
// terms. Returns false when any term is shorter than MinTagQueryLength.
func ParseTagQuery(query string) ([]string, bool) {
	var terms []string
	for _, part := range strings.Split(query, ",") {
		term := strings.TrimSpace(part)
		if term == "" {
			continue
		}
		if len(term) < MinTagQueryLength {
			return nil, false
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, false
	}
	return terms, true
}

// MatchesAnyTag reports whether any tag contains any of the terms,
// case-insensitively.
func MatchesAnyTag(tags []string, terms []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, term := range terms {
			if strings.Contains(lower, strings.ToLower(term)) {
				return true
			}
		}
	}
	return false
}
