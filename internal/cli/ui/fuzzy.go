package ui

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

const (
	// DefaultMaxDistance is the largest edit distance still offered as a suggestion
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions caps the number of suggestions returned
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures fuzzy matching behavior
type FuzzyMatchOptions struct {
	MaxDistance    int  // Maximum edit distance to consider (default: 3)
	MaxSuggestions int  // Maximum number of suggestions to return (default: 3)
	CaseSensitive  bool // Whether matching is case-sensitive (default: false)
}

type suggestion struct {
	value    string
	distance int
}

// FindSimilar returns the candidates closest to target, nearest first.
// Ties keep the candidates' original order.
//
// Example:
//
//	names := []string{"transfer", "total_supply", "approve"}
//	FindSimilar("trnsfer", names, nil) // ["transfer"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	o := FuzzyMatchOptions{MaxDistance: DefaultMaxDistance, MaxSuggestions: DefaultMaxSuggestions}
	if opts != nil {
		o = *opts
		if o.MaxDistance == 0 {
			o.MaxDistance = DefaultMaxDistance
		}
		if o.MaxSuggestions == 0 {
			o.MaxSuggestions = DefaultMaxSuggestions
		}
	}

	if !o.CaseSensitive {
		target = strings.ToLower(target)
	}

	var matches []suggestion
	for _, candidate := range candidates {
		cmp := candidate
		if !o.CaseSensitive {
			cmp = strings.ToLower(candidate)
		}
		if dist := LevenshteinDistance(target, cmp); dist <= o.MaxDistance {
			matches = append(matches, suggestion{value: candidate, distance: dist})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, o.MaxSuggestions)
	for i := 0; i < len(matches) && i < o.MaxSuggestions; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// LevenshteinDistance is the number of single-rune insertions, deletions or
// substitutions needed to turn s1 into s2.
func LevenshteinDistance(s1, s2 string) int {
	return levenshtein.Distance(s1, s2, nil)
}

// FindBestMatch returns the closest candidate, or "" if none is close enough.
func FindBestMatch(target string, candidates []string, opts *FuzzyMatchOptions) string {
	matches := FindSimilar(target, candidates, opts)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// HasCloseMatch reports whether any candidate is within the max distance
func HasCloseMatch(target string, candidates []string, opts *FuzzyMatchOptions) bool {
	return FindBestMatch(target, candidates, opts) != ""
}
