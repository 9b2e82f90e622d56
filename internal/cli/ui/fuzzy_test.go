package ui

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"transfer", "transfer", 0},
		{"kitten", "sitting", 3},
		{"trnsfer", "transfer", 1},
		{"u128", "u126", 1},
		{"Transfr", "Transfer", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.want, LevenshteinDistance(tt.s1, tt.s2))
		})
	}
}

func TestFindSimilar(t *testing.T) {
	messages := []string{"transfer", "transfer_from", "total_supply", "approve", "allowance"}

	tests := []struct {
		name   string
		target string
		opts   *FuzzyMatchOptions
		want   []string
	}{
		{
			name:   "exact match",
			target: "approve",
			want:   []string{"approve"},
		},
		{
			name:   "typo",
			target: "trnsfer",
			want:   []string{"transfer"},
		},
		{
			name:   "case insensitive by default",
			target: "APPROVE",
			want:   []string{"approve"},
		},
		{
			name:   "case sensitive",
			target: "APPROVE",
			opts:   &FuzzyMatchOptions{CaseSensitive: true},
			want:   []string{},
		},
		{
			name:   "nearest first",
			target: "transfer_fro",
			opts:   &FuzzyMatchOptions{MaxDistance: 5},
			want:   []string{"transfer_from", "transfer"},
		},
		{
			name:   "max suggestions",
			target: "a",
			opts:   &FuzzyMatchOptions{MaxDistance: 20, MaxSuggestions: 2},
			want:   []string{"approve", "transfer"},
		},
		{
			name:   "nothing close",
			target: "xyz",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindSimilar(tt.target, messages, tt.opts))
		})
	}
}

func TestFindSimilar_DoesNotMutateOptions(t *testing.T) {
	opts := &FuzzyMatchOptions{}
	FindSimilar("x", []string{"y"}, opts)
	assert.Zero(t, opts.MaxDistance)
	assert.Zero(t, opts.MaxSuggestions)
}

func TestFindBestMatch(t *testing.T) {
	types := []string{"u128", "AccountId", "Balance"}

	assert.Equal(t, "Balance", FindBestMatch("Balanse", types, nil))
	assert.Equal(t, "", FindBestMatch("Hash", types, nil))
	assert.True(t, HasCloseMatch("AcountId", types, nil))
	assert.False(t, HasCloseMatch("Timestamp", types, nil))
}

func ExampleFindSimilar() {
	names := []string{"transfer", "total_supply", "approve"}
	fmt.Println(FindSimilar("trnsfer", names, nil))
	// Output: [transfer]
}
