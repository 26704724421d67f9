package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		official  string
		submitted string
		wantMatch bool
	}{
		{
			name:      "exact IP address",
			official:  "192.168.1.100",
			submitted: "192.168.1.100",
			wantMatch: true,
		},
		{
			name:      "case and whitespace folded",
			official:  "Security Misconfiguration",
			submitted: "  security   misconfiguration ",
			wantMatch: true,
		},
		{
			name:      "single typo in a long answer",
			official:  "security misconfiguration",
			submitted: "security misconfigurations",
			wantMatch: true,
		},
		{
			name:      "unrelated answer",
			official:  "cross-site scripting",
			submitted: "sql injection",
			wantMatch: false,
		},
		{
			name:      "code compared without comments or spacing",
			official:  "function add(a, b) { return a + b; } // sums",
			submitted: "function add(a,b){return a+b}",
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, score := Compare(tt.official, tt.submitted)
			assert.Equal(t, tt.wantMatch, match)
			if tt.wantMatch {
				assert.GreaterOrEqual(t, score, MatchThreshold)
			} else {
				assert.Less(t, score, MatchThreshold)
			}
		})
	}
}

func TestCompareBothEmpty(t *testing.T) {
	match, score := Compare("", "")
	assert.True(t, match)
	assert.Equal(t, 1.0, score)
}

func TestIsCodeLike(t *testing.T) {
	assert.True(t, IsCodeLike("function validate(input) {}"))
	assert.True(t, IsCodeLike("x => x + 1"))
	assert.True(t, IsCodeLike("one\ntwo\nthree\nfour"))
	assert.False(t, IsCodeLike("use a parameterized query"))
}

func TestKeywordOverlap(t *testing.T) {
	tests := []struct {
		name       string
		solution   string
		submission string
		want       float64
	}{
		{
			name:       "IP segments all present",
			solution:   "192.168.1.100",
			submission: "the attacker pivoted from 192.168.1.100",
			want:       1.0,
		},
		{
			name:       "no tokens present",
			solution:   "192.168.7.254",
			submission: "no address found",
			want:       0,
		},
		{
			name:       "half the tokens present",
			solution:   "csrf token",
			submission: "use a csrf guard",
			want:       0.5,
		},
		{
			name:       "empty solution",
			solution:   "",
			submission: "anything",
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, KeywordOverlap(tt.solution, tt.submission), 0.001)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 1, levenshtein("kitten", "kittens"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
