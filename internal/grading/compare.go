package grading

import (
	"regexp"
	"strings"
)

// MatchThreshold is the similarity above which two answers are
// considered the same.
const MatchThreshold = 0.85

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	lineCommentRe  = regexp.MustCompile(`(?m)//.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	codeTokenRe    = regexp.MustCompile(`(?i)\b(function|def|console\.|import |from )|=>|[{}()\[\];]`)
	tokenSplitRe   = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeText folds prose for comparison: lower-case, trimmed,
// whitespace runs collapsed to single spaces.
func NormalizeText(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// NormalizeCode folds code-like answers: line and block comments,
// all whitespace and statement terminators removed.
func NormalizeCode(s string) string {
	s = lineCommentRe.ReplaceAllString(s, "")
	s = blockCommentRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, ";", "")
}

// IsCodeLike classifies an answer as code by common punctuation and
// keyword heuristics, or by spanning more than three lines.
func IsCodeLike(s string) bool {
	return codeTokenRe.MatchString(s) || strings.Count(s, "\n")+1 > 3
}

// Compare measures how close a submission is to an official answer.
// Both strings are normalized (code-aware when either side looks like
// code) before an edit-distance similarity in [0,1] is computed; a pair
// is a match at similarity >= MatchThreshold or on normalized equality.
func Compare(official, submitted string) (match bool, score float64) {
	a, b := official, submitted
	if IsCodeLike(a) || IsCodeLike(b) {
		a = NormalizeCode(a)
		b = NormalizeCode(b)
	} else {
		a = NormalizeText(a)
		b = NormalizeText(b)
	}

	score = similarity(a, b)
	match = score >= MatchThreshold || a == b
	return match, score
}

// similarity is 1 - editDistance/maxLen; two empty strings are
// identical by definition.
func similarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	s := 1.0 - float64(levenshtein(a, b))/float64(maxLen)
	if s < 0 {
		return 0
	}
	return s
}

// levenshtein computes edit distance over runes with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// KeywordOverlap tokenizes the solution on non-alphanumeric boundaries
// and returns the fraction of tokens found as substrings of the
// submission. Splitting this way keeps IP address segments and other
// punctuated answers comparable.
func KeywordOverlap(solution, submission string) float64 {
	sol := strings.ToLower(solution)
	sub := strings.ToLower(submission)

	var tokens []string
	for _, t := range tokenSplitRe.Split(sol, -1) {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return 0
	}

	matched := 0
	for _, t := range tokens {
		if strings.Contains(sub, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
