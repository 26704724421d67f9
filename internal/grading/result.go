// Package grading holds the pure answer-comparison primitives and the
// evaluation result cache used by the submission evaluator: edit-distance
// similarity, keyword overlap, ordered-sequence scoring and the
// fingerprint-keyed result cache. Nothing in this package performs I/O.
package grading

import "math"

// Correctness labels reported on every graded result.
const (
	Correct          = "correct"
	PartiallyCorrect = "partially correct"
	Incorrect        = "incorrect"
)

// Result is the uniform outcome of evaluating one challenge submission,
// whichever strategy produced it. OfficialAnswer is populated only when
// the answer came from the external capability or an authored expected
// value; deterministic matches leave it empty so canonical answers never
// leak through logs or cached payloads.
type Result struct {
	ScoreFraction     float64 `json:"scoreFraction"`
	TestsPassed       int     `json:"testsPassed"`
	TotalTests        int     `json:"totalTests"`
	IsCorrect         bool    `json:"isCorrect"`
	Correctness       string  `json:"correctness"`
	Explanation       string  `json:"explanation"`
	OfficialAnswer    string  `json:"officialAnswer,omitempty"`
	AIGeneratedAnswer bool    `json:"aiGeneratedAnswer"`
	AIUsed            bool    `json:"aiUsed"`
	Hint              string  `json:"hint,omitempty"`
	RecommendHint     bool    `json:"recommendHint"`
	Match             bool    `json:"match"`
	MatchScore        float64 `json:"matchScore"`
}

// LabelFor maps a correctness fraction to its discrete label.
func LabelFor(fraction float64) string {
	switch {
	case fraction >= 1.0:
		return Correct
	case fraction > 0:
		return PartiallyCorrect
	default:
		return Incorrect
	}
}

// Round3 trims a fraction to three decimals, the precision reported to
// clients and stored in the cache.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// Clamp01 bounds a fraction to [0,1].
func Clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
