package grading

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var orderPrefixRe = regexp.MustCompile(`^\d+\.\s*`)

// OrderingResult carries the partial-credit outcome of an
// ordered-sequence comparison.
type OrderingResult struct {
	Fraction         float64
	CorrectPositions int
	TotalPositions   int
	Explanation      string
}

// ParseOrderedList accepts the two submission grammars for ordering
// challenges: a JSON array of strings first, then a comma-separated
// list. An unparsable submission yields an empty slice.
func ParseOrderedList(text string) []string {
	var items []string
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items
	}

	items = items[:0]
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// ScoreOrdering grades a submitted event order against the correct one.
// Entries are normalized by stripping a leading "N. " numeral prefix and
// case/space folding. The final fraction blends exact-position accuracy
// (weight 0.7) with adjacency accuracy (weight 0.3): the count of
// submitted consecutive pairs that are also consecutive in the correct
// order.
func ScoreOrdering(correctOrder, submittedOrder []string) OrderingResult {
	if len(correctOrder) == 0 {
		return OrderingResult{Explanation: "No correct order defined"}
	}
	if len(submittedOrder) == 0 {
		return OrderingResult{
			TotalPositions: len(correctOrder),
			Explanation:    "Invalid format. Expected array or comma-separated list.",
		}
	}

	correct := normalizeOrder(correctOrder)
	submitted := normalizeOrder(submittedOrder)

	correctPositions := 0
	limit := len(correct)
	if len(submitted) < limit {
		limit = len(submitted)
	}
	for i := 0; i < limit; i++ {
		if correct[i] == submitted[i] {
			correctPositions++
		}
	}

	correctPairs := 0
	for i := 0; i+1 < len(submitted); i++ {
		idx1 := indexOf(correct, submitted[i])
		idx2 := indexOf(correct, submitted[i+1])
		if idx1 != -1 && idx2 != -1 && idx2 == idx1+1 {
			correctPairs++
		}
	}

	positionScore := float64(correctPositions) / float64(len(correct))
	pairScore := 0.0
	if len(correct) > 1 {
		pairScore = float64(correctPairs) / float64(len(correct)-1)
	}
	fraction := Clamp01(positionScore*0.7 + pairScore*0.3)

	var explanation string
	switch {
	case fraction >= 1.0:
		explanation = "Perfect! All events in correct order."
	case fraction >= 0.7:
		explanation = fmt.Sprintf("Good attempt! %d out of %d positions correct, %d correct pairs.",
			correctPositions, len(correct), correctPairs)
	case fraction > 0:
		explanation = fmt.Sprintf("Partially correct. %d out of %d positions correct.",
			correctPositions, len(correct))
	default:
		explanation = "Incorrect order. Review the attack lifecycle."
	}

	return OrderingResult{
		Fraction:         fraction,
		CorrectPositions: correctPositions,
		TotalPositions:   len(correct),
		Explanation:      explanation,
	}
}

func normalizeOrder(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(strings.TrimSpace(orderPrefixRe.ReplaceAllString(strings.TrimSpace(item), "")))
	}
	return out
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}
