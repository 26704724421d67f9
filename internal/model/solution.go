package model

import (
	"encoding/json"
	"fmt"
)

// SolutionKind tags the canonical-answer variant a challenge was
// authored with.
type SolutionKind string

const (
	SolutionText     SolutionKind = "text"     // single acceptable string
	SolutionVariants SolutionKind = "variants" // any of several acceptable strings
	SolutionOrdering SolutionKind = "ordering" // ordered list of event descriptions
)

// Solution is the tagged union behind the polymorphic
// "correctSolution" field of authored content: a bare string, an array
// of acceptable strings, or an {"type":"ordering","correctOrder":[..]}
// object. The wire shapes are preserved on re-encode so authored
// documents round-trip unchanged.
type Solution struct {
	Kind     SolutionKind
	Text     string
	Variants []string
	Ordering []string
}

type orderingSolution struct {
	Type         string   `json:"type"`
	CorrectOrder []string `json:"correctOrder"`
}

func (s *Solution) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = Solution{Kind: SolutionText, Text: text}
		return nil
	}

	var variants []string
	if err := json.Unmarshal(data, &variants); err == nil {
		*s = Solution{Kind: SolutionVariants, Variants: variants}
		return nil
	}

	var ord orderingSolution
	if err := json.Unmarshal(data, &ord); err == nil && ord.Type == "ordering" {
		*s = Solution{Kind: SolutionOrdering, Ordering: ord.CorrectOrder}
		return nil
	}

	return fmt.Errorf("unsupported correctSolution shape: %s", string(data))
}

func (s Solution) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SolutionText:
		return json.Marshal(s.Text)
	case SolutionVariants:
		return json.Marshal(s.Variants)
	case SolutionOrdering:
		return json.Marshal(orderingSolution{Type: "ordering", CorrectOrder: s.Ordering})
	default:
		return []byte("null"), nil
	}
}
