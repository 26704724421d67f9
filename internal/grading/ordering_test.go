package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderedList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "json array",
			text: `["Reconnaissance","Weaponization","Delivery"]`,
			want: []string{"Reconnaissance", "Weaponization", "Delivery"},
		},
		{
			name: "comma separated with spaces",
			text: "Reconnaissance , Weaponization,Delivery",
			want: []string{"Reconnaissance", "Weaponization", "Delivery"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseOrderedList(tt.text)
			assert.Equal(t, len(tt.want), len(got))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestScoreOrdering(t *testing.T) {
	lifecycle := []string{"Reconnaissance", "Weaponization", "Delivery", "Exploitation"}

	tests := []struct {
		name          string
		correct       []string
		submitted     []string
		wantFraction  float64
		wantPositions int
		wantExplains  string
	}{
		{
			name:          "perfect order with numeral prefixes",
			correct:       lifecycle,
			submitted:     []string{"1. reconnaissance", "2. Weaponization", "3. delivery", "4. Exploitation"},
			wantFraction:  1.0,
			wantPositions: 4,
			wantExplains:  "Perfect! All events in correct order.",
		},
		{
			name:          "last two swapped",
			correct:       lifecycle,
			submitted:     []string{"Reconnaissance", "Weaponization", "Exploitation", "Delivery"},
			wantFraction:  0.45,
			wantPositions: 2,
			wantExplains:  "Partially correct. 2 out of 4 positions correct.",
		},
		{
			name:          "fully reversed",
			correct:       lifecycle,
			submitted:     []string{"Exploitation", "Delivery", "Weaponization", "Reconnaissance"},
			wantFraction:  0,
			wantPositions: 0,
			wantExplains:  "Incorrect order. Review the attack lifecycle.",
		},
		{
			name:          "empty submission",
			correct:       lifecycle,
			submitted:     nil,
			wantFraction:  0,
			wantPositions: 0,
			wantExplains:  "Invalid format. Expected array or comma-separated list.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreOrdering(tt.correct, tt.submitted)
			assert.InDelta(t, tt.wantFraction, got.Fraction, 0.001)
			assert.Equal(t, tt.wantPositions, got.CorrectPositions)
			assert.Equal(t, len(lifecycle), got.TotalPositions)
			assert.Equal(t, tt.wantExplains, got.Explanation)
		})
	}
}

func TestScoreOrderingNoCorrectOrder(t *testing.T) {
	got := ScoreOrdering(nil, []string{"a"})
	assert.Zero(t, got.Fraction)
	assert.Equal(t, "No correct order defined", got.Explanation)
}
