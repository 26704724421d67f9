package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolutionUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Solution
	}{
		{
			name: "bare string",
			raw:  `"192.168.1.100"`,
			want: Solution{Kind: SolutionText, Text: "192.168.1.100"},
		},
		{
			name: "variant list",
			raw:  `["admin","administrator"]`,
			want: Solution{Kind: SolutionVariants, Variants: []string{"admin", "administrator"}},
		},
		{
			name: "ordering object",
			raw:  `{"type":"ordering","correctOrder":["Recon","Delivery"]}`,
			want: Solution{Kind: SolutionOrdering, Ordering: []string{"Recon", "Delivery"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Solution
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)

			round, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.raw, string(round))
		})
	}
}

func TestSolutionUnmarshalRejectsUnknownShape(t *testing.T) {
	var s Solution
	err := json.Unmarshal([]byte(`{"type":"regex","pattern":".*"}`), &s)
	assert.Error(t, err)
}

func TestChallengeMaskedStripsGradingData(t *testing.T) {
	c := Challenge{
		Title:              "SQL Injection",
		Expected:           "secret",
		OfficialAnswer:     "use placeholders",
		CorrectSolution:    &Solution{Kind: SolutionText, Text: "secret"},
		ValidationKeywords: []string{"sql"},
		TestCases:          []TestCase{{Input: "a", Output: "b"}},
	}

	masked := c.Masked()

	assert.Equal(t, "SQL Injection", masked.Title)
	assert.Empty(t, masked.Expected)
	assert.Empty(t, masked.OfficialAnswer)
	assert.Nil(t, masked.CorrectSolution)
	assert.Nil(t, masked.ValidationKeywords)
	assert.Nil(t, masked.TestCases)
	assert.True(t, c.HasGradingData())
	assert.False(t, (&masked).HasGradingData())
}
