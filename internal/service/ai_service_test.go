package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGradeResponse(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		testCases    int
		wantScore    float64
		wantHasScore bool
		wantOfficial string
		wantErr      bool
	}{
		{
			name:         "nested grade with fenced json",
			text:         "```json\n{\"grade\":{\"scoreFraction\":0.8,\"explanation\":\"Mostly right\"},\"officialAnswer\":\"use prepared statements\"}\n```",
			wantScore:    0.8,
			wantHasScore: true,
			wantOfficial: "use prepared statements",
		},
		{
			name:         "flat fields with snake_case answer",
			text:         `{"scoreFraction":1,"explanation":"Correct","official_answer":"192.168.1.100"}`,
			wantScore:    1,
			wantHasScore: true,
			wantOfficial: "192.168.1.100",
		},
		{
			name:         "answer key fallback",
			text:         `{"answer":"validate the path"}`,
			wantOfficial: "validate the path",
		},
		{
			name:         "score clamped to one",
			text:         `{"grade":{"scoreFraction":1.4}}`,
			wantScore:    1,
			wantHasScore: true,
		},
		{
			name:         "negative score clamped to zero",
			text:         `{"grade":{"scoreFraction":-0.2}}`,
			wantScore:    0,
			wantHasScore: true,
		},
		{
			name:    "not json",
			text:    "I think the answer is fine.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := parseGradeResponse(tt.text, tt.testCases)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHasScore, outcome.HasScore)
			assert.InDelta(t, tt.wantScore, outcome.ScoreFraction, 0.001)
			assert.Equal(t, tt.wantOfficial, outcome.OfficialAnswer)
		})
	}
}

func TestParseGradeResponseTotalTestsFallback(t *testing.T) {
	outcome, err := parseGradeResponse(`{"grade":{"scoreFraction":0.5,"testsPassed":1}}`, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.TestsPassed)
	assert.Equal(t, 3, outcome.TotalTests)
}

func TestParseGradeResponseHintRecommends(t *testing.T) {
	outcome, err := parseGradeResponse(`{"grade":{"hint":"Check the encoding"}}`, 0)
	require.NoError(t, err)
	assert.Equal(t, "Check the encoding", outcome.Hint)
	assert.True(t, outcome.RecommendHint)
	assert.False(t, outcome.HasScore)
}

func TestAPIErrorRetryable(t *testing.T) {
	assert.True(t, (&apiError{StatusCode: http.StatusTooManyRequests}).retryable())
	assert.True(t, (&apiError{StatusCode: http.StatusBadGateway}).retryable())
	assert.False(t, (&apiError{StatusCode: http.StatusBadRequest}).retryable())
	assert.False(t, (&apiError{StatusCode: http.StatusUnauthorized}).retryable())
}
