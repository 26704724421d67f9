package service

import (
	"testing"

	"github.com/HrushithaL/CyberQuest-sub001/internal/grading"
	"github.com/HrushithaL/CyberQuest-sub001/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardPoints(t *testing.T) {
	tests := []struct {
		name         string
		points       int
		correctCount float64
		totalItems   int
		want         int
	}{
		{name: "three of four", points: 100, correctCount: 3, totalItems: 4, want: 75},
		{name: "all correct", points: 150, correctCount: 5, totalItems: 5, want: 150},
		{name: "none correct", points: 100, correctCount: 0, totalItems: 4, want: 0},
		{name: "fractional challenge credit", points: 100, correctCount: 2.5, totalItems: 3, want: 83},
		{name: "rounds half up", points: 100, correctCount: 1, totalItems: 8, want: 13},
		{name: "nothing gradable pays full", points: 200, correctCount: 0, totalItems: 0, want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, awardPoints(tt.points, tt.correctCount, tt.totalItems))
		})
	}
}

func TestValidateAnswers(t *testing.T) {
	content := model.MissionContent{
		Questions: []model.Question{
			{Question: "q1", Options: []string{"a", "b", "c"}},
			{Question: "q2", Options: []string{"a", "b"}},
		},
		Scenarios: []model.Scenario{
			{Title: "s1", Options: []string{"a", "b"}},
		},
	}

	tests := []struct {
		name    string
		answers []*int
		wantErr string
	}{
		{
			name:    "valid sparse answers",
			answers: []*int{iptr(2), nil, iptr(1)},
		},
		{
			name:    "question answer out of range",
			answers: []*int{iptr(3)},
			wantErr: "Answer at index 0 must be between 0 and 2",
		},
		{
			name:    "scenario answer out of range",
			answers: []*int{nil, nil, iptr(5)},
			wantErr: "Answer at index 2 (scenario 0) must be between 0 and 1",
		},
		{
			name:    "answer beyond mission items",
			answers: []*int{nil, nil, nil, iptr(0)},
			wantErr: "Answer provided for non-existent scenario at index 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnswers(tt.answers, content)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Message)
		})
	}
}

func TestHasScenarioAnswer(t *testing.T) {
	assert.True(t, hasScenarioAnswer([]*int{nil, nil, iptr(0)}, 2, 1))
	assert.False(t, hasScenarioAnswer([]*int{iptr(0), iptr(1), nil}, 2, 1))
	assert.False(t, hasScenarioAnswer([]*int{iptr(0)}, 2, 1))
}

func TestChallengeIdentity(t *testing.T) {
	assert.Equal(t, "abc-123#0", challengeIdentity("abc-123", 0))
	assert.NotEqual(t, challengeIdentity("m", 1), challengeIdentity("m", 2))
}

func TestAttachGeneratedAnswer(t *testing.T) {
	generated := grading.Result{OfficialAnswer: "rotate credentials", AIGeneratedAnswer: true}

	c := &model.Challenge{Title: "Leaked key"}
	require.True(t, attachGeneratedAnswer(c, generated))
	assert.Equal(t, "rotate credentials", c.OfficialAnswer)
	assert.Equal(t, "ai", c.OfficialAnswerGeneratedBy)
	require.NotNil(t, c.OfficialAnswerGeneratedAt)

	firstAt := *c.OfficialAnswerGeneratedAt
	assert.False(t, attachGeneratedAnswer(c, grading.Result{OfficialAnswer: "something else", AIGeneratedAnswer: true}))
	assert.Equal(t, "rotate credentials", c.OfficialAnswer)
	assert.Equal(t, firstAt, *c.OfficialAnswerGeneratedAt)

	authored := &model.Challenge{Expected: "authored output"}
	assert.False(t, attachGeneratedAnswer(authored, generated))
	assert.Empty(t, authored.OfficialAnswer)

	assert.False(t, attachGeneratedAnswer(&model.Challenge{}, grading.Result{OfficialAnswer: "x"}))
}
