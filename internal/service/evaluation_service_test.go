package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HrushithaL/CyberQuest-sub001/internal/grading"
	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

type stubGrader struct {
	enabled     bool
	outcome     *AIGradeOutcome
	gradeErr    error
	generated   string
	generateErr error
	gradeCalls  int
	genCalls    int
}

func (g *stubGrader) GradeChallenge(_ context.Context, _ *model.Challenge, _ string) (*AIGradeOutcome, error) {
	g.gradeCalls++
	return g.outcome, g.gradeErr
}

func (g *stubGrader) GenerateAnswer(_ context.Context, _ *model.Challenge) (string, error) {
	g.genCalls++
	return g.generated, g.generateErr
}

func (g *stubGrader) Enabled() bool { return g.enabled }

func newEvalService(grader Grader, allowGeneration bool) *EvaluationService {
	return NewEvaluationService(grader, grading.NewCache(time.Minute), allowGeneration)
}

func TestEvaluateSingleStringSolution(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{
		Title:           "Find the attacker",
		CorrectSolution: &model.Solution{Kind: model.SolutionText, Text: "192.168.1.100"},
	}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "192.168.1.100", EvaluationOptions{})

	assert.Equal(t, 1.0, result.ScoreFraction)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, grading.Correct, result.Correctness)
	assert.Equal(t, "Correct answer", result.Explanation)
	assert.Empty(t, result.OfficialAnswer)
	assert.False(t, result.AIUsed)
}

func TestEvaluateSolutionOutranksKeywords(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{
		Title: "Attack lifecycle",
		CorrectSolution: &model.Solution{
			Kind:     model.SolutionOrdering,
			Ordering: []string{"Reconnaissance", "Delivery", "Exploitation"},
		},
		ValidationKeywords: []string{"reconnaissance"},
	}

	result := svc.Evaluate(context.Background(), "m1#0", challenge,
		`["Reconnaissance","Delivery","Exploitation"]`, EvaluationOptions{})

	assert.Equal(t, "Perfect! All events in correct order.", result.Explanation)
	assert.Equal(t, 1.0, result.ScoreFraction)
	assert.Equal(t, 3, result.TestsPassed)
	assert.Equal(t, 3, result.TotalTests)
}

func TestEvaluateVariants(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{
		CorrectSolution: &model.Solution{
			Kind:     model.SolutionVariants,
			Variants: []string{"admin", "administrator"},
		},
	}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "Administrator", EvaluationOptions{})

	assert.True(t, result.IsCorrect)
	assert.Equal(t, 1.0, result.ScoreFraction)
	assert.Equal(t, "Correct answer", result.Explanation)
}

func TestEvaluateKeywordsPartial(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{
		ValidationKeywords: []string{"csrf", "token"},
	}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "csrf", EvaluationOptions{})

	assert.InDelta(t, 0.5, result.ScoreFraction, 0.001)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, grading.PartiallyCorrect, result.Correctness)
	assert.Equal(t, "Partially correct. You mentioned: csrf. Missing concepts: token.", result.Explanation)
	assert.Equal(t, `Hint: Consider mentioning "token" in your answer.`, result.Hint)
	assert.True(t, result.RecommendHint)
}

func TestEvaluateAutoKeywords(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{
		Title:       "XSS Challenge",
		Description: "Fix the comment renderer",
	}

	result := svc.Evaluate(context.Background(), "m1#0", challenge,
		"sanitize the script input", EvaluationOptions{})

	assert.True(t, result.IsCorrect)
	assert.Equal(t, 2, result.TestsPassed)
	assert.Equal(t, "Good! You identified key concepts: script, sanitize.", result.Explanation)
}

func TestEvaluateOfficialAnswerMatch(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{OfficialAnswer: "use https everywhere"}

	result := svc.Evaluate(context.Background(), "m1#0", challenge,
		"Use HTTPS everywhere", EvaluationOptions{})

	assert.Equal(t, 1.0, result.ScoreFraction)
	assert.True(t, result.Match)
	assert.Equal(t, "Matched official answer", result.Explanation)
	assert.Equal(t, "use https everywhere", result.OfficialAnswer)
}

func TestEvaluateCachesRepeatSubmissions(t *testing.T) {
	grader := &stubGrader{
		enabled: true,
		outcome: &AIGradeOutcome{ScoreFraction: 0.8, HasScore: true, Explanation: "Close"},
	}
	svc := newEvalService(grader, false)
	challenge := &model.Challenge{Title: "", Description: ""}

	first := svc.Evaluate(context.Background(), "m1#0", challenge, "my answer", EvaluationOptions{})
	second := svc.Evaluate(context.Background(), "m1#0", challenge, "my answer", EvaluationOptions{})

	require.Equal(t, 1, grader.gradeCalls)
	assert.True(t, first.AIUsed)
	assert.Equal(t, first, second)

	svc.Evaluate(context.Background(), "m1#0", challenge, "a different answer", EvaluationOptions{})
	assert.Equal(t, 2, grader.gradeCalls)
}

func TestEvaluateAIOutcome(t *testing.T) {
	grader := &stubGrader{
		enabled: true,
		outcome: &AIGradeOutcome{
			ScoreFraction:  0.6,
			HasScore:       true,
			Explanation:    "Partially right",
			Hint:           "Think about encoding",
			RecommendHint:  true,
			OfficialAnswer: "encode all output",
		},
	}
	svc := newEvalService(grader, false)
	challenge := &model.Challenge{}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "escape input", EvaluationOptions{})

	assert.True(t, result.AIUsed)
	assert.True(t, result.AIGeneratedAnswer)
	assert.InDelta(t, 0.6, result.ScoreFraction, 0.001)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "Partially right", result.Explanation)
	assert.Equal(t, "Think about encoding", result.Hint)
	assert.Equal(t, "encode all output", result.OfficialAnswer)
}

func TestEvaluateAIErrorFallsThrough(t *testing.T) {
	grader := &stubGrader{enabled: true, gradeErr: errors.New("upstream timeout")}
	svc := newEvalService(grader, false)
	challenge := &model.Challenge{}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "anything", EvaluationOptions{})

	assert.False(t, result.AIUsed)
	assert.Zero(t, result.ScoreFraction)
	assert.Equal(t, "AI evaluation failed: upstream timeout", result.Explanation)
}

func TestEvaluateTestCaseFallback(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{
		TestCases: []model.TestCase{
			{Input: "in1", Output: "42"},
			{Input: "in2", Output: "7"},
		},
	}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "the answer is 42", EvaluationOptions{})

	assert.Equal(t, 1, result.TestsPassed)
	assert.Equal(t, 2, result.TotalTests)
	assert.InDelta(t, 0.5, result.ScoreFraction, 0.001)
	assert.Equal(t, "Passed 1/2 test cases", result.Explanation)
}

func TestEvaluateExpectedSubstringFallback(t *testing.T) {
	svc := newEvalService(&stubGrader{}, false)
	challenge := &model.Challenge{Expected: "flag{123}"}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "found flag{123} in the log", EvaluationOptions{})

	assert.Equal(t, 1.0, result.ScoreFraction)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "Matched expected output", result.Explanation)
	assert.Equal(t, "flag{123}", result.OfficialAnswer)
}

func TestEvaluateNoValidationData(t *testing.T) {
	svc := newEvalService(&stubGrader{enabled: false}, false)
	challenge := &model.Challenge{}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "free-form notes", EvaluationOptions{})

	assert.Zero(t, result.ScoreFraction)
	assert.Equal(t, grading.Incorrect, result.Correctness)
	assert.Equal(t, "AI evaluation is not configured on the server.", result.Explanation)
}

func TestEvaluateGeneratesCanonicalAnswer(t *testing.T) {
	grader := &stubGrader{
		enabled:   true,
		outcome:   &AIGradeOutcome{ScoreFraction: 0.5, HasScore: true, Explanation: "Halfway"},
		generated: "rotate the leaked credentials",
	}
	svc := newEvalService(grader, true)
	challenge := &model.Challenge{}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "change password", EvaluationOptions{})

	require.Equal(t, 1, grader.genCalls)
	assert.Equal(t, "rotate the leaked credentials", result.OfficialAnswer)
	assert.True(t, result.AIGeneratedAnswer)
}

func TestEvaluateForceWithDeterministicData(t *testing.T) {
	grader := &stubGrader{
		enabled: true,
		outcome: &AIGradeOutcome{ScoreFraction: 0.9, HasScore: true, Explanation: "Strong answer"},
	}
	svc := newEvalService(grader, false)
	challenge := &model.Challenge{Expected: "exact output"}

	result := svc.Evaluate(context.Background(), "m1#0", challenge, "roughly right", EvaluationOptions{ForceAI: true})

	require.Equal(t, 1, grader.gradeCalls)
	assert.True(t, result.AIUsed)
	assert.InDelta(t, 0.9, result.ScoreFraction, 0.001)
	assert.Equal(t, "Strong answer", result.Explanation)
}
