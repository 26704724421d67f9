package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HrushithaL/CyberQuest-sub001/internal/config"
	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/logger"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/monitoring"

	"go.uber.org/zap"
)

// Grader is the external evaluation capability. The concrete client is
// AIService; tests substitute a stub.
type Grader interface {
	GradeChallenge(ctx context.Context, challenge *model.Challenge, submission string) (*AIGradeOutcome, error)
	GenerateAnswer(ctx context.Context, challenge *model.Challenge) (string, error)
	Enabled() bool
}

// AIGradeOutcome is the normalized external grading verdict after
// response tolerances are applied.
type AIGradeOutcome struct {
	ScoreFraction  float64
	HasScore       bool
	TestsPassed    int
	TotalTests     int
	Explanation    string
	Hint           string
	RecommendHint  bool
	OfficialAnswer string
}

type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// UpdateConfig swaps in reloaded settings; used by the config watcher
// so the AI toggle takes effect without a restart.
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}

func (s *AIService) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Enabled && s.config.APIKey != ""
}

func (s *AIService) snapshot() config.AIConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

type aiChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []aiChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message aiChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// apiError keeps the upstream status code so retry logic can tell
// throttling and server faults from permanent request errors.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("AI API error (status %d): %s", e.StatusCode, e.Body)
}

func (e *apiError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type gradePromptChallenge struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Code        string           `json:"code"`
	Language    string           `json:"language"`
	Expected    *string          `json:"expected"`
	TestCases   []model.TestCase `json:"testCases"`
}

type gradePrompt struct {
	Instruction string               `json:"instruction"`
	Challenge   gradePromptChallenge `json:"challenge"`
	Submission  string               `json:"submission"`
}

const gradeInstruction = "You are an automated cybersecurity grader. Given the challenge title, description, code snippet (if any), and a user's submission, evaluate the answer and provide the correct solution. Return ONLY JSON with the structure: { grade: { scoreFraction: number (0-1 where 1 is fully correct), explanation: string (explain why correct/incorrect), hint: string|null }, officialAnswer: string (the correct answer/solution) }. Only output JSON."

const generateInstruction = "You are a concise technical assistant. Given a challenge title and description, produce a short canonical answer or solution suitable for showing as an official answer. Return only the answer text."

// GradeChallenge asks the chat-completions endpoint for a verdict on a
// submission and normalizes the JSON it returns.
func (s *AIService) GradeChallenge(ctx context.Context, challenge *model.Challenge, submission string) (*AIGradeOutcome, error) {
	var expected *string
	if challenge.Expected != "" {
		e := challenge.Expected
		expected = &e
	}
	testCases := challenge.TestCases
	if testCases == nil {
		testCases = []model.TestCase{}
	}

	prompt := gradePrompt{
		Instruction: gradeInstruction,
		Challenge: gradePromptChallenge{
			Title:       challenge.Title,
			Description: challenge.Description,
			Code:        challenge.Code,
			Language:    challenge.Language,
			Expected:    expected,
			TestCases:   testCases,
		},
		Submission: submission,
	}

	content, err := json.Marshal(prompt)
	if err != nil {
		return nil, err
	}

	text, err := s.callWithRetry(ctx, string(content))
	if err != nil {
		return nil, err
	}

	return parseGradeResponse(text, len(challenge.TestCases))
}

// GenerateAnswer mints a canonical answer for a challenge that has
// none. Callers decide whether the result may be persisted.
func (s *AIService) GenerateAnswer(ctx context.Context, challenge *model.Challenge) (string, error) {
	prompt := struct {
		Instruction string `json:"instruction"`
		Challenge   struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"challenge"`
	}{Instruction: generateInstruction}
	prompt.Challenge.Title = challenge.Title
	prompt.Challenge.Description = challenge.Description

	content, err := json.Marshal(prompt)
	if err != nil {
		return "", err
	}

	text, err := s.callWithRetry(ctx, string(content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// callWithRetry sends one user message and retries throttled or
// transient failures with exponential backoff. The context bounds the
// whole attempt sequence including backoff sleeps.
func (s *AIService) callWithRetry(ctx context.Context, userContent string) (string, error) {
	cfg := s.snapshot()

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	baseDelay := time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 800 * time.Millisecond
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			monitoring.AIGradingRetries.Inc()
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				monitoring.AIGradingFailures.Inc()
				return "", ctx.Err()
			}
			delay *= 2
		}

		text, err := s.call(ctx, cfg, userContent)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if apiErr, ok := err.(*apiError); ok && !apiErr.retryable() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		logger.Log.Warn("AI grading call failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	monitoring.AIGradingFailures.Inc()
	return "", lastErr
}

func (s *AIService) call(ctx context.Context, cfg config.AIConfig, userContent string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: cfg.Model,
		Messages: []aiChatMessage{
			{Role: "user", Content: userContent},
		},
		Temperature: 0.0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &apiError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

type gradeFields struct {
	ScoreFraction *float64 `json:"scoreFraction"`
	TestsPassed   int      `json:"testsPassed"`
	TotalTests    int      `json:"totalTests"`
	Explanation   string   `json:"explanation"`
	Hint          string   `json:"hint"`
	RecommendHint bool     `json:"recommendHint"`
}

type gradeEnvelope struct {
	Grade *gradeFields `json:"grade"`
	gradeFields
	OfficialAnswer  string `json:"officialAnswer"`
	OfficialAnswer2 string `json:"official_answer"`
	Answer          string `json:"answer"`
}

// parseGradeResponse tolerates the shapes graders actually return:
// markdown code fences around the JSON, grade fields nested under
// "grade" or at the top level, and the canonical answer under
// officialAnswer, official_answer or answer.
func parseGradeResponse(text string, testCaseCount int) (*AIGradeOutcome, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var envelope gradeEnvelope
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, fmt.Errorf("AI evaluation returned invalid format: %w", err)
	}

	grade := envelope.Grade
	if grade == nil {
		grade = &envelope.gradeFields
	}

	outcome := &AIGradeOutcome{
		TestsPassed:   grade.TestsPassed,
		TotalTests:    grade.TotalTests,
		Explanation:   grade.Explanation,
		Hint:          grade.Hint,
		RecommendHint: grade.RecommendHint || grade.Hint != "",
	}
	if grade.ScoreFraction != nil {
		outcome.HasScore = true
		outcome.ScoreFraction = *grade.ScoreFraction
		if outcome.ScoreFraction < 0 {
			outcome.ScoreFraction = 0
		}
		if outcome.ScoreFraction > 1 {
			outcome.ScoreFraction = 1
		}
	}
	if outcome.TotalTests == 0 {
		outcome.TotalTests = testCaseCount
	}

	switch {
	case envelope.OfficialAnswer != "":
		outcome.OfficialAnswer = envelope.OfficialAnswer
	case envelope.OfficialAnswer2 != "":
		outcome.OfficialAnswer = envelope.OfficialAnswer2
	case envelope.Answer != "":
		outcome.OfficialAnswer = envelope.Answer
	}

	return outcome, nil
}
