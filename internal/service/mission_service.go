package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/HrushithaL/CyberQuest-sub001/internal/grading"
	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
	"github.com/HrushithaL/CyberQuest-sub001/internal/repository"
	"github.com/HrushithaL/CyberQuest-sub001/internal/util"
	"github.com/HrushithaL/CyberQuest-sub001/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ValidationError carries a client-facing message about a malformed
// submission payload; controllers map it to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type MissionService struct {
	MissionRepo  *repository.MissionRepository
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
	Evaluator    *EvaluationService
	Grader       Grader
	Storage      StorageProvider
	DB           *gorm.DB
}

func NewMissionService(
	missionRepo *repository.MissionRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	evaluator *EvaluationService,
	grader Grader,
	storage StorageProvider,
	db *gorm.DB,
) *MissionService {
	return &MissionService{
		MissionRepo:  missionRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
		Evaluator:    evaluator,
		Grader:       grader,
		Storage:      storage,
		DB:           db,
	}
}

// MissionView is a mission document with grading fields stripped and
// the caller's progress attached.
type MissionView struct {
	model.Mission
	Content      model.MissionContent   `json:"content"`
	UserProgress *model.MissionProgress `json:"userProgress,omitempty"`
}

// MissionsWithProgress lists published missions masked for play, each
// carrying the user's progress record when one exists.
func (s *MissionService) MissionsWithProgress(userID uint) ([]MissionView, error) {
	missions, err := s.MissionRepo.FindPublished()
	if err != nil {
		return nil, err
	}

	records, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	byMission := make(map[string]*model.MissionProgress, len(records))
	for i := range records {
		byMission[records[i].MissionID] = &records[i]
	}

	views := make([]MissionView, 0, len(missions))
	for i := range missions {
		content, err := missions[i].DecodeContent()
		if err != nil {
			logger.Log.Warn("mission content decode failed",
				zap.String("mission", missions[i].ID),
				zap.Error(err))
			continue
		}
		views = append(views, MissionView{
			Mission:      missions[i],
			Content:      content.Masked(),
			UserProgress: byMission[missions[i].ID],
		})
	}
	return views, nil
}

// MissionByID returns one masked mission with progress attached; a
// not-started record transitions to in-progress on first open.
func (s *MissionService) MissionByID(userID uint, missionID string) (*MissionView, error) {
	mission, err := s.MissionRepo.FindByID(missionID)
	if err != nil {
		return nil, util.ErrMissionNotFound
	}
	if !mission.IsPublished {
		return nil, util.ErrMissionNotPublished
	}

	progress, err := s.ProgressRepo.FindOrCreate(userID, missionID)
	if err != nil {
		return nil, err
	}
	if progress.Status == model.StatusNotStarted {
		now := time.Now()
		progress.Status = model.StatusInProgress
		progress.StartedAt = &now
		if err := s.ProgressRepo.Save(progress); err != nil {
			return nil, err
		}
	}

	content, err := mission.DecodeContent()
	if err != nil {
		return nil, err
	}

	return &MissionView{
		Mission:      *mission,
		Content:      content.Masked(),
		UserProgress: progress,
	}, nil
}

type SubmitMissionRequest struct {
	MissionID          string            `json:"missionId"`
	Answers            []*int            `json:"answers"`
	ChallengeSolutions map[string]string `json:"challengeSolutions"`
	Force              bool              `json:"force"`
}

type AnswerDetail struct {
	Type          string  `json:"type"`
	Index         int     `json:"index"`
	Question      string  `json:"question,omitempty"`
	Title         string  `json:"title,omitempty"`
	Sender        string  `json:"sender,omitempty"`
	Subject       string  `json:"subject,omitempty"`
	Content       string  `json:"content,omitempty"`
	Description   string  `json:"description,omitempty"`
	UserAnswer    string  `json:"userAnswer,omitempty"`
	CorrectAnswer string  `json:"correctAnswer,omitempty"`
	Submitted     string  `json:"submitted,omitempty"`
	IsCorrect     bool    `json:"isCorrect"`
	Correctness   string  `json:"correctness,omitempty"`
	ScoreFraction float64 `json:"scoreFraction,omitempty"`
	TestsPassed   int     `json:"testsPassed,omitempty"`
	TotalTests    int     `json:"totalTests,omitempty"`
	MaxScore      int     `json:"maxScore,omitempty"`
	Explanation   string  `json:"explanation,omitempty"`
	AIUsed        bool    `json:"aiUsed,omitempty"`
	Hint          string  `json:"hint,omitempty"`
	RecommendHint bool    `json:"recommendHint,omitempty"`
	Topic         string  `json:"topic"`
}

type SubmitMissionResult struct {
	Gained          int                   `json:"gained"`
	TotalScore      int                   `json:"totalScore"`
	Level           int                   `json:"level"`
	AnswerDetails   []AnswerDetail        `json:"answerDetails"`
	MissionTopic    string                `json:"missionTopic"`
	SubmissionTrack model.SubmissionTrack `json:"submissionTrack"`
	Status          model.ProgressStatus  `json:"status"`
}

// SubmitMission grades a submission, awards experience proportional to
// correctness, and merges the submission into the user's progress
// record. Score, history and progress writes happen in one
// transaction.
func (s *MissionService) SubmitMission(ctx context.Context, userID uint, req *SubmitMissionRequest) (*SubmitMissionResult, error) {
	if req.MissionID == "" {
		return nil, &ValidationError{Message: "Mission ID is required"}
	}
	if req.Answers == nil && len(req.ChallengeSolutions) == 0 {
		return nil, util.ErrInvalidAnswers
	}

	mission, err := s.MissionRepo.FindByID(req.MissionID)
	if err != nil {
		return nil, util.ErrMissionNotFound
	}
	content, err := mission.DecodeContent()
	if err != nil {
		return nil, err
	}

	if err := validateAnswers(req.Answers, content); err != nil {
		return nil, err
	}

	questions := content.Questions
	scenarios := content.Scenarios
	challenges := content.Challenges

	var (
		details      []AnswerDetail
		totalItems   int
		correctCount float64
	)

	for i, q := range questions {
		var userAnswer *int
		if i < len(req.Answers) {
			userAnswer = req.Answers[i]
		}
		isCorrect := userAnswer != nil && q.Answer != nil && *userAnswer == *q.Answer
		if isCorrect {
			correctCount++
		}

		detail := AnswerDetail{
			Type:        "question",
			Index:       i,
			Question:    q.Question,
			UserAnswer:  "Not answered",
			IsCorrect:   isCorrect,
			Explanation: q.Explanation,
			Topic:       mission.Topic,
		}
		if userAnswer != nil && *userAnswer < len(q.Options) {
			detail.UserAnswer = q.Options[*userAnswer]
		}
		if q.Answer != nil && *q.Answer < len(q.Options) {
			detail.CorrectAnswer = q.Options[*q.Answer]
		}
		details = append(details, detail)
	}
	totalItems += len(questions)

	// Scenarios count only when the batch actually answered one, so a
	// submission touching other sections is not scored as all-wrong.
	if len(scenarios) > 0 && hasScenarioAnswer(req.Answers, len(questions), len(scenarios)) {
		for i, sc := range scenarios {
			idx := len(questions) + i
			var userAnswer *int
			if idx < len(req.Answers) {
				userAnswer = req.Answers[idx]
			}
			isCorrect := userAnswer != nil && sc.Answer != nil && *userAnswer == *sc.Answer
			if isCorrect {
				correctCount++
			}

			title := sc.Title
			if title == "" {
				title = fmt.Sprintf("Scenario %d", i+1)
			}
			detail := AnswerDetail{
				Type:        "scenario",
				Index:       i,
				Title:       title,
				Sender:      sc.Sender,
				Subject:     sc.Subject,
				Content:     sc.Content,
				UserAnswer:  "Not answered",
				IsCorrect:   isCorrect,
				Explanation: sc.Explanation,
				Topic:       mission.Topic,
			}
			if userAnswer != nil && *userAnswer < len(sc.Options) {
				detail.UserAnswer = sc.Options[*userAnswer]
			}
			if sc.Answer != nil && *sc.Answer < len(sc.Options) {
				detail.CorrectAnswer = sc.Options[*sc.Answer]
			}
			details = append(details, detail)
		}
		totalItems += len(scenarios)
	}

	missionDirty := false
	if len(challenges) > 0 && len(req.ChallengeSolutions) > 0 {
		for idx := range challenges {
			submission := strings.TrimSpace(req.ChallengeSolutions[strconv.Itoa(idx)])
			if submission == "" {
				continue
			}

			c := &content.Challenges[idx]
			result := s.Evaluator.Evaluate(ctx, challengeIdentity(mission.ID, idx), c, submission, EvaluationOptions{ForceAI: req.Force})

			if attachGeneratedAnswer(c, result) {
				missionDirty = true
			}

			correctCount += result.ScoreFraction
			totalItems++

			title := c.Title
			if title == "" {
				title = fmt.Sprintf("Challenge %d", idx+1)
			}
			details = append(details, AnswerDetail{
				Type:          "challenge",
				Index:         idx,
				Title:         title,
				Description:   c.Description,
				Submitted:     submission,
				IsCorrect:     result.IsCorrect,
				Correctness:   result.Correctness,
				ScoreFraction: result.ScoreFraction,
				TestsPassed:   result.TestsPassed,
				TotalTests:    result.TotalTests,
				MaxScore:      1,
				Explanation:   result.Explanation,
				AIUsed:        result.AIUsed,
				Hint:          result.Hint,
				RecommendHint: result.RecommendHint,
				Topic:         mission.Topic,
			})
		}
	}

	gained := awardPoints(mission.PointValue(), correctCount, totalItems)

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	user.Score += gained
	user.Level = user.Score/1000 + 1

	progress, err := s.ProgressRepo.FindOrCreate(userID, mission.ID)
	if err != nil {
		return nil, err
	}
	if err := ApplyMerge(progress, req.Answers, req.ChallengeSolutions, content); err != nil {
		return nil, err
	}
	progress.Score = gained

	if missionDirty {
		if err := mission.SetContent(content); err != nil {
			return nil, err
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		history := &model.ScoreHistory{
			UserID:     user.ID,
			MissionID:  mission.ID,
			Score:      gained,
			Difficulty: string(mission.Difficulty),
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		if err := tx.Save(progress).Error; err != nil {
			return err
		}
		if missionDirty {
			return tx.Save(mission).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if missionDirty {
		s.MissionRepo.InvalidateCache(mission.ID)
	}

	return &SubmitMissionResult{
		Gained:          gained,
		TotalScore:      user.Score,
		Level:           user.Level,
		AnswerDetails:   details,
		MissionTopic:    mission.Topic,
		SubmissionTrack: progress.Track(),
		Status:          progress.Status,
	}, nil
}

func validateAnswers(answers []*int, content model.MissionContent) error {
	questions := content.Questions
	scenarios := content.Scenarios

	for i, answer := range answers {
		if answer == nil {
			continue
		}
		if i < len(questions) {
			optionCount := len(questions[i].Options)
			if *answer < 0 || *answer >= optionCount {
				return &ValidationError{Message: fmt.Sprintf("Answer at index %d must be between 0 and %d", i, optionCount-1)}
			}
			continue
		}

		scenarioIdx := i - len(questions)
		if scenarioIdx >= len(scenarios) {
			return &ValidationError{Message: fmt.Sprintf("Answer provided for non-existent scenario at index %d", scenarioIdx)}
		}
		optionCount := len(scenarios[scenarioIdx].Options)
		if *answer < 0 || *answer >= optionCount {
			return &ValidationError{Message: fmt.Sprintf("Answer at index %d (scenario %d) must be between 0 and %d", i, scenarioIdx, optionCount-1)}
		}
	}
	return nil
}

// awardPoints prorates a mission's point value by the graded fraction.
// A mission with nothing gradable pays out in full.
func awardPoints(points int, correctCount float64, totalItems int) int {
	if totalItems == 0 {
		return points
	}
	return int(math.Round(float64(points) * correctCount / float64(totalItems)))
}

func hasScenarioAnswer(answers []*int, questionCount, scenarioCount int) bool {
	for i := questionCount; i < questionCount+scenarioCount && i < len(answers); i++ {
		if answers[i] != nil {
			return true
		}
	}
	return false
}

// challengeIdentity keys the evaluation cache per challenge within a
// mission document.
func challengeIdentity(missionID string, index int) string {
	return fmt.Sprintf("%s#%d", missionID, index)
}

// attachGeneratedAnswer records a freshly minted canonical answer on
// the challenge, write-once: an existing expected or official answer is
// never overwritten.
func attachGeneratedAnswer(c *model.Challenge, result grading.Result) bool {
	if !result.AIGeneratedAnswer || result.OfficialAnswer == "" {
		return false
	}
	if c.Expected != "" || c.OfficialAnswer != "" {
		return false
	}
	now := time.Now()
	c.OfficialAnswer = result.OfficialAnswer
	c.OfficialAnswerGeneratedBy = "ai"
	c.OfficialAnswerGeneratedAt = &now
	return true
}

type EvaluateChallengeRequest struct {
	MissionID      string `json:"missionId"`
	ChallengeIndex *int   `json:"challengeIndex"`
	Submission     string `json:"submission"`
	Force          bool   `json:"force"`
}

// EvaluateChallenge grades one challenge submission without persisting
// any score. Force without the external capability configured is a
// reportable error, not a silent no-op.
func (s *MissionService) EvaluateChallenge(ctx context.Context, req *EvaluateChallengeRequest) (*grading.Result, error) {
	if req.MissionID == "" {
		return nil, &ValidationError{Message: "Mission ID is required"}
	}
	if req.ChallengeIndex == nil {
		return nil, &ValidationError{Message: "Challenge index is required"}
	}

	mission, err := s.MissionRepo.FindByID(req.MissionID)
	if err != nil {
		return nil, util.ErrMissionNotFound
	}
	content, err := mission.DecodeContent()
	if err != nil {
		return nil, err
	}

	idx := *req.ChallengeIndex
	if idx < 0 || idx >= len(content.Challenges) {
		return nil, &ValidationError{Message: "Invalid challenge index"}
	}

	if req.Force && (s.Grader == nil || !s.Grader.Enabled()) {
		return nil, util.ErrAIEvalDisabled
	}

	c := &content.Challenges[idx]
	submission := strings.TrimSpace(req.Submission)
	if submission == "" {
		return nil, util.ErrNoSubmission
	}
	result := s.Evaluator.Evaluate(ctx, challengeIdentity(mission.ID, idx), c, submission, EvaluationOptions{ForceAI: req.Force})

	if attachGeneratedAnswer(c, result) {
		if err := mission.SetContent(content); err == nil {
			if err := s.MissionRepo.Update(mission); err != nil {
				logger.Log.Warn("failed to persist generated official answer",
					zap.String("mission", mission.ID),
					zap.Int("challenge", idx),
					zap.Error(err))
			}
		}
	}

	return &result, nil
}

type AutosaveRequest struct {
	MissionID          string            `json:"missionId"`
	Answers            []*int            `json:"answers"`
	ChallengeSolutions map[string]string `json:"challengeSolutions"`
}

// Autosave replaces the user's draft state wholesale; it never
// downgrades a completed mission.
func (s *MissionService) Autosave(userID uint, req *AutosaveRequest) (*model.MissionProgress, error) {
	if req.MissionID == "" {
		return nil, &ValidationError{Message: "Mission ID is required"}
	}

	if _, err := s.MissionRepo.FindByID(req.MissionID); err != nil {
		return nil, util.ErrMissionNotFound
	}

	progress, err := s.ProgressRepo.FindOrCreate(userID, req.MissionID)
	if err != nil {
		return nil, err
	}
	if err := ApplyAutosave(progress, req.Answers, req.ChallengeSolutions); err != nil {
		return nil, err
	}
	if err := s.ProgressRepo.Save(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

type CompleteMissionResult struct {
	EarnedPoints int `json:"earnedPoints"`
	NewScore     int `json:"newScore"`
	NewLevel     int `json:"newLevel"`
}

// CompleteMission awards a mission's full point value unconditionally.
func (s *MissionService) CompleteMission(userID uint, missionID string) (*CompleteMissionResult, error) {
	mission, err := s.MissionRepo.FindByID(missionID)
	if err != nil {
		return nil, util.ErrMissionNotFound
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	earned := mission.PointValue()
	user.Score += earned
	user.Level = user.Score/1000 + 1

	history := &model.ScoreHistory{
		UserID:     user.ID,
		MissionID:  mission.ID,
		Score:      earned,
		Difficulty: string(mission.Difficulty),
	}
	if err := s.UserRepo.AwardScore(user, history); err != nil {
		return nil, err
	}

	return &CompleteMissionResult{
		EarnedPoints: earned,
		NewScore:     user.Score,
		NewLevel:     user.Level,
	}, nil
}

// ChallengeAttachment streams the evidence file attached to a
// challenge, such as a packet capture or log dump.
func (s *MissionService) ChallengeAttachment(ctx context.Context, missionID string, challengeIndex int) (io.ReadCloser, string, error) {
	mission, err := s.MissionRepo.FindByID(missionID)
	if err != nil {
		return nil, "", util.ErrMissionNotFound
	}
	content, err := mission.DecodeContent()
	if err != nil {
		return nil, "", err
	}
	if challengeIndex < 0 || challengeIndex >= len(content.Challenges) {
		return nil, "", util.ErrChallengeNotFound
	}

	attachment := content.Challenges[challengeIndex].Attachment
	if attachment == "" {
		return nil, "", util.ErrAttachmentNotFound
	}

	reader, err := s.Storage.Download(ctx, attachment)
	if err != nil {
		return nil, "", util.ErrAttachmentNotFound
	}
	return reader, attachment, nil
}

type ValidateSectionRequest struct {
	MissionID string         `json:"missionId"`
	Type      string         `json:"type"` // questions or scenarios
	Answers   map[string]int `json:"answers"`
}

type SectionItemResult struct {
	Index         int    `json:"index"`
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer *int   `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// ValidateSection checks one section's answers without scoring; it
// returns the authored answers, so the client uses it only after
// section submission.
func (s *MissionService) ValidateSection(req *ValidateSectionRequest) ([]SectionItemResult, error) {
	if req.MissionID == "" || req.Type == "" {
		return nil, &ValidationError{Message: "Missing required fields"}
	}

	mission, err := s.MissionRepo.FindByID(req.MissionID)
	if err != nil {
		return nil, util.ErrMissionNotFound
	}
	content, err := mission.DecodeContent()
	if err != nil {
		return nil, err
	}

	results := []SectionItemResult{}
	switch req.Type {
	case "questions":
		for i, q := range content.Questions {
			answer, ok := req.Answers[strconv.Itoa(i)]
			results = append(results, SectionItemResult{
				Index:         i,
				IsCorrect:     ok && q.Answer != nil && answer == *q.Answer,
				CorrectAnswer: q.Answer,
				Explanation:   q.Explanation,
			})
		}
	case "scenarios":
		for i, sc := range content.Scenarios {
			// the client sends scenario keys as "sc-<i>" or "<i>"
			answer, ok := req.Answers["sc-"+strconv.Itoa(i)]
			if !ok {
				answer, ok = req.Answers[strconv.Itoa(i)]
			}
			results = append(results, SectionItemResult{
				Index:         i,
				IsCorrect:     ok && sc.Answer != nil && answer == *sc.Answer,
				CorrectAnswer: sc.Answer,
				Explanation:   sc.Explanation,
			})
		}
	}
	return results, nil
}
