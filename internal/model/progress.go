package model

import (
	"encoding/json"
	"time"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not-started"
	StatusInProgress ProgressStatus = "in-progress"
	StatusCompleted  ProgressStatus = "completed"
)

// SubmissionTrack records which sections of a mission have been
// submitted at least once. The flags are monotonic: once true they are
// never reset by later partial submissions.
type SubmissionTrack struct {
	QuestionsSubmitted  bool `json:"questionsSubmitted"`
	ScenariosSubmitted  bool `json:"scenariosSubmitted"`
	ChallengesSubmitted bool `json:"challengesSubmitted"`
}

// MissionProgress is the long-lived, append-only progress record for
// one user-mission pair. Answers is a positional JSON array sharing
// index space across questions then scenarios (nulls mark unanswered
// positions); ChallengeSolutions maps challenge index to submitted
// text or code.
// swagger:model MissionProgress
type MissionProgress struct {
	BaseModel
	UserID    uint           `gorm:"index:idx_user_mission,unique;type:bigint unsigned" json:"userId"`
	MissionID string         `gorm:"index:idx_user_mission,unique;size:36" json:"missionId"`
	Status    ProgressStatus `gorm:"size:20;default:'not-started'" json:"status"`

	Answers            json.RawMessage `gorm:"type:json" json:"answers"`
	ChallengeSolutions json.RawMessage `gorm:"type:json" json:"challengeSolutions"`

	QuestionsSubmitted  bool `gorm:"default:false" json:"questionsSubmitted"`
	ScenariosSubmitted  bool `gorm:"default:false" json:"scenariosSubmitted"`
	ChallengesSubmitted bool `gorm:"default:false" json:"challengesSubmitted"`

	Score       int        `gorm:"default:0" json:"score"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	LastPlayed  *time.Time `json:"lastPlayed,omitempty"`
}

func (MissionProgress) TableName() string {
	return "mission_progress"
}

func (p *MissionProgress) Track() SubmissionTrack {
	return SubmissionTrack{
		QuestionsSubmitted:  p.QuestionsSubmitted,
		ScenariosSubmitted:  p.ScenariosSubmitted,
		ChallengesSubmitted: p.ChallengesSubmitted,
	}
}

// DecodeAnswers unpacks the positional answers array; nil entries mark
// unanswered positions.
func (p *MissionProgress) DecodeAnswers() []*int {
	if len(p.Answers) == 0 {
		return nil
	}
	var answers []*int
	if err := json.Unmarshal(p.Answers, &answers); err != nil {
		return nil
	}
	return answers
}

func (p *MissionProgress) SetAnswers(answers []*int) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	p.Answers = raw
	return nil
}

// DecodeSolutions unpacks the challenge-index keyed submission map.
func (p *MissionProgress) DecodeSolutions() map[string]string {
	solutions := map[string]string{}
	if len(p.ChallengeSolutions) == 0 {
		return solutions
	}
	if err := json.Unmarshal(p.ChallengeSolutions, &solutions); err != nil {
		return map[string]string{}
	}
	return solutions
}

func (p *MissionProgress) SetSolutions(solutions map[string]string) error {
	raw, err := json.Marshal(solutions)
	if err != nil {
		return err
	}
	p.ChallengeSolutions = raw
	return nil
}
