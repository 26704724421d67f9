package model

import (
	"encoding/json"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// PointsForDifficulty returns the default mission point value when a
// mission document carries no explicit one.
func PointsForDifficulty(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 200
	case DifficultyHard:
		return 300
	case DifficultyExpert:
		return 500
	default:
		return 100
	}
}

// Mission is an authored playable unit: a mix of multiple-choice
// questions, narrative scenarios and open-ended challenges. The play
// content is stored as a single JSON document column.
// swagger:model Mission
type Mission struct {
	UUIDBase
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Topic       string          `gorm:"size:100;index" json:"topic"`
	Type        string          `gorm:"size:50" json:"type"` // mcq, scenario, challenge, comprehensive
	Difficulty  Difficulty      `gorm:"size:20;default:'easy'" json:"difficulty"`
	Points      int             `gorm:"default:0" json:"points"`
	Content     json.RawMessage `gorm:"type:json" json:"content"`
	IsPublished bool            `gorm:"default:false" json:"isPublished"`
	CreatedBy   uint            `gorm:"type:bigint unsigned" json:"createdBy"`
}

func (Mission) TableName() string {
	return "missions"
}

// DecodeContent unpacks the JSON content column. A mission with no
// content yields an empty (not nil-section) MissionContent.
func (m *Mission) DecodeContent() (MissionContent, error) {
	var content MissionContent
	if len(m.Content) == 0 {
		return content, nil
	}
	err := json.Unmarshal(m.Content, &content)
	return content, err
}

// SetContent re-encodes the content document, used when a lazily
// generated official answer is attached to a challenge.
func (m *Mission) SetContent(content MissionContent) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return err
	}
	m.Content = raw
	return nil
}

// PointValue falls back to the difficulty table when the authored
// point value is missing.
func (m *Mission) PointValue() int {
	if m.Points > 0 {
		return m.Points
	}
	return PointsForDifficulty(m.Difficulty)
}

type MissionContent struct {
	Questions  []Question  `json:"questions"`
	Scenarios  []Scenario  `json:"scenarios"`
	Challenges []Challenge `json:"challenges"`
}

// Masked strips every grading field before the content is shown to a
// player who has not submitted yet.
func (c MissionContent) Masked() MissionContent {
	masked := MissionContent{
		Questions:  make([]Question, len(c.Questions)),
		Scenarios:  make([]Scenario, len(c.Scenarios)),
		Challenges: make([]Challenge, len(c.Challenges)),
	}
	for i, q := range c.Questions {
		masked.Questions[i] = q.Masked()
	}
	for i, s := range c.Scenarios {
		masked.Scenarios[i] = s.Masked()
	}
	for i, ch := range c.Challenges {
		masked.Challenges[i] = ch.Masked()
	}
	return masked
}

// Question is a fixed-option multiple-choice item. Answer is the
// authored correct option index; nil after masking.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      *int     `json:"answer,omitempty"`
	Hint        string   `json:"hint,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Image       string   `json:"image,omitempty"`
}

func (q Question) Masked() Question {
	q.Answer = nil
	q.Explanation = ""
	return q
}

// Scenario is an email-style decision item sharing the question answer
// index space (scenario i lives at index questionCount+i).
type Scenario struct {
	Title       string   `json:"title"`
	Sender      string   `json:"sender,omitempty"`
	Subject     string   `json:"subject,omitempty"`
	Content     string   `json:"content"`
	Options     []string `json:"options"`
	Answer      *int     `json:"answer,omitempty"`
	Hint        string   `json:"hint,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

func (s Scenario) Masked() Scenario {
	s.Answer = nil
	s.Explanation = ""
	return s
}

// TestCase is an authored input/output pair for challenge grading.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Challenge is an open-ended gradable exercise. Authored grading data
// is one of: a canonical Solution, a keyword list, test cases, or
// nothing (external grading only). OfficialAnswer is written at most
// once when the external capability mints a canonical answer.
type Challenge struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Code               string     `json:"code,omitempty"`
	Language           string     `json:"language,omitempty"`
	Hints              []string   `json:"hints,omitempty"`
	Guide              string     `json:"guide,omitempty"`
	Attachment         string     `json:"attachment,omitempty"` // evidence object key (pcap, log dump)
	Expected           string     `json:"expected,omitempty"`
	OfficialAnswer     string     `json:"officialAnswer,omitempty"`
	CorrectSolution    *Solution  `json:"correctSolution,omitempty"`
	ValidationKeywords []string   `json:"validationKeywords,omitempty"`
	TestCases          []TestCase `json:"testCases,omitempty"`

	OfficialAnswerGeneratedBy string     `json:"officialAnswerGeneratedBy,omitempty"`
	OfficialAnswerGeneratedAt *time.Time `json:"officialAnswerGeneratedAt,omitempty"`
}

func (c Challenge) Masked() Challenge {
	c.Expected = ""
	c.OfficialAnswer = ""
	c.CorrectSolution = nil
	c.ValidationKeywords = nil
	c.TestCases = nil
	c.OfficialAnswerGeneratedBy = ""
	c.OfficialAnswerGeneratedAt = nil
	return c
}

// HasGradingData reports whether any deterministic grading data exists;
// when false the external capability is the only grading path.
func (c *Challenge) HasGradingData() bool {
	return c.CorrectSolution != nil || c.Expected != "" || len(c.TestCases) > 0
}
