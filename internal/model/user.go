package model

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string         `gorm:"size:100;not null" json:"name"`
	Email      string         `gorm:"size:100;unique;not null" json:"email"`
	Password   string         `gorm:"size:100;not null" json:"-"`
	Role       UserRole       `gorm:"type:enum('user','admin');default:'user'" json:"role"`
	SkillLevel string         `gorm:"size:20;default:'beginner'" json:"skillLevel"`
	Score      int            `gorm:"default:0" json:"score"`
	Level      int            `gorm:"default:1" json:"level"`
	History    []ScoreHistory `gorm:"foreignKey:UserID" json:"history,omitempty"`
	LastLogin  time.Time      `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}

// ScoreHistory records one experience award, appended on every scored
// mission submission.
// swagger:model ScoreHistory
type ScoreHistory struct {
	BaseModel
	UserID     uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	MissionID  string `gorm:"size:36;index" json:"missionId"`
	Score      int    `gorm:"default:0" json:"score"`
	Difficulty string `gorm:"size:20" json:"difficulty"`
}

func (ScoreHistory) TableName() string {
	return "score_histories"
}
