package service

import (
	"errors"

	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
	"github.com/HrushithaL/CyberQuest-sub001/internal/repository"
	"github.com/HrushithaL/CyberQuest-sub001/internal/util"
)

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
}

func NewProgressService(progressRepo *repository.ProgressRepository, userRepo *repository.UserRepository) *ProgressService {
	return &ProgressService{
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
	}
}

// UserProgressView bundles the user's gamification totals with every
// mission progress record.
type UserProgressView struct {
	Score    int                     `json:"score"`
	Level    int                     `json:"level"`
	Missions []model.MissionProgress `json:"missions"`
	History  []model.ScoreHistory    `json:"history"`
}

func (s *ProgressService) UserProgress(userID uint) (*UserProgressView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	missions, err := s.ProgressRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	history, err := s.UserRepo.History(userID)
	if err != nil {
		return nil, err
	}

	return &UserProgressView{
		Score:    user.Score,
		Level:    user.Level,
		Missions: missions,
		History:  history,
	}, nil
}

// MissionProgress returns the record for one mission, or a fresh
// not-started view when the user has never opened it.
func (s *ProgressService) MissionProgress(userID uint, missionID string) (*model.MissionProgress, error) {
	progress, err := s.ProgressRepo.Find(userID, missionID)
	if errors.Is(err, util.ErrProgressNotFound) {
		return &model.MissionProgress{
			UserID:    userID,
			MissionID: missionID,
			Status:    model.StatusNotStarted,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return progress, nil
}
