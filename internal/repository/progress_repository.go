package repository

import (
	"errors"

	"github.com/HrushithaL/CyberQuest-sub001/internal/model"
	"github.com/HrushithaL/CyberQuest-sub001/internal/util"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID uint, missionID string) (*model.MissionProgress, error) {
	var progress model.MissionProgress
	err := r.DB.Where("user_id = ? AND mission_id = ?", userID, missionID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FindOrCreate returns the user's record for a mission, creating a
// fresh not-started row when none exists.
func (r *ProgressRepository) FindOrCreate(userID uint, missionID string) (*model.MissionProgress, error) {
	progress, err := r.Find(userID, missionID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, util.ErrProgressNotFound) {
		return nil, err
	}

	progress = &model.MissionProgress{
		UserID:    userID,
		MissionID: missionID,
		Status:    model.StatusNotStarted,
	}
	if err := r.DB.Create(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *ProgressRepository) Save(progress *model.MissionProgress) error {
	return r.DB.Save(progress).Error
}

// SaveTx persists the merged progress inside the caller's transaction.
func (r *ProgressRepository) SaveTx(tx *gorm.DB, progress *model.MissionProgress) error {
	return tx.Save(progress).Error
}

func (r *ProgressRepository) FindByUser(userID uint) ([]model.MissionProgress, error) {
	var records []model.MissionProgress
	err := r.DB.Where("user_id = ?", userID).Order("updated_at DESC").Find(&records).Error
	return records, err
}
