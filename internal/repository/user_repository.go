package repository

import (
	"github.com/HrushithaL/CyberQuest-sub001/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// AwardScore applies an experience award and its history row in one
// transaction so the user total and the history never diverge.
func (r *UserRepository) AwardScore(user *model.User, entry *model.ScoreHistory) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

func (r *UserRepository) History(userID uint) ([]model.ScoreHistory, error) {
	var history []model.ScoreHistory
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&history).Error
	return history, err
}
