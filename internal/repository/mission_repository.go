package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HrushithaL/CyberQuest-sub001/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const missionCacheTTL = 5 * time.Minute

type MissionRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewMissionRepository(db *gorm.DB, rdb *redis.Client) *MissionRepository {
	return &MissionRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

func missionCacheKey(id string) string {
	return fmt.Sprintf("mission:doc:%s", id)
}

func (r *MissionRepository) Create(mission *model.Mission) error {
	return r.DB.Create(mission).Error
}

// FindByID reads through the redis document cache. Cache misses and
// decode failures fall back to the database.
func (r *MissionRepository) FindByID(id string) (*model.Mission, error) {
	if r.Redis != nil {
		cached, err := r.Redis.Get(r.ctx, missionCacheKey(id)).Result()
		if err == nil {
			var mission model.Mission
			if jsonErr := json.Unmarshal([]byte(cached), &mission); jsonErr == nil {
				return &mission, nil
			}
		}
	}

	var mission model.Mission
	if err := r.DB.Where("id = ?", id).First(&mission).Error; err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(&mission); err == nil {
			r.Redis.Set(r.ctx, missionCacheKey(id), data, missionCacheTTL)
		}
	}
	return &mission, nil
}

func (r *MissionRepository) FindPublished() ([]model.Mission, error) {
	var missions []model.Mission
	err := r.DB.Where("is_published = ?", true).Order("created_at ASC").Find(&missions).Error
	return missions, err
}

func (r *MissionRepository) FindAll() ([]model.Mission, error) {
	var missions []model.Mission
	err := r.DB.Order("created_at ASC").Find(&missions).Error
	return missions, err
}

func (r *MissionRepository) Update(mission *model.Mission) error {
	err := r.DB.Save(mission).Error
	if err == nil && r.Redis != nil {
		r.Redis.Del(r.ctx, missionCacheKey(mission.ID))
	}
	return err
}

// InvalidateCache drops the cached document after an out-of-band
// write, such as a transactional content update.
func (r *MissionRepository) InvalidateCache(id string) {
	if r.Redis != nil {
		r.Redis.Del(r.ctx, missionCacheKey(id))
	}
}

func (r *MissionRepository) Delete(id string) error {
	err := r.DB.Delete(&model.Mission{}, "id = ?", id).Error
	if err == nil && r.Redis != nil {
		r.Redis.Del(r.ctx, missionCacheKey(id))
	}
	return err
}
