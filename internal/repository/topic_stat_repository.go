package repository

import (
	"errors"
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type TopicStatRepository struct {
	DB *gorm.DB
}

func NewTopicStatRepository(db *gorm.DB) *TopicStatRepository {
	return &TopicStatRepository{DB: db}
}

// AddDelta folds one attempt's per-section outcome into the running tallies.
func (r *TopicStatRepository) AddDelta(userID uint, section string, attempted, wrong int) error {
	var stat model.TopicStat
	err := r.DB.Where("user_id = ? AND section = ?", userID, section).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.DB.Create(&model.TopicStat{
			UserID:    userID,
			Section:   section,
			Attempted: attempted,
			Wrong:     wrong,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.DB.Model(&stat).Updates(map[string]interface{}{
		"attempted": gorm.Expr("attempted + ?", attempted),
		"wrong":     gorm.Expr("wrong + ?", wrong),
	}).Error
}

// ListWeakest returns the user's sections ordered by wrong share descending.
func (r *TopicStatRepository) ListWeakest(userID uint, limit int) ([]model.TopicStat, error) {
	var stats []model.TopicStat
	err := r.DB.Where("user_id = ? AND attempted > 0", userID).
		Order("wrong * 1.0 / attempted DESC").
		Limit(limit).
		Find(&stats).Error
	return stats, err
}
