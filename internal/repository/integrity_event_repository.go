package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
)

type IntegrityEventRepository struct {
	DB *gorm.DB
}

func NewIntegrityEventRepository(db *gorm.DB) *IntegrityEventRepository {
	return &IntegrityEventRepository{DB: db}
}

func (r *IntegrityEventRepository) Create(event *model.IntegrityEvent) error {
	return r.DB.Create(event).Error
}

func (r *IntegrityEventRepository) ListByAttempt(attemptID uint) ([]model.IntegrityEvent, error) {
	var events []model.IntegrityEvent
	err := r.DB.Where("attempt_id = ?", attemptID).Order("id ASC").Find(&events).Error
	return events, err
}
