package repository

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	if err := r.DB.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TestRepository) ListPublished(page, limit int) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64

	q := r.DB.Model(&model.Test{}).Where("is_published = ?", true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tests).Error
	return tests, total, err
}

// SetPublished also refreshes TotalQuestions from the question table so the
// published paper always advertises the real count.
func (r *TestRepository) SetPublished(id uint, published bool) error {
	var count int64
	if err := r.DB.Model(&model.Question{}).Where("test_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	return r.DB.Model(&model.Test{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_published":    published,
			"total_questions": count,
		}).Error
}
