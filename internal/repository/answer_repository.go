package repository

import (
	"exam_portal_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Upsert writes the latest state of one (attempt, question) answer. Keyed by
// the unique index, so replayed flushes land on the same row; last write wins.
func (r *AnswerRepository) Upsert(answer *model.UserAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_option", "is_correct", "time_spent_seconds", "answered_at", "updated_at",
		}),
	}).Create(answer).Error
}

// SetReviewFlag persists immediately, outside the autosave buffer. The row is
// created lazily when the first interaction with the question is the flag.
func (r *AnswerRepository) SetReviewFlag(attemptID, questionID uint, reviewed bool) error {
	res := r.DB.Model(&model.UserAnswer{}).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		Update("is_reviewed", reviewed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.DB.Create(&model.UserAnswer{
			AttemptID:  attemptID,
			QuestionID: questionID,
			IsReviewed: reviewed,
		}).Error
	}
	return nil
}

func (r *AnswerRepository) ListByAttempt(attemptID uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}
