package repository

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindActive returns the in_progress attempt for the pair, if any.
func (r *AttemptRepository) FindActive(userID, testID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("user_id = ? AND test_id = ? AND status = ?",
		userID, testID, model.AttemptInProgress).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// HasTerminal reports whether a submitted or auto_submitted attempt exists for
// the pair. Attempt creation is rejected while this holds.
func (r *AttemptRepository) HasTerminal(userID, testID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND test_id = ? AND status IN ?",
			userID, testID,
			[]model.AttemptStatus{model.AttemptSubmitted, model.AttemptAutoSubmitted}).
		Count(&count).Error
	return count > 0, err
}

// TransitionToTerminal is the single-writer gate: the conditional UPDATE only
// moves a row that is still in_progress, so of two racing submits exactly one
// sees RowsAffected == 1 and the other gets ErrAlreadyTerminal.
func (r *AttemptRepository) TransitionToTerminal(attemptID uint, summary model.TerminalSummary) error {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":             summary.Status,
			"score_bp":           summary.ScoreBP,
			"correct_answers":    summary.CorrectAnswers,
			"incorrect_answers":  summary.IncorrectAnswers,
			"unanswered":         summary.Unanswered,
			"time_spent_seconds": summary.TimeSpentSeconds,
			"submitted_at":       summary.SubmittedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var a model.Attempt
		if err := r.DB.First(&a, attemptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		return util.ErrAlreadyTerminal
	}
	return nil
}

func (r *AttemptRepository) ListTerminalByTest(testID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("test_id = ? AND status IN ?",
		testID,
		[]model.AttemptStatus{model.AttemptSubmitted, model.AttemptAutoSubmitted}).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) UpdateRankPercentile(attemptID uint, rank, percentileBP int) error {
	return r.DB.Model(&model.Attempt{}).Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"rank":          rank,
			"percentile_bp": percentileBP,
		}).Error
}

// ListExpired returns in_progress attempts whose deadline has passed, for the
// background sweeper.
func (r *AttemptRepository) ListExpired(now time.Time) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("status = ? AND deadline_at < ?", model.AttemptInProgress, now).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) SetFullscreenEnforced(attemptID uint, enforced bool) error {
	return r.DB.Model(&model.Attempt{}).Where("id = ?", attemptID).
		Update("fullscreen_enforced", enforced).Error
}
