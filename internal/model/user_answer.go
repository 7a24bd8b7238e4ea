package model

import "time"

// UserAnswer is one row per question per attempt, upserted, never duplicated.
// A row with a nil SelectedOption marks a question as visited but unanswered;
// questions never visited have no row at all, which the scoring engine treats
// the same way. IsCorrect is evaluated at save time against the stored correct
// option, never against anything the client sends.
// swagger:model
type UserAnswer struct {
	BaseModel
	AttemptID  uint `gorm:"uniqueIndex:idx_answer_attempt_question;type:bigint unsigned" json:"attemptId"`
	QuestionID uint `gorm:"uniqueIndex:idx_answer_attempt_question;type:bigint unsigned" json:"questionId"`

	SelectedOption   *int       `json:"selectedOption,omitempty"`
	IsCorrect        *bool      `json:"isCorrect,omitempty"`
	IsReviewed       bool       `gorm:"default:false" json:"isReviewed"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`
	AnsweredAt       *time.Time `json:"answeredAt,omitempty"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
