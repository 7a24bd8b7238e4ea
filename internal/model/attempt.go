package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress    AttemptStatus = "in_progress"
	AttemptSubmitted     AttemptStatus = "submitted"
	AttemptAutoSubmitted AttemptStatus = "auto_submitted"
)

// Terminal reports whether no further score-affecting mutation is permitted.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptSubmitted || s == AttemptAutoSubmitted
}

// Attempt is one candidate's single run through one test.
//
// TotalMarks is snapshotted from the test at creation and never recomputed,
// so later edits to the test cannot drift already-stored scores. ScoreBP is in
// hundredths of a mark, PercentileBP in basis points (10000 = 100.00%); both
// stay nil until the attempt turns terminal. Rank and PercentileBP are the only
// fields the ranking job may touch afterwards.
// swagger:model
type Attempt struct {
	BaseModel
	UserID uint          `gorm:"index:idx_attempt_user_test;type:bigint unsigned" json:"userId"`
	TestID uint          `gorm:"index:idx_attempt_user_test;index;type:bigint unsigned" json:"testId"`
	Status AttemptStatus `gorm:"size:20;index;default:in_progress" json:"status"`

	ScoreBP          *int `json:"scoreBp,omitempty"`
	TotalMarks       int  `json:"totalMarks"`
	CorrectAnswers   int  `json:"correctAnswers"`
	IncorrectAnswers int  `json:"incorrectAnswers"`
	Unanswered       int  `json:"unanswered"`
	TimeSpentSeconds int  `json:"timeSpentSeconds"`

	StartedAt   time.Time  `json:"startedAt"`
	DeadlineAt  time.Time  `gorm:"index" json:"deadlineAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	Rank         *int `json:"rank,omitempty"`
	PercentileBP *int `json:"percentileBp,omitempty"`

	// Cleared when the client reports it cannot enforce full screen.
	FullscreenEnforced bool `gorm:"default:true" json:"fullscreenEnforced"`
}

func (Attempt) TableName() string {
	return "attempts"
}
