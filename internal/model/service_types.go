package model

import "time"

// TerminalSummary carries the scored outcome applied when an attempt leaves
// in_progress. It is computed server-side in full; nothing in it is trusted
// from the client.
type TerminalSummary struct {
	Status           AttemptStatus `json:"status"`
	ScoreBP          int           `json:"scoreBp"`
	CorrectAnswers   int           `json:"correctAnswers"`
	IncorrectAnswers int           `json:"incorrectAnswers"`
	Unanswered       int           `json:"unanswered"`
	TimeSpentSeconds int           `json:"timeSpentSeconds"`
	SubmittedAt      time.Time     `json:"submittedAt"`
}

// LeaderboardEntry is one row of the per-test ranking, cached in redis after
// every recompute.
type LeaderboardEntry struct {
	AttemptID        uint   `json:"attemptId"`
	UserID           uint   `json:"userId"`
	UserName         string `json:"userName"`
	ScoreBP          int    `json:"scoreBp"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Rank             int    `json:"rank"`
	PercentileBP     int    `json:"percentileBp"`
}
