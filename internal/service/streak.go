package service

import (
	"exam_portal_backend/internal/model"
	"time"
)

// StreakStore is the slice of the user store the tracker needs.
type StreakStore interface {
	FindByID(id uint) (*model.User, error)
	UpdateStreak(userID uint, streakDays int, lastExamDate time.Time) error
}

// StreakTracker maintains the consecutive-day exam streak. It consumes
// submission events; a second submission on the same day is a no-op.
type StreakTracker struct {
	users StreakStore
	now   func() time.Time
}

func NewStreakTracker(users StreakStore) *StreakTracker {
	return &StreakTracker{users: users, now: time.Now}
}

func (t *StreakTracker) Name() string { return "streak-tracker" }

func (t *StreakTracker) HandleAttemptSubmitted(ev AttemptSubmittedEvent) error {
	user, err := t.users.FindByID(ev.UserID)
	if err != nil {
		return err
	}

	today := dateOf(t.now())
	streak := 1
	if user.LastExamDate != nil {
		last := dateOf(*user.LastExamDate)
		switch {
		case last.Equal(today):
			return nil
		case last.AddDate(0, 0, 1).Equal(today):
			streak = user.StreakDays + 1
		}
	}

	return t.users.UpdateStreak(ev.UserID, streak, today)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
