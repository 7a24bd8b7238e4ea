package service

import (
	"exam_portal_backend/internal/model"
	"testing"
	"time"
)

type fakeStreakStore struct {
	user    *model.User
	updated bool
	streak  int
	lastTo  time.Time
}

func (f *fakeStreakStore) FindByID(id uint) (*model.User, error) {
	return f.user, nil
}

func (f *fakeStreakStore) UpdateStreak(userID uint, streakDays int, lastExamDate time.Time) error {
	f.updated = true
	f.streak = streakDays
	f.lastTo = lastExamDate
	return nil
}

func dayAt(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStreakTracker(t *testing.T) {
	today := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	yesterday := dayAt(2026, 3, 13)
	lastWeek := dayAt(2026, 3, 7)
	todayMidnight := dayAt(2026, 3, 14)

	tests := []struct {
		name       string
		user       *model.User
		wantUpdate bool
		wantStreak int
	}{
		{
			name:       "first ever submission starts at one",
			user:       &model.User{},
			wantUpdate: true,
			wantStreak: 1,
		},
		{
			name:       "consecutive day extends the streak",
			user:       &model.User{StreakDays: 4, LastExamDate: &yesterday},
			wantUpdate: true,
			wantStreak: 5,
		},
		{
			name:       "second submission the same day is a no-op",
			user:       &model.User{StreakDays: 4, LastExamDate: &todayMidnight},
			wantUpdate: false,
		},
		{
			name:       "a gap resets to one",
			user:       &model.User{StreakDays: 9, LastExamDate: &lastWeek},
			wantUpdate: true,
			wantStreak: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStreakStore{user: tt.user}
			tracker := NewStreakTracker(store)
			tracker.now = func() time.Time { return today }

			if err := tracker.HandleAttemptSubmitted(AttemptSubmittedEvent{UserID: 1}); err != nil {
				t.Fatalf("HandleAttemptSubmitted() error = %v", err)
			}

			if store.updated != tt.wantUpdate {
				t.Fatalf("updated = %v, want %v", store.updated, tt.wantUpdate)
			}
			if tt.wantUpdate {
				if store.streak != tt.wantStreak {
					t.Errorf("streak = %d, want %d", store.streak, tt.wantStreak)
				}
				if !store.lastTo.Equal(todayMidnight) {
					t.Errorf("lastExamDate = %v, want %v", store.lastTo, todayMidnight)
				}
			}
		})
	}
}
