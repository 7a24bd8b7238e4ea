package service

import (
	"exam_portal_backend/internal/repository"
)

// InsightService serves the read side of what the submission subscribers
// accumulate: weak topics and the exam streak.
type InsightService struct {
	Topics *repository.TopicStatRepository
	Users  *repository.UserRepository
}

func NewInsightService(topics *repository.TopicStatRepository, users *repository.UserRepository) *InsightService {
	return &InsightService{Topics: topics, Users: users}
}

type WeakTopic struct {
	Section   string `json:"section"`
	Attempted int    `json:"attempted"`
	Wrong     int    `json:"wrong"`
	// Share of attempted answers that were wrong, in basis points.
	WrongRateBP int `json:"wrongRateBp"`
}

func (s *InsightService) WeakTopics(userID uint, limit int) ([]WeakTopic, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	stats, err := s.Topics.ListWeakest(userID, limit)
	if err != nil {
		return nil, err
	}
	topics := make([]WeakTopic, 0, len(stats))
	for _, st := range stats {
		if st.Attempted == 0 {
			continue
		}
		topics = append(topics, WeakTopic{
			Section:     st.Section,
			Attempted:   st.Attempted,
			Wrong:       st.Wrong,
			WrongRateBP: st.Wrong * 10000 / st.Attempted,
		})
	}
	return topics, nil
}

type StreakInfo struct {
	StreakDays   int     `json:"streakDays"`
	LastExamDate *string `json:"lastExamDate,omitempty"`
}

func (s *InsightService) Streak(userID uint) (*StreakInfo, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	info := &StreakInfo{StreakDays: user.StreakDays}
	if user.LastExamDate != nil {
		d := user.LastExamDate.Format("2006-01-02")
		info.LastExamDate = &d
	}
	return info, nil
}
