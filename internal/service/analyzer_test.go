package service

import (
	"exam_portal_backend/internal/model"
	"testing"
)

type sectionDelta struct{ attempted, wrong int }

type fakeTopicWriter struct {
	deltas map[string]sectionDelta
}

func (f *fakeTopicWriter) AddDelta(userID uint, section string, attempted, wrong int) error {
	f.deltas[section] = sectionDelta{attempted: attempted, wrong: wrong}
	return nil
}

type staticAnswers struct {
	rows []model.UserAnswer
}

func (s *staticAnswers) ListByAttempt(attemptID uint) ([]model.UserAnswer, error) {
	return s.rows, nil
}

func TestWeakTopicAnalyzerTalliesPerSection(t *testing.T) {
	questions := &fakeQuestions{rows: map[uint][]model.Question{
		1: {
			question(1, 1, "algebra"),
			question(2, 2, "algebra"),
			question(3, 3, "geometry"),
			question(4, 4, "geometry"),
		},
	}}
	answers := &staticAnswers{rows: []model.UserAnswer{
		{QuestionID: 1, SelectedOption: intPtr(1), IsCorrect: boolPtr(true)},
		{QuestionID: 2, SelectedOption: intPtr(3), IsCorrect: boolPtr(false)},
		{QuestionID: 3, SelectedOption: intPtr(1), IsCorrect: boolPtr(false)},
		// Visited but cleared: not attempted, must not count.
		{QuestionID: 4},
	}}
	topics := &fakeTopicWriter{deltas: map[string]sectionDelta{}}

	analyzer := NewWeakTopicAnalyzer(questions, answers, topics)
	if err := analyzer.HandleAttemptSubmitted(AttemptSubmittedEvent{AttemptID: 1, UserID: 1, TestID: 1}); err != nil {
		t.Fatalf("HandleAttemptSubmitted() error = %v", err)
	}

	if got := topics.deltas["algebra"]; got != (sectionDelta{attempted: 2, wrong: 1}) {
		t.Errorf("algebra delta = %+v, want 2 attempted / 1 wrong", got)
	}
	if got := topics.deltas["geometry"]; got != (sectionDelta{attempted: 1, wrong: 1}) {
		t.Errorf("geometry delta = %+v, want 1 attempted / 1 wrong", got)
	}
}
