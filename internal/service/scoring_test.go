package service

import (
	"exam_portal_backend/internal/model"
	"testing"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func answered(correct bool) AnswerFact {
	return AnswerFact{SelectedOption: intPtr(1), IsCorrect: boolPtr(correct)}
}

// Visited but cleared: the row exists, no selection, no verdict.
func cleared() AnswerFact {
	return AnswerFact{}
}

func TestScoreAttempt(t *testing.T) {
	tests := []struct {
		name    string
		scheme  MarkingScheme
		answers []AnswerFact
		want    ScoreSummary
	}{
		{
			name:   "negative marking deducts per wrong answer",
			scheme: MarkingScheme{TotalQuestions: 10, NegativeMarking: true, NegativeMarkBP: 25},
			answers: []AnswerFact{
				answered(true), answered(true), answered(true), answered(false),
			},
			want: ScoreSummary{CorrectAnswers: 3, IncorrectAnswers: 1, Unanswered: 6, ScoreBP: 275},
		},
		{
			name:   "no negative marking keeps wrong answers free",
			scheme: MarkingScheme{TotalQuestions: 5, NegativeMarking: false, NegativeMarkBP: 25},
			answers: []AnswerFact{
				answered(true), answered(false), answered(false),
			},
			want: ScoreSummary{CorrectAnswers: 1, IncorrectAnswers: 2, Unanswered: 2, ScoreBP: 100},
		},
		{
			name:   "score clamps at zero",
			scheme: MarkingScheme{TotalQuestions: 4, NegativeMarking: true, NegativeMarkBP: 100},
			answers: []AnswerFact{
				answered(false), answered(false), answered(false), answered(false),
			},
			want: ScoreSummary{CorrectAnswers: 0, IncorrectAnswers: 4, Unanswered: 0, ScoreBP: 0},
		},
		{
			name:   "cleared selection scores as unanswered and costs nothing",
			scheme: MarkingScheme{TotalQuestions: 3, NegativeMarking: true, NegativeMarkBP: 50},
			answers: []AnswerFact{
				answered(true), cleared(),
			},
			want: ScoreSummary{CorrectAnswers: 1, IncorrectAnswers: 0, Unanswered: 2, ScoreBP: 100},
		},
		{
			name:    "no answer rows at all",
			scheme:  MarkingScheme{TotalQuestions: 7, NegativeMarking: true, NegativeMarkBP: 25},
			answers: nil,
			want:    ScoreSummary{CorrectAnswers: 0, IncorrectAnswers: 0, Unanswered: 7, ScoreBP: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreAttempt(tt.scheme, tt.answers)
			if got != tt.want {
				t.Errorf("ScoreAttempt() = %+v, want %+v", got, tt.want)
			}
			if got.CorrectAnswers+got.IncorrectAnswers+got.Unanswered != tt.scheme.TotalQuestions {
				t.Errorf("counts do not add up to %d: %+v", tt.scheme.TotalQuestions, got)
			}
		})
	}
}

func TestEvaluateSelection(t *testing.T) {
	q := &model.Question{CorrectOption: 3}

	if got := EvaluateSelection(q, nil); got != nil {
		t.Errorf("cleared selection should carry no verdict, got %v", *got)
	}
	if got := EvaluateSelection(q, intPtr(3)); got == nil || !*got {
		t.Errorf("matching option should grade correct, got %v", got)
	}
	if got := EvaluateSelection(q, intPtr(1)); got == nil || *got {
		t.Errorf("non-matching option should grade incorrect, got %v", got)
	}
}
