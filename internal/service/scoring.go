package service

import "exam_portal_backend/internal/model"

// MarkingScheme is the slice of test config the scoring engine needs. Values
// come from the attempt-creation snapshot, never from the live test row.
type MarkingScheme struct {
	TotalQuestions  int
	NegativeMarking bool
	// Deduction per incorrect answer in hundredths of a mark.
	NegativeMarkBP int
}

// AnswerFact is what scoring reads from one stored answer row.
type AnswerFact struct {
	SelectedOption *int
	IsCorrect      *bool
}

type ScoreSummary struct {
	CorrectAnswers   int
	IncorrectAnswers int
	Unanswered       int
	// Final score in hundredths of a mark, clamped at zero.
	ScoreBP int
}

// ScoreAttempt computes the terminal outcome from the marking scheme and the
// stored answer rows. Unanswered is derived from the question total rather
// than counted from rows, so questions the candidate never visited (which have
// no row at all) score the same as visited-but-cleared ones. One correct
// answer is worth one mark (100 BP).
func ScoreAttempt(scheme MarkingScheme, answers []AnswerFact) ScoreSummary {
	var correct, incorrect int

	for _, a := range answers {
		if a.IsCorrect != nil && *a.IsCorrect {
			correct++
			continue
		}
		if a.SelectedOption != nil && a.IsCorrect != nil && !*a.IsCorrect {
			incorrect++
		}
	}

	rawBP := correct * 100
	if scheme.NegativeMarking {
		rawBP -= incorrect * scheme.NegativeMarkBP
	}
	if rawBP < 0 {
		rawBP = 0
	}

	return ScoreSummary{
		CorrectAnswers:   correct,
		IncorrectAnswers: incorrect,
		Unanswered:       scheme.TotalQuestions - correct - incorrect,
		ScoreBP:          rawBP,
	}
}

// EvaluateSelection grades one selection against the stored question. nil
// means the selection was cleared; the row stays but carries no verdict.
func EvaluateSelection(q *model.Question, selected *int) *bool {
	if selected == nil {
		return nil
	}
	v := *selected == q.CorrectOption
	return &v
}
