package service

import "exam_portal_backend/internal/model"

// TopicWriter folds per-section deltas into the running stats.
type TopicWriter interface {
	AddDelta(userID uint, section string, attempted, wrong int) error
}

// AnswerLister reads the stored answers of one attempt.
type AnswerLister interface {
	ListByAttempt(attemptID uint) ([]model.UserAnswer, error)
}

// WeakTopicAnalyzer tallies answered/wrong counts per question section when an
// attempt turns terminal, feeding the weak-topics report.
type WeakTopicAnalyzer struct {
	questions QuestionSource
	answers   AnswerLister
	topics    TopicWriter
}

func NewWeakTopicAnalyzer(questions QuestionSource, answers AnswerLister, topics TopicWriter) *WeakTopicAnalyzer {
	return &WeakTopicAnalyzer{questions: questions, answers: answers, topics: topics}
}

func (a *WeakTopicAnalyzer) Name() string { return "weak-topic-analyzer" }

func (a *WeakTopicAnalyzer) HandleAttemptSubmitted(ev AttemptSubmittedEvent) error {
	questions, err := a.questions.ListByTest(ev.TestID)
	if err != nil {
		return err
	}
	answers, err := a.answers.ListByAttempt(ev.AttemptID)
	if err != nil {
		return err
	}

	sections := make(map[uint]string, len(questions))
	for i := range questions {
		sections[questions[i].ID] = questions[i].Section
	}

	type tally struct{ attempted, wrong int }
	perSection := make(map[string]*tally)
	for i := range answers {
		ans := &answers[i]
		if ans.SelectedOption == nil {
			continue
		}
		section, ok := sections[ans.QuestionID]
		if !ok {
			continue
		}
		t := perSection[section]
		if t == nil {
			t = &tally{}
			perSection[section] = t
		}
		t.attempted++
		if ans.IsCorrect != nil && !*ans.IsCorrect {
			t.wrong++
		}
	}

	for section, t := range perSection {
		if err := a.topics.AddDelta(ev.UserID, section, t.attempted, t.wrong); err != nil {
			return err
		}
	}
	return nil
}
