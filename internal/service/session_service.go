package service

import (
	"encoding/json"
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// Store contracts consumed by the session engine. The gorm repositories
// implement them; tests run against in-memory fakes.

type TestSource interface {
	FindByID(id uint) (*model.Test, error)
}

type QuestionSource interface {
	ListByTest(testID uint) ([]model.Question, error)
}

type AnswerStore interface {
	Upsert(answer *model.UserAnswer) error
	SetReviewFlag(attemptID, questionID uint, reviewed bool) error
	ListByAttempt(attemptID uint) ([]model.UserAnswer, error)
}

type AttemptStore interface {
	Create(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindActive(userID, testID uint) (*model.Attempt, error)
	HasTerminal(userID, testID uint) (bool, error)
	TransitionToTerminal(attemptID uint, summary model.TerminalSummary) error
	ListExpired(now time.Time) ([]model.Attempt, error)
	SetFullscreenEnforced(attemptID uint, enforced bool) error
}

type IntegrityRecorder interface {
	Create(event *model.IntegrityEvent) error
}

// AnswerBuffer is the debounced write path; AutosaveCoordinator implements it.
type AnswerBuffer interface {
	Buffer(answer model.UserAnswer)
	Drain(attemptID uint)
}

// SessionService owns the attempt lifecycle: in_progress -> submitted or
// auto_submitted, nothing else. The authoritative double-submit guard is the
// store's conditional terminal transition, not anything client-side.
type SessionService struct {
	tests     TestSource
	questions QuestionSource
	answers   AnswerStore
	attempts  AttemptStore
	integrity IntegrityRecorder
	buffer    AnswerBuffer
	ranking   RankingQueue
	bus       *EventBus

	now func() time.Time
}

func NewSessionService(
	tests TestSource,
	questions QuestionSource,
	answers AnswerStore,
	attempts AttemptStore,
	integrity IntegrityRecorder,
	buffer AnswerBuffer,
	ranking RankingQueue,
	bus *EventBus,
) *SessionService {
	return &SessionService{
		tests:     tests,
		questions: questions,
		answers:   answers,
		attempts:  attempts,
		integrity: integrity,
		buffer:    buffer,
		ranking:   ranking,
		bus:       bus,
		now:       time.Now,
	}
}

// Start creates the attempt for a (user, test) pair, or resumes the running
// one. A terminal attempt for the pair blocks any new one. TotalMarks is
// snapshotted here; the deadline is absolute and server-owned from this
// moment on.
func (s *SessionService) Start(userID, testID uint) (*model.Attempt, error) {
	test, err := s.tests.FindByID(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsPublished {
		return nil, util.ErrTestNotPublished
	}

	done, err := s.attempts.HasTerminal(userID, testID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, util.ErrAlreadyCompleted
	}

	if active, err := s.attempts.FindActive(userID, testID); err != nil {
		return nil, err
	} else if active != nil {
		return active, nil
	}

	now := s.now()
	attempt := &model.Attempt{
		UserID:             userID,
		TestID:             testID,
		Status:             model.AttemptInProgress,
		TotalMarks:         test.TotalMarks,
		StartedAt:          now,
		DeadlineAt:         now.Add(time.Duration(test.DurationMinutes) * time.Minute),
		FullscreenEnforced: true,
	}
	if err := s.attempts.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Submit is the single scoring path: manual submit, countdown expiry, the
// deadline sweeper and the forced integrity exit all land here. The terminal
// transition in the store decides the winner of any race; the loser gets
// ErrAlreadyTerminal together with the already-persisted attempt, and nothing
// score-bearing is touched twice. The submitted event and ranking job fire
// only on the winning call.
func (s *SessionService) Submit(attemptID, userID uint, auto bool) (*model.Attempt, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status.Terminal() {
		return attempt, util.ErrAlreadyTerminal
	}

	test, err := s.tests.FindByID(attempt.TestID)
	if err != nil {
		return nil, err
	}

	if s.buffer != nil {
		s.buffer.Drain(attemptID)
	}

	answers, err := s.answers.ListByAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	facts := make([]AnswerFact, 0, len(answers))
	for i := range answers {
		facts = append(facts, AnswerFact{
			SelectedOption: answers[i].SelectedOption,
			IsCorrect:      answers[i].IsCorrect,
		})
	}

	score := ScoreAttempt(MarkingScheme{
		TotalQuestions:  test.TotalQuestions,
		NegativeMarking: test.NegativeMarking,
		NegativeMarkBP:  test.NegativeMarkBP,
	}, facts)

	now := s.now()
	status := model.AttemptSubmitted
	if auto || now.After(attempt.DeadlineAt) {
		status = model.AttemptAutoSubmitted
	}

	summary := model.TerminalSummary{
		Status:           status,
		ScoreBP:          score.ScoreBP,
		CorrectAnswers:   score.CorrectAnswers,
		IncorrectAnswers: score.IncorrectAnswers,
		Unanswered:       score.Unanswered,
		TimeSpentSeconds: int(now.Sub(attempt.StartedAt).Seconds()),
		SubmittedAt:      now,
	}

	if err := s.attempts.TransitionToTerminal(attemptID, summary); err != nil {
		if errors.Is(err, util.ErrAlreadyTerminal) {
			current, ferr := s.attempts.FindByID(attemptID)
			if ferr != nil {
				return nil, ferr
			}
			return current, util.ErrAlreadyTerminal
		}
		// The attempt is still in_progress, so a retried submit is safe.
		return nil, err
	}

	attempt.Status = summary.Status
	attempt.ScoreBP = &summary.ScoreBP
	attempt.CorrectAnswers = summary.CorrectAnswers
	attempt.IncorrectAnswers = summary.IncorrectAnswers
	attempt.Unanswered = summary.Unanswered
	attempt.TimeSpentSeconds = summary.TimeSpentSeconds
	attempt.SubmittedAt = &summary.SubmittedAt

	monitoring.SubmissionCounter.WithLabelValues(string(summary.Status)).Inc()

	if s.bus != nil {
		s.bus.PublishAttemptSubmitted(AttemptSubmittedEvent{
			AttemptID: attempt.ID,
			UserID:    attempt.UserID,
			TestID:    attempt.TestID,
		})
	}
	if s.ranking != nil {
		s.ranking.Enqueue(attempt.TestID)
	}

	return attempt, nil
}

// SessionQuestion is a question as shown during an attempt: no correct option,
// no explanation.
type SessionQuestion struct {
	ID           uint            `json:"id"`
	Text         string          `json:"text"`
	Options      json.RawMessage `json:"options"`
	Section      string          `json:"section"`
	DisplayOrder int             `json:"displayOrder"`
}

type SessionView struct {
	Attempt          *model.Attempt     `json:"attempt"`
	Test             *model.Test        `json:"test"`
	Questions        []SessionQuestion  `json:"questions"`
	Answers          []model.UserAnswer `json:"answers"`
	RemainingSeconds int                `json:"remainingSeconds"`
	AnsweredCount    int                `json:"answeredCount"`
	ReviewedCount    int                `json:"reviewedCount"`
}

// Session returns the owner's sanitized view of a running or finished attempt.
// A session fetched past its deadline is auto-submitted first; the deadline is
// enforced on every server interaction, not just the tick.
func (s *SessionService) Session(attemptID, userID uint) (*SessionView, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	if attempt.Status == model.AttemptInProgress && s.now().After(attempt.DeadlineAt) {
		if forced, err := s.Submit(attemptID, userID, true); err == nil || errors.Is(err, util.ErrAlreadyTerminal) {
			attempt = forced
		}
	}

	test, err := s.tests.FindByID(attempt.TestID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByTest(attempt.TestID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByAttempt(attemptID)
	if err != nil {
		return nil, err
	}

	view := &SessionView{
		Attempt:          attempt,
		Test:             test,
		Questions:        make([]SessionQuestion, 0, len(questions)),
		Answers:          answers,
		RemainingSeconds: s.Remaining(attempt),
	}
	for i := range questions {
		view.Questions = append(view.Questions, SessionQuestion{
			ID:           questions[i].ID,
			Text:         questions[i].Text,
			Options:      questions[i].Options,
			Section:      questions[i].Section,
			DisplayOrder: questions[i].DisplayOrder,
		})
	}
	for i := range answers {
		if answers[i].SelectedOption != nil {
			view.AnsweredCount++
		}
		if answers[i].IsReviewed {
			view.ReviewedCount++
		}
	}
	return view, nil
}

// Attempt fetches one attempt with the ownership check applied.
func (s *SessionService) Attempt(attemptID, userID uint) (*model.Attempt, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

// Remaining never goes negative and is zero for terminal attempts.
func (s *SessionService) Remaining(attempt *model.Attempt) int {
	if attempt.Status.Terminal() {
		return 0
	}
	remaining := int(attempt.DeadlineAt.Sub(s.now()).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SaveAnswer buffers a selection (or a clear, selected == nil) for debounced
// persistence. Correctness is evaluated here against the stored question,
// never taken from the client. An interaction past the deadline is answered
// with a forced submission instead of a write.
func (s *SessionService) SaveAnswer(attemptID, userID, questionID uint, selected *int, timeSpentSeconds int) error {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.UserID != userID {
		return util.ErrPermissionDenied
	}
	if attempt.Status.Terminal() {
		return util.ErrAttemptTerminal
	}
	if s.now().After(attempt.DeadlineAt) {
		if _, err := s.Submit(attemptID, userID, true); err != nil && !errors.Is(err, util.ErrAlreadyTerminal) {
			logger.Log.Error("deadline-forced submit failed", zap.Uint("attemptId", attemptID), zap.Error(err))
		}
		return util.ErrAttemptTerminal
	}

	if selected != nil && (*selected < 1 || *selected > 4) {
		return util.ErrQuestionNotInTest
	}

	question, err := s.findQuestion(attempt.TestID, questionID)
	if err != nil {
		return err
	}

	answer := model.UserAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		SelectedOption:   selected,
		IsCorrect:        EvaluateSelection(question, selected),
		TimeSpentSeconds: timeSpentSeconds,
	}
	if selected != nil {
		now := s.now()
		answer.AnsweredAt = &now
	}

	if s.buffer != nil {
		s.buffer.Buffer(answer)
		return nil
	}
	return s.answers.Upsert(&answer)
}

// MarkForReview bypasses the autosave buffer: flag toggles are rare and the
// client needs prompt confirmation.
func (s *SessionService) MarkForReview(attemptID, userID, questionID uint, reviewed bool) error {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.UserID != userID {
		return util.ErrPermissionDenied
	}
	if attempt.Status.Terminal() {
		return util.ErrAttemptTerminal
	}
	if _, err := s.findQuestion(attempt.TestID, questionID); err != nil {
		return err
	}
	return s.answers.SetReviewFlag(attemptID, questionID, reviewed)
}

// ReportIntegrityEvent ingests client proctoring signals. A fullscreen exit
// during a running attempt forces submission immediately, with no grace period
// and no confirmation; the exit itself is the violation being defended
// against. A client that cannot enforce full screen is downgraded, logged and
// allowed to continue.
func (s *SessionService) ReportIntegrityEvent(attemptID, userID uint, eventType model.IntegrityEventType, detail string) (*model.Attempt, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	if s.integrity != nil {
		if err := s.integrity.Create(&model.IntegrityEvent{
			AttemptID: attemptID,
			EventType: eventType,
			Detail:    detail,
		}); err != nil {
			logger.Log.Warn("integrity event not recorded", zap.Uint("attemptId", attemptID), zap.Error(err))
		}
	}

	switch eventType {
	case model.EventFullscreenExit:
		if attempt.Status == model.AttemptInProgress {
			forced, err := s.Submit(attemptID, userID, true)
			if err != nil && !errors.Is(err, util.ErrAlreadyTerminal) {
				return nil, err
			}
			return forced, nil
		}
	case model.EventFullscreenUnsupported:
		logger.Log.Warn("fullscreen unavailable, enforcement downgraded",
			zap.Uint("attemptId", attemptID))
		if err := s.attempts.SetFullscreenEnforced(attemptID, false); err != nil {
			return nil, err
		}
		attempt.FullscreenEnforced = false
	}

	return attempt, nil
}

// SweepExpired auto-submits every in_progress attempt whose deadline has
// passed. Racing a concurrent manual submit is expected; the loser logs and
// moves on.
func (s *SessionService) SweepExpired() {
	expired, err := s.attempts.ListExpired(s.now())
	if err != nil {
		logger.Log.Error("deadline sweep failed", zap.Error(err))
		return
	}
	for i := range expired {
		if _, err := s.Submit(expired[i].ID, expired[i].UserID, true); err != nil {
			if errors.Is(err, util.ErrAlreadyTerminal) {
				continue
			}
			logger.Log.Error("sweeper auto-submit failed",
				zap.Uint("attemptId", expired[i].ID), zap.Error(err))
		}
	}
}

// ResultItem reveals the correct option and explanation, available only once
// the attempt is terminal.
type ResultItem struct {
	QuestionID     uint            `json:"questionId"`
	Text           string          `json:"text"`
	Options        json.RawMessage `json:"options"`
	Section        string          `json:"section"`
	SelectedOption *int            `json:"selectedOption,omitempty"`
	CorrectOption  int             `json:"correctOption"`
	IsCorrect      *bool           `json:"isCorrect,omitempty"`
	IsReviewed     bool            `json:"isReviewed"`
	Explanation    string          `json:"explanation,omitempty"`
}

type AttemptResult struct {
	Attempt *model.Attempt `json:"attempt"`
	Items   []ResultItem   `json:"items"`
}

func (s *SessionService) Result(attemptID, userID uint) (*AttemptResult, error) {
	attempt, err := s.attempts.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if !attempt.Status.Terminal() {
		return nil, util.ErrAttemptNotFinal
	}

	questions, err := s.questions.ListByTest(attempt.TestID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uint]*model.UserAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	result := &AttemptResult{Attempt: attempt, Items: make([]ResultItem, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		item := ResultItem{
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       q.Options,
			Section:       q.Section,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		}
		if ans, ok := byQuestion[q.ID]; ok {
			item.SelectedOption = ans.SelectedOption
			item.IsCorrect = ans.IsCorrect
			item.IsReviewed = ans.IsReviewed
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *SessionService) findQuestion(testID, questionID uint) (*model.Question, error) {
	questions, err := s.questions.ListByTest(testID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID == questionID {
			return &questions[i], nil
		}
	}
	return nil, util.ErrQuestionNotInTest
}
