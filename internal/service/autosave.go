package service

import (
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AnswerWriter is the slice of the answer store the coordinator flushes into.
type AnswerWriter interface {
	Upsert(answer *model.UserAnswer) error
}

type answerKey struct {
	attemptID  uint
	questionID uint
}

type pendingWrite struct {
	answer model.UserAnswer
	due    time.Time
	// Set when a flush failed; the entry stops being scheduled and waits for
	// the next mutation of the same question (or a drain) to retry it.
	failed bool
}

// AutosaveCoordinator debounces answer writes per question. Rapid re-selection
// among options collapses into a single row holding the latest state; only the
// entry's due time is pushed out on every mutation. Delivery is at-least-once
// into an idempotent upsert, so a duplicate flush is harmless. Review-flag
// writes do not pass through here.
type AutosaveCoordinator struct {
	writer AnswerWriter

	mu       sync.Mutex
	pending  map[answerKey]*pendingWrite
	debounce time.Duration

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func NewAutosaveCoordinator(writer AnswerWriter, debounce time.Duration) *AutosaveCoordinator {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &AutosaveCoordinator{
		writer:   writer,
		pending:  make(map[answerKey]*pendingWrite),
		debounce: debounce,
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetDebounce applies a hot-reloaded window to future mutations.
func (c *AutosaveCoordinator) SetDebounce(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.debounce = d
	c.mu.Unlock()
}

// Buffer records the latest state of one answer and (re)schedules its flush.
// It never blocks and never fails; persistence errors surface only in logs.
func (c *AutosaveCoordinator) Buffer(answer model.UserAnswer) {
	key := answerKey{attemptID: answer.AttemptID, questionID: answer.QuestionID}

	c.mu.Lock()
	c.pending[key] = &pendingWrite{
		answer: answer,
		due:    time.Now().Add(c.debounce),
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Drain synchronously flushes everything pending for one attempt, including
// entries parked after a failed flush. Called on the submit path; errors are
// logged and the question scores as unanswered, never silently as correct.
func (c *AutosaveCoordinator) Drain(attemptID uint) {
	c.mu.Lock()
	var batch []model.UserAnswer
	for key, entry := range c.pending {
		if key.attemptID == attemptID {
			batch = append(batch, entry.answer)
			delete(c.pending, key)
		}
	}
	c.mu.Unlock()

	for i := range batch {
		c.write(&batch[i])
	}
}

// Run is the single flusher goroutine. It sleeps until the earliest due entry
// instead of keeping one timer per question.
func (c *AutosaveCoordinator) Run() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		next, ok := c.earliestDue()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if ok {
			timer.Reset(time.Until(next))
		} else {
			timer.Reset(time.Hour)
		}

		select {
		case <-c.quit:
			c.flushAll()
			close(c.done)
			return
		case <-c.wake:
		case <-timer.C:
			c.flushDue(time.Now())
		}
	}
}

// Stop flushes all pending writes and terminates the flusher.
func (c *AutosaveCoordinator) Stop() {
	close(c.quit)
	<-c.done
}

func (c *AutosaveCoordinator) earliestDue() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var earliest time.Time
	found := false
	for _, entry := range c.pending {
		if entry.failed {
			continue
		}
		if !found || entry.due.Before(earliest) {
			earliest = entry.due
			found = true
		}
	}
	return earliest, found
}

func (c *AutosaveCoordinator) flushDue(now time.Time) {
	c.mu.Lock()
	var keys []answerKey
	var batch []model.UserAnswer
	for key, entry := range c.pending {
		if !entry.failed && !entry.due.After(now) {
			keys = append(keys, key)
			batch = append(batch, entry.answer)
			delete(c.pending, key)
		}
	}
	c.mu.Unlock()

	for i := range batch {
		if err := c.writer.Upsert(&batch[i]); err != nil {
			monitoring.AutosaveFlushCounter.WithLabelValues("error").Inc()
			logger.Log.Warn("autosave flush failed, parked for retry",
				zap.Uint("attemptId", batch[i].AttemptID),
				zap.Uint("questionId", batch[i].QuestionID),
				zap.Error(err))
			c.park(keys[i], batch[i])
			continue
		}
		monitoring.AutosaveFlushCounter.WithLabelValues("ok").Inc()
	}
}

// park keeps a failed write around for the next mutation or drain, unless a
// newer write for the same question already replaced it.
func (c *AutosaveCoordinator) park(key answerKey, answer model.UserAnswer) {
	c.mu.Lock()
	if _, exists := c.pending[key]; !exists {
		c.pending[key] = &pendingWrite{answer: answer, failed: true}
	}
	c.mu.Unlock()
}

func (c *AutosaveCoordinator) flushAll() {
	c.mu.Lock()
	var batch []model.UserAnswer
	for key, entry := range c.pending {
		batch = append(batch, entry.answer)
		delete(c.pending, key)
	}
	c.mu.Unlock()

	for i := range batch {
		c.write(&batch[i])
	}
}

func (c *AutosaveCoordinator) write(answer *model.UserAnswer) {
	if err := c.writer.Upsert(answer); err != nil {
		monitoring.AutosaveFlushCounter.WithLabelValues("error").Inc()
		logger.Log.Warn("autosave write failed",
			zap.Uint("attemptId", answer.AttemptID),
			zap.Uint("questionId", answer.QuestionID),
			zap.Error(err))
		return
	}
	monitoring.AutosaveFlushCounter.WithLabelValues("ok").Inc()
}
