package service

import (
	"errors"
	"exam_portal_backend/internal/model"
	"sync"
	"testing"
	"time"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes []model.UserAnswer
	fail   bool
}

func (w *recordingWriter) Upsert(answer *model.UserAnswer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail {
		return errors.New("connection refused")
	}
	w.writes = append(w.writes, *answer)
	return nil
}

func (w *recordingWriter) setFail(fail bool) {
	w.mu.Lock()
	w.fail = fail
	w.mu.Unlock()
}

func (w *recordingWriter) snapshot() []model.UserAnswer {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.UserAnswer, len(w.writes))
	copy(out, w.writes)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func bufferedAnswer(attemptID, questionID uint, selected int) model.UserAnswer {
	return model.UserAnswer{
		AttemptID:      attemptID,
		QuestionID:     questionID,
		SelectedOption: &selected,
	}
}

func TestAutosaveCoalescesRapidWrites(t *testing.T) {
	writer := &recordingWriter{}
	c := NewAutosaveCoordinator(writer, 30*time.Millisecond)
	go c.Run()
	defer c.Stop()

	// Rapid re-selection on the same question: only the last state may land.
	c.Buffer(bufferedAnswer(1, 1, 1))
	c.Buffer(bufferedAnswer(1, 1, 2))
	c.Buffer(bufferedAnswer(1, 1, 4))

	waitFor(t, func() bool { return len(writer.snapshot()) >= 1 })
	time.Sleep(60 * time.Millisecond)

	writes := writer.snapshot()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1 coalesced write", len(writes))
	}
	if *writes[0].SelectedOption != 4 {
		t.Errorf("flushed option = %d, want the latest (4)", *writes[0].SelectedOption)
	}
}

func TestAutosaveKeepsDistinctQuestionsApart(t *testing.T) {
	writer := &recordingWriter{}
	c := NewAutosaveCoordinator(writer, 10*time.Millisecond)
	go c.Run()
	defer c.Stop()

	c.Buffer(bufferedAnswer(1, 1, 1))
	c.Buffer(bufferedAnswer(1, 2, 3))

	waitFor(t, func() bool { return len(writer.snapshot()) == 2 })
}

func TestDrainFlushesSynchronously(t *testing.T) {
	writer := &recordingWriter{}
	// Long debounce so nothing flushes on its own during the test.
	c := NewAutosaveCoordinator(writer, time.Minute)
	go c.Run()
	defer c.Stop()

	c.Buffer(bufferedAnswer(1, 1, 2))
	c.Buffer(bufferedAnswer(2, 1, 3))

	c.Drain(1)

	writes := writer.snapshot()
	if len(writes) != 1 {
		t.Fatalf("writes after drain = %d, want 1", len(writes))
	}
	if writes[0].AttemptID != 1 {
		t.Errorf("drained attempt = %d, want 1 only", writes[0].AttemptID)
	}
}

func TestFailedFlushParksUntilDrain(t *testing.T) {
	writer := &recordingWriter{fail: true}
	c := NewAutosaveCoordinator(writer, 10*time.Millisecond)
	go c.Run()
	defer c.Stop()

	c.Buffer(bufferedAnswer(1, 1, 2))

	// Let the flush fail and the entry park.
	time.Sleep(80 * time.Millisecond)
	if got := len(writer.snapshot()); got != 0 {
		t.Fatalf("writes = %d, want 0 while the store is down", got)
	}

	writer.setFail(false)
	c.Drain(1)

	writes := writer.snapshot()
	if len(writes) != 1 {
		t.Fatalf("writes after recovery drain = %d, want 1", len(writes))
	}
	if *writes[0].SelectedOption != 2 {
		t.Errorf("recovered option = %d, want 2", *writes[0].SelectedOption)
	}
}

func TestNewerWriteReplacesParkedFailure(t *testing.T) {
	writer := &recordingWriter{fail: true}
	c := NewAutosaveCoordinator(writer, 10*time.Millisecond)
	go c.Run()
	defer c.Stop()

	c.Buffer(bufferedAnswer(1, 1, 2))
	time.Sleep(80 * time.Millisecond)

	writer.setFail(false)
	c.Buffer(bufferedAnswer(1, 1, 3))

	waitFor(t, func() bool { return len(writer.snapshot()) == 1 })
	if got := *writer.snapshot()[0].SelectedOption; got != 3 {
		t.Errorf("flushed option = %d, want the newer write (3)", got)
	}
}

func TestStopFlushesPending(t *testing.T) {
	writer := &recordingWriter{}
	c := NewAutosaveCoordinator(writer, time.Minute)
	go c.Run()

	c.Buffer(bufferedAnswer(1, 1, 2))
	c.Stop()

	if got := len(writer.snapshot()); got != 1 {
		t.Errorf("writes after Stop = %d, want 1", got)
	}
}
