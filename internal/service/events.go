package service

import (
	"exam_portal_backend/pkg/logger"

	"go.uber.org/zap"
)

// AttemptSubmittedEvent is published exactly once per terminal attempt: only
// the winner of the terminal transition reaches the publish call.
type AttemptSubmittedEvent struct {
	AttemptID uint
	UserID    uint
	TestID    uint
}

// SubmissionSubscriber consumes submission events. Failures are the
// subscriber's own problem; they never propagate back into the submit path.
type SubmissionSubscriber interface {
	Name() string
	HandleAttemptSubmitted(ev AttemptSubmittedEvent) error
}

// EventBus is the in-process decoupling between the session engine and its
// downstream consumers (weak-topic analysis, streak tracking). Subscribers are
// registered at wiring time, before any publish.
type EventBus struct {
	subscribers []SubmissionSubscriber
}

func NewEventBus() *EventBus {
	return &EventBus{}
}

func (b *EventBus) Subscribe(sub SubmissionSubscriber) {
	b.subscribers = append(b.subscribers, sub)
}

// PublishAttemptSubmitted fans out asynchronously. The submitting request does
// not wait on any consumer.
func (b *EventBus) PublishAttemptSubmitted(ev AttemptSubmittedEvent) {
	for _, sub := range b.subscribers {
		go func(sub SubmissionSubscriber) {
			if err := sub.HandleAttemptSubmitted(ev); err != nil {
				logger.Log.Error("submission subscriber failed",
					zap.String("subscriber", sub.Name()),
					zap.Uint("attemptId", ev.AttemptID),
					zap.Error(err))
			}
		}(sub)
	}
}
