package service

import (
	"errors"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"
	"time"

	"github.com/gorilla/websocket"
)

// SessionTicker streams the countdown for one attempt over a websocket, one
// message per second. It is display plus trigger: when the remaining time hits
// zero it fires the same submit path as a manual submission, then reports the
// terminal status and closes. The deadline sweeper backs it up for clients
// that drop the connection.
type SessionTicker struct {
	sessions *SessionService
}

func NewSessionTicker(sessions *SessionService) *SessionTicker {
	return &SessionTicker{sessions: sessions}
}

type tickMessage struct {
	RemainingSeconds int                 `json:"remainingSeconds"`
	Status           model.AttemptStatus `json:"status"`
}

// Stream writes ticks until the attempt turns terminal or the peer goes away.
// Ownership must be verified before calling.
func (t *SessionTicker) Stream(conn *websocket.Conn, attemptID, userID uint) {
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		attempt, err := t.sessions.attempts.FindByID(attemptID)
		if err != nil {
			return
		}

		remaining := t.sessions.Remaining(attempt)
		if err := conn.WriteJSON(tickMessage{RemainingSeconds: remaining, Status: attempt.Status}); err != nil {
			return
		}
		if attempt.Status.Terminal() {
			return
		}

		if remaining <= 0 {
			if _, err := t.sessions.Submit(attemptID, userID, true); err != nil && !errors.Is(err, util.ErrAlreadyTerminal) {
				return
			}
			continue
		}

		<-ticker.C
	}
}
