package quiz

import (
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
)

type EventType string

const (
	EventSessionStarted  EventType = "session.started"
	EventAnswerSubmitted EventType = "answer.submitted"
	EventQuestionChanged EventType = "question.changed"
	EventNavPaged        EventType = "nav.paged"
	EventTimerTick       EventType = "timer.tick"
	EventSessionFinished EventType = "session.finished"
)

// Event describes a state change of the controller together with the state it produced
type Event struct {
	Type         EventType
	SessionID    string
	Answer       *models.UserAnswer
	AutoAdvanced bool
	Reason       models.FinishReason
	Snapshot     models.SessionSnapshot
	OccurredAt   time.Time
}

// Observer receives controller events. Calls happen after the controller lock is
// released and may come from timer goroutines.
type Observer interface {
	OnSessionEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnSessionEvent(e Event) { f(e) }
