package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSessionStarted  EventType = "quiz.session.started"
	EventAnswerSubmitted EventType = "quiz.answer.submitted"
	EventSessionFinished EventType = "quiz.session.finished"
)

const (
	eventSource  = "quiz-runner"
	eventVersion = "1.0"
)

// SessionEvent is the envelope for every published session event
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedData struct {
	PlayerName   string   `json:"player_name"`
	QuestionIDs  []string `json:"question_ids"`
	DurationSecs int      `json:"duration_seconds"`
}

type AnswerSubmittedData struct {
	PlayerName    string `json:"player_name"`
	QuestionID    string `json:"question_id"`
	QuestionIndex int    `json:"question_index"`
	IsCorrect     bool   `json:"is_correct"`
	Score         int    `json:"score"`
	AnsweredCount int    `json:"answered_count"`
}

type SessionFinishedData struct {
	PlayerName    string `json:"player_name"`
	Reason        string `json:"reason"`
	CorrectCount  int    `json:"correct_count"`
	AnsweredCount int    `json:"answered_count"`
	Total         int    `json:"total"`
	Score         int    `json:"score"`
	TimeLeft      int    `json:"time_left"`
}

// NewSessionEvent wraps data in an envelope with a fresh id
func NewSessionEvent(eventType EventType, sessionID string, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
