package models

import "time"

type ReportItem struct {
	Number        int          `json:"number"`
	QuestionID    string       `json:"question_id"`
	Type          QuestionType `json:"type"`
	QuestionText  string       `json:"question_text"`
	Status        AnswerStatus `json:"status"`
	UserResponse  string       `json:"user_response,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// SessionReport summarizes a session. Percent is computed over answered questions.
type SessionReport struct {
	SessionID     string       `json:"session_id"`
	PlayerName    string       `json:"player_name"`
	State         SessionState `json:"state"`
	FinishReason  FinishReason `json:"finish_reason,omitempty"`
	CorrectCount  int          `json:"correct_count"`
	AnsweredCount int          `json:"answered_count"`
	Total         int          `json:"total"`
	Percent       int          `json:"percent"`
	Score         int          `json:"score"`
	HasWrong      bool         `json:"has_wrong"`
	TimeSpent     int          `json:"time_spent"`
	Items         []ReportItem `json:"items"`
	GeneratedAt   time.Time    `json:"generated_at"`
}
