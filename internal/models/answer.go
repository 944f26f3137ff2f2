package models

import "time"

// UserAnswer is the verdict recorded for one question. IsCorrect is fixed when the answer is created.
type UserAnswer struct {
	QuestionID   string    `json:"question_id"`
	UserResponse string    `json:"user_response"`
	IsCorrect    bool      `json:"is_correct"`
	AnsweredAt   time.Time `json:"answered_at"`
}

type AnswerStatus string

const (
	StatusUnanswered AnswerStatus = "unanswered"
	StatusCorrect    AnswerStatus = "correct"
	StatusIncorrect  AnswerStatus = "incorrect"
)

type HintKind string

const (
	HintEliminatedOption HintKind = "eliminated_option"
	HintFirstLetter      HintKind = "first_letter"
	HintFirstWord        HintKind = "first_word"
)

type Hint struct {
	QuestionID string   `json:"question_id"`
	Kind       HintKind `json:"kind"`
	Value      string   `json:"value"`
	Text       string   `json:"text"`
}
