package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FillInBlank    QuestionType = "fill_in_blank"
	Rearrange      QuestionType = "rearrange"
)

// QuestionTypes lists every supported question type
var QuestionTypes = []QuestionType{MultipleChoice, FillInBlank, Rearrange}

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, FillInBlank, Rearrange:
		return true
	}
	return false
}

// Question is an immutable record of the question bank.
// For Rearrange questions CorrectAnswer holds the fragments joined by single spaces in the correct order.
type Question struct {
	ID             string       `json:"id" validate:"required,max=64"`
	Type           QuestionType `json:"type" validate:"required,question_type"`
	QuestionText   string       `json:"question_text" validate:"required"`
	ImageURL       *string      `json:"image_url,omitempty" validate:"omitempty,url"`
	AudioURL       *string      `json:"audio_url,omitempty" validate:"omitempty,url"`
	Options        []string     `json:"options,omitempty" validate:"omitempty,dive,required"`
	RearrangeParts []string     `json:"rearrange_parts,omitempty" validate:"omitempty,dive,required"`
	CorrectAnswer  string       `json:"correct_answer" validate:"required"`
	Explanation    string       `json:"explanation"`
}

// QuestionView is the client-facing projection of a question. The answer fields
// stay empty until the question has been answered or the session is over.
type QuestionView struct {
	ID             string       `json:"id"`
	Type           QuestionType `json:"type"`
	QuestionText   string       `json:"question_text"`
	ImageURL       *string      `json:"image_url,omitempty"`
	AudioURL       *string      `json:"audio_url,omitempty"`
	Options        []string     `json:"options,omitempty"`
	RearrangeParts []string     `json:"rearrange_parts,omitempty"`
	CorrectAnswer  string       `json:"correct_answer,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
}

func (q Question) View(reveal bool) QuestionView {
	v := QuestionView{
		ID:             q.ID,
		Type:           q.Type,
		QuestionText:   q.QuestionText,
		ImageURL:       q.ImageURL,
		AudioURL:       q.AudioURL,
		Options:        q.Options,
		RearrangeParts: q.RearrangeParts,
	}
	if reveal {
		v.CorrectAnswer = q.CorrectAnswer
		v.Explanation = q.Explanation
	}
	return v
}

// QuestionRecord is the persisted form of a bank question
type QuestionRecord struct {
	ID             uint           `json:"-" gorm:"primaryKey"`
	BankID         string         `json:"bank_id" gorm:"not null;size:64;uniqueIndex:idx_bank_question;index:idx_bank_position"`
	Position       int            `json:"position" gorm:"not null;index:idx_bank_position"`
	QuestionID     string         `json:"question_id" gorm:"not null;size:64;uniqueIndex:idx_bank_question"`
	Type           QuestionType   `json:"type" gorm:"not null;size:32"`
	QuestionText   string         `json:"question_text" gorm:"type:text;not null"`
	ImageURL       *string        `json:"image_url" gorm:"size:500"`
	AudioURL       *string        `json:"audio_url" gorm:"size:500"`
	Options        datatypes.JSON `json:"options" gorm:"type:jsonb"`
	RearrangeParts datatypes.JSON `json:"rearrange_parts" gorm:"type:jsonb"`
	CorrectAnswer  string         `json:"correct_answer" gorm:"type:text;not null"`
	Explanation    string         `json:"explanation" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (QuestionRecord) TableName() string {
	return "quiz_questions"
}

// BankSummary describes a stored question bank
type BankSummary struct {
	BankID        string `json:"bank_id"`
	QuestionCount int64  `json:"question_count"`
}
