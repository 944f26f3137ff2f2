package validator

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBank() []models.Question {
	return []models.Question{
		{ID: "1", Type: models.MultipleChoice, QuestionText: "Capital of France?", Options: []string{"London", "Paris"}, CorrectAnswer: "Paris."},
		{ID: "2", Type: models.FillInBlank, QuestionText: "She ___ home.", CorrectAnswer: "went"},
		{ID: "3", Type: models.Rearrange, QuestionText: "Order the words", RearrangeParts: []string{"a student", "am", "I"}, CorrectAnswer: "I am a student"},
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var errs ValidationErrors
	require.True(t, errors.As(err, &errs), "expected ValidationErrors, got %v", err)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestQuestionValidator_ValidBank(t *testing.T) {
	v := New()
	assert.NoError(t, v.Question().ValidateBank(validBank()))
}

func TestQuestionValidator_EmptyBank(t *testing.T) {
	v := New()
	err := v.Question().ValidateBank(nil)
	assert.Equal(t, []string{"questions"}, fieldsOf(t, err))
}

func TestQuestionValidator_DuplicateIDs(t *testing.T) {
	bank := validBank()
	bank[2].ID = "1"

	err := New().Question().ValidateBank(bank)
	assert.Equal(t, []string{"questions[2].id"}, fieldsOf(t, err))
}

func TestQuestionValidator_TypeRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q []models.Question)
		field  string
	}{
		{"choice needs two options", func(q []models.Question) { q[0].Options = []string{"Paris"} }, "questions[0].options"},
		{"choice answer must be an option", func(q []models.Question) { q[0].CorrectAnswer = "Rome" }, "questions[0].correct_answer"},
		{"fill in has no options", func(q []models.Question) { q[1].Options = []string{"went", "go"} }, "questions[1].options"},
		{"rearrange needs parts", func(q []models.Question) { q[2].RearrangeParts = nil }, "questions[2].rearrange_parts"},
		{"rearrange words must match", func(q []models.Question) { q[2].CorrectAnswer = "I am a teacher" }, "questions[2].correct_answer"},
		{"unknown type", func(q []models.Question) { q[1].Type = "essay" }, "questions[1].type"},
		{"missing text", func(q []models.Question) { q[1].QuestionText = "" }, "questions[1].question_text"},
		{"bad image url", func(q []models.Question) { u := "not a url"; q[0].ImageURL = &u }, "questions[0].image_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := validBank()
			tt.mutate(bank)
			err := New().Question().ValidateBank(bank)
			assert.Contains(t, fieldsOf(t, err), tt.field)
		})
	}
}

func TestValidator_PlayerName(t *testing.T) {
	type request struct {
		PlayerName string `json:"player_name" validate:"player_name"`
	}
	v := New()

	assert.NoError(t, v.Validate(request{PlayerName: " Lan "}))

	err := v.Validate(request{PlayerName: "   "})
	assert.Equal(t, []string{"player_name"}, fieldsOf(t, err))
}
