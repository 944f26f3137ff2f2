package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz"
	"github.com/go-playground/validator/v10"
)

const (
	minChoiceOptions = 2
	maxChoiceOptions = 10
)

// QuestionValidator checks that each question carries exactly the fields its type needs
type QuestionValidator struct {
	structValidator *validator.Validate
}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator(structValidator *validator.Validate) *QuestionValidator {
	return &QuestionValidator{structValidator: structValidator}
}

// ValidateQuestion validates a single question record
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if errs := v.validateQuestion(question, ""); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBank validates a whole bank: it must be non-empty, ids must be unique
// and every question must be valid for its type.
func (v *QuestionValidator) ValidateBank(questions []models.Question) error {
	if len(questions) == 0 {
		return ValidationErrors{{Field: "questions", Message: "question bank cannot be empty", Rule: "required"}}
	}

	var errs ValidationErrors
	seen := make(map[string]int, len(questions))
	for i := range questions {
		prefix := fmt.Sprintf("questions[%d].", i)
		errs = append(errs, v.validateQuestion(&questions[i], prefix)...)

		id := questions[i].ID
		if first, dup := seen[id]; dup && id != "" {
			errs = append(errs, ValidationError{
				Field:   prefix + "id",
				Message: fmt.Sprintf("duplicates the id of question %d", first+1),
				Value:   id,
				Rule:    "unique",
			})
			continue
		}
		seen[id] = i
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *QuestionValidator) validateQuestion(q *models.Question, prefix string) ValidationErrors {
	var errs ValidationErrors
	if err := v.structValidator.Struct(q); err != nil {
		for _, e := range ToValidationErrors(err) {
			e.Field = prefix + e.Field
			errs = append(errs, e)
		}
		// type specific checks are meaningless without the basic fields
		if len(errs) > 0 {
			return errs
		}
	}

	add := func(field, message string, value interface{}) {
		errs = append(errs, ValidationError{Field: prefix + field, Message: message, Value: value, Rule: string(q.Type)})
	}

	switch q.Type {
	case models.MultipleChoice:
		if len(q.Options) < minChoiceOptions || len(q.Options) > maxChoiceOptions {
			add("options", fmt.Sprintf("must have between %d and %d options", minChoiceOptions, maxChoiceOptions), len(q.Options))
		}
		if len(q.RearrangeParts) > 0 {
			add("rearrange_parts", "is only allowed for rearrange questions", q.RearrangeParts)
		}
		correct := quiz.Normalize(q.CorrectAnswer)
		if !slices.ContainsFunc(q.Options, func(opt string) bool { return quiz.Normalize(opt) == correct }) {
			add("correct_answer", "must match one of the options", q.CorrectAnswer)
		}
	case models.FillInBlank:
		if len(q.Options) > 0 {
			add("options", "is only allowed for multiple choice questions", q.Options)
		}
		if len(q.RearrangeParts) > 0 {
			add("rearrange_parts", "is only allowed for rearrange questions", q.RearrangeParts)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			add("correct_answer", "must not be blank", q.CorrectAnswer)
		}
	case models.Rearrange:
		if len(q.Options) > 0 {
			add("options", "is only allowed for multiple choice questions", q.Options)
		}
		if len(q.RearrangeParts) == 0 {
			add("rearrange_parts", "is required", nil)
		} else if !sameWords(strings.Join(q.RearrangeParts, " "), q.CorrectAnswer) {
			add("correct_answer", "must use exactly the words of the rearrange parts", q.CorrectAnswer)
		}
	default:
		add("type", "unsupported question type", q.Type)
	}

	return errs
}

func sameWords(a, b string) bool {
	wa, wb := strings.Fields(a), strings.Fields(b)
	slices.Sort(wa)
	slices.Sort(wb)
	return slices.Equal(wa, wb)
}
