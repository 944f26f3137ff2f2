package quiz

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
)

var punctuationStripper = strings.NewReplacer(
	".", "", ",", "", "!", "", "?", "", ";", "", ":", "", "'", "", `"`, "",
)

// Normalize strips punctuation, collapses whitespace, trims and lower-cases s.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	s = punctuationStripper.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// Evaluate judges a raw response against the question's canonical answer
func Evaluate(q models.Question, response string) bool {
	return Normalize(response) == Normalize(q.CorrectAnswer)
}

// Response is the per-type input a player gives for a question.
// It is one of ChoiceResponse, TextResponse or ArrangementResponse.
type Response interface {
	kind() models.QuestionType
}

// ChoiceResponse selects one option of a multiple choice question
type ChoiceResponse struct {
	Option string
}

// TextResponse is the typed text for a fill-in-the-blank question
type TextResponse struct {
	Text string
}

// ArrangementResponse holds the chosen fragments of a rearrange question in selection order
type ArrangementResponse struct {
	Parts []string
}

func (ChoiceResponse) kind() models.QuestionType      { return models.MultipleChoice }
func (TextResponse) kind() models.QuestionType        { return models.FillInBlank }
func (ArrangementResponse) kind() models.QuestionType { return models.Rearrange }

// BuildResponse turns a typed response into the raw string that gets evaluated.
// Multiple choice keeps the option verbatim, fill-in is trimmed and rearrange joins
// the fragments with single spaces. Empty input yields ErrEmptyResponse.
func BuildResponse(q models.Question, r Response) (string, error) {
	if r == nil {
		return "", ErrEmptyResponse
	}
	if r.kind() != q.Type {
		return "", fmt.Errorf("%w: %s response for %s question", ErrResponseMismatch, r.kind(), q.Type)
	}

	switch resp := r.(type) {
	case ChoiceResponse:
		if resp.Option == "" {
			return "", ErrEmptyResponse
		}
		if len(q.Options) > 0 && !contains(q.Options, resp.Option) {
			return "", fmt.Errorf("%w: %q", ErrUnknownOption, resp.Option)
		}
		return resp.Option, nil
	case TextResponse:
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	case ArrangementResponse:
		if len(resp.Parts) == 0 {
			return "", ErrEmptyResponse
		}
		for _, part := range resp.Parts {
			if !contains(q.RearrangeParts, part) {
				return "", fmt.Errorf("%w: %q", ErrUnknownOption, part)
			}
		}
		return strings.TrimSpace(strings.Join(resp.Parts, " ")), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, r)
	}
}

// ToggleFragment adds part to the selection or removes it when already selected
func ToggleFragment(selected []string, part string) []string {
	for i, p := range selected {
		if p == part {
			out := make([]string, 0, len(selected)-1)
			out = append(out, selected[:i]...)
			return append(out, selected[i+1:]...)
		}
	}
	out := make([]string, len(selected), len(selected)+1)
	copy(out, selected)
	return append(out, part)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
