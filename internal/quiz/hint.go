package quiz

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
)

// MakeHint builds the hint for q. Multiple choice eliminates a random wrong option,
// fill-in reveals the first letter and rearrange reveals the first word.
func MakeHint(q models.Question, rng *rand.Rand) (models.Hint, error) {
	hint := models.Hint{QuestionID: q.ID}

	switch q.Type {
	case models.MultipleChoice:
		correct := Normalize(q.CorrectAnswer)
		var wrong []string
		for _, opt := range q.Options {
			if Normalize(opt) != correct {
				wrong = append(wrong, opt)
			}
		}
		if len(wrong) == 0 {
			return models.Hint{}, ErrHintUnavailable
		}
		hint.Kind = models.HintEliminatedOption
		hint.Value = wrong[rng.Intn(len(wrong))]
		hint.Text = fmt.Sprintf("Eliminate one wrong answer: %q", hint.Value)
	case models.FillInBlank:
		answer := strings.TrimSpace(q.CorrectAnswer)
		r, _ := utf8.DecodeRuneInString(answer)
		if answer == "" || r == utf8.RuneError {
			return models.Hint{}, ErrHintUnavailable
		}
		hint.Kind = models.HintFirstLetter
		hint.Value = string(unicode.ToUpper(r))
		hint.Text = fmt.Sprintf("Starts with: %q", hint.Value+"...")
	case models.Rearrange:
		words := strings.Split(q.CorrectAnswer, " ")
		if words[0] == "" {
			return models.Hint{}, ErrHintUnavailable
		}
		hint.Kind = models.HintFirstWord
		hint.Value = words[0]
		hint.Text = fmt.Sprintf("The first word is: %q", hint.Value)
	default:
		return models.Hint{}, fmt.Errorf("%w: %s", ErrUnsupportedType, q.Type)
	}

	return hint, nil
}
