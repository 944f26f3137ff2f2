package quiz

import (
	"math"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
)

// PointsPerCorrect is awarded for each correctly answered question
const PointsPerCorrect = 10

type Tally struct {
	CorrectCount  int
	AnsweredCount int
	Score         int
}

// TallyAnswers derives the score from the answer log. Nothing here is stored.
func TallyAnswers(answers map[string]models.UserAnswer) Tally {
	var t Tally
	for _, a := range answers {
		t.AnsweredCount++
		if a.IsCorrect {
			t.CorrectCount++
		}
	}
	t.Score = t.CorrectCount * PointsPerCorrect
	return t
}

func StatusOf(answers map[string]models.UserAnswer, questionID string) models.AnswerStatus {
	a, ok := answers[questionID]
	switch {
	case !ok:
		return models.StatusUnanswered
	case a.IsCorrect:
		return models.StatusCorrect
	default:
		return models.StatusIncorrect
	}
}

// Percent rounds correct/answered to a whole percentage, 0 when nothing was answered
func Percent(correct, answered int) int {
	if answered == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(answered) * 100))
}

// BuildReport assembles the result summary for a set of questions and their answers
func BuildReport(questions []models.Question, answers map[string]models.UserAnswer) models.SessionReport {
	t := TallyAnswers(answers)
	items := make([]models.ReportItem, 0, len(questions))
	for i, q := range questions {
		item := models.ReportItem{
			Number:        i + 1,
			QuestionID:    q.ID,
			Type:          q.Type,
			QuestionText:  q.QuestionText,
			Status:        StatusOf(answers, q.ID),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if a, ok := answers[q.ID]; ok {
			item.UserResponse = a.UserResponse
		}
		items = append(items, item)
	}

	return models.SessionReport{
		CorrectCount:  t.CorrectCount,
		AnsweredCount: t.AnsweredCount,
		Total:         len(questions),
		Percent:       Percent(t.CorrectCount, t.AnsweredCount),
		Score:         t.Score,
		HasWrong:      t.CorrectCount < t.AnsweredCount,
		Items:         items,
		GeneratedAt:   time.Now(),
	}
}

// WrongQuestions returns the questions of bank answered incorrectly, in bank order
func WrongQuestions(bank []models.Question, answers map[string]models.UserAnswer) []models.Question {
	var wrong []models.Question
	for _, q := range bank {
		if a, ok := answers[q.ID]; ok && !a.IsCorrect {
			wrong = append(wrong, q)
		}
	}
	return wrong
}
