package postgres

import (
	"testing"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordConversion(t *testing.T) {
	image := "https://example.com/cat.png"
	questions := []models.Question{
		{ID: "1", Type: models.MultipleChoice, QuestionText: "Pick", ImageURL: &image, Options: []string{"A", "B"}, CorrectAnswer: "A", Explanation: "A it is"},
		{ID: "2", Type: models.FillInBlank, QuestionText: "Fill", CorrectAnswer: "went"},
		{ID: "3", Type: models.Rearrange, QuestionText: "Order", RearrangeParts: []string{"am", "I"}, CorrectAnswer: "I am"},
	}

	for i, q := range questions {
		record, err := toRecord("bank-1", i, q)
		require.NoError(t, err)
		assert.Equal(t, "bank-1", record.BankID)
		assert.Equal(t, i, record.Position)
		assert.Equal(t, q.ID, record.QuestionID)

		back, err := toQuestion(&record)
		require.NoError(t, err)
		assert.Equal(t, q, back)
	}
}

func TestRecordConversion_EmptyListsStayNil(t *testing.T) {
	record, err := toRecord("bank", 0, models.Question{ID: "1", Type: models.FillInBlank, CorrectAnswer: "x"})
	require.NoError(t, err)
	assert.Nil(t, record.Options)
	assert.Nil(t, record.RearrangeParts)

	record.Options = []byte("null")
	q, err := toQuestion(&record)
	require.NoError(t, err)
	assert.Nil(t, q.Options)
}

func TestToQuestion_InvalidJSON(t *testing.T) {
	record := models.QuestionRecord{QuestionID: "9", Options: []byte("{not json")}
	_, err := toQuestion(&record)
	assert.Error(t, err)
}
