package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
)

var ErrBankNotFound = errors.New("question bank not found")

// QuestionBankRepository reads and replaces ordered question banks
type QuestionBankRepository interface {
	// LoadBank returns the questions of a bank in their stored order
	LoadBank(ctx context.Context, bankID string) ([]models.Question, error)
	ListBanks(ctx context.Context) ([]models.BankSummary, error)
	// SaveBank replaces the whole content of a bank
	SaveBank(ctx context.Context, bankID string, questions []models.Question) error
}
