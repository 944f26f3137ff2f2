package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/repositories"
	"github.com/SAP-F-2025/quiz-runner/internal/validator"
)

// BankSource selects where the question bank comes from
type BankSource struct {
	// File is read when Repository is nil
	File       string
	BankID     string
	Repository repositories.QuestionBankRepository
}

// QuestionBankService loads the validated bank the session engine runs on
type QuestionBankService interface {
	LoadBank(ctx context.Context) ([]models.Question, error)
	// SeedBank imports a file into the repository under the configured bank id
	SeedBank(ctx context.Context, path string) (*ImportResult, error)
	ListBanks(ctx context.Context) ([]models.BankSummary, error)
}

type questionBankService struct {
	source    BankSource
	importer  ImportExportService
	validator *validator.Validator
	logger    *slog.Logger
}

func NewQuestionBankService(source BankSource, importer ImportExportService, validator *validator.Validator, logger *slog.Logger) QuestionBankService {
	return &questionBankService{
		source:    source,
		importer:  importer,
		validator: validator,
		logger:    logger,
	}
}

func (s *questionBankService) LoadBank(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question

	if s.source.Repository != nil {
		loaded, err := s.source.Repository.LoadBank(ctx, s.source.BankID)
		if err != nil {
			if errors.Is(err, repositories.ErrBankNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrQuestionBankNotFound, s.source.BankID)
			}
			return nil, err
		}
		questions = loaded
	} else {
		result, err := s.importer.ImportBankFromFile(ctx, s.source.File)
		if err != nil {
			return nil, err
		}
		if result.Status != models.ImportCompleted {
			return nil, importFailure(result)
		}
		questions = result.Questions
	}

	if err := s.validator.Question().ValidateBank(questions); err != nil {
		return nil, err
	}

	s.logger.Info("Question bank loaded",
		"bank_id", s.source.BankID,
		"file", s.source.File,
		"questions", len(questions))
	return questions, nil
}

func (s *questionBankService) SeedBank(ctx context.Context, path string) (*ImportResult, error) {
	if s.source.Repository == nil {
		return nil, fmt.Errorf("%w: seeding requires a question bank repository", ErrBadRequest)
	}

	result, err := s.importer.ImportBankFromFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if result.Status != models.ImportCompleted {
		return result, importFailure(result)
	}

	if err := s.source.Repository.SaveBank(ctx, s.source.BankID, result.Questions); err != nil {
		return nil, fmt.Errorf("failed to save question bank: %w", err)
	}

	s.logger.Info("Question bank seeded", "bank_id", s.source.BankID, "file", path, "questions", len(result.Questions))
	return result, nil
}

func (s *questionBankService) ListBanks(ctx context.Context) ([]models.BankSummary, error) {
	if s.source.Repository != nil {
		return s.source.Repository.ListBanks(ctx)
	}

	questions, err := s.LoadBank(ctx)
	if err != nil {
		return nil, err
	}
	return []models.BankSummary{{BankID: s.source.BankID, QuestionCount: int64(len(questions))}}, nil
}

func importFailure(result *ImportResult) error {
	errs := make(ValidationErrors, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("row %d %s", e.Row, e.Column),
			Message: e.Message,
			Value:   e.Value,
		})
	}
	if len(errs) == 0 {
		errs = append(errs, ValidationError{Field: "questions", Message: "question bank cannot be empty", Rule: "required"})
	}
	return errs
}
