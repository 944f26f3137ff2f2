package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/cache"
	"github.com/SAP-F-2025/quiz-runner/internal/models"
)

const (
	bankKeyPrefix  = "quiz:bank:"
	bankListKey    = "quiz:banks"
	bankKeyPattern = "quiz:bank*"
)

// CachedQuestionBankRepository is a read-through cache in front of another bank repository.
// Cache failures are logged and never fail a read.
type CachedQuestionBankRepository struct {
	next   QuestionBankRepository
	cache  cache.CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedQuestionBankRepository(next QuestionBankRepository, cacheService cache.CacheService, ttl time.Duration, logger *slog.Logger) QuestionBankRepository {
	return &CachedQuestionBankRepository{
		next:   next,
		cache:  cacheService,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedQuestionBankRepository) LoadBank(ctx context.Context, bankID string) ([]models.Question, error) {
	key := bankKeyPrefix + bankID

	var questions []models.Question
	err := r.cache.Get(ctx, key, &questions)
	if err == nil && len(questions) > 0 {
		r.logger.Debug("Question bank served from cache", "bank_id", bankID, "questions", len(questions))
		return questions, nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Question bank cache read failed", "bank_id", bankID, "error", err)
	}

	questions, err = r.next.LoadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, questions, r.ttl); err != nil {
		r.logger.Warn("Question bank cache write failed", "bank_id", bankID, "error", err)
	}
	return questions, nil
}

func (r *CachedQuestionBankRepository) ListBanks(ctx context.Context) ([]models.BankSummary, error) {
	var summaries []models.BankSummary
	err := r.cache.Get(ctx, bankListKey, &summaries)
	if err == nil {
		return summaries, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Bank list cache read failed", "error", err)
	}

	summaries, err = r.next.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, bankListKey, summaries, r.ttl); err != nil {
		r.logger.Warn("Bank list cache write failed", "error", err)
	}
	return summaries, nil
}

// SaveBank writes through and drops every cached bank entry
func (r *CachedQuestionBankRepository) SaveBank(ctx context.Context, bankID string, questions []models.Question) error {
	if err := r.next.SaveBank(ctx, bankID, questions); err != nil {
		return err
	}
	if err := r.cache.DeletePattern(ctx, bankKeyPattern); err != nil {
		r.logger.Warn("Question bank cache invalidation failed", "bank_id", bankID, "error", err)
	}
	return nil
}
