package repositories

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/cache"
	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

type MockQuestionBankRepository struct {
	mock.Mock
}

func (m *MockQuestionBankRepository) LoadBank(ctx context.Context, bankID string) ([]models.Question, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionBankRepository) ListBanks(ctx context.Context) ([]models.BankSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BankSummary), args.Error(1)
}

func (m *MockQuestionBankRepository) SaveBank(ctx context.Context, bankID string, questions []models.Question) error {
	args := m.Called(ctx, bankID, questions)
	return args.Error(0)
}

var _ cache.CacheService = (*MockCacheService)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleBank() []models.Question {
	return []models.Question{
		{ID: "1", Type: models.FillInBlank, QuestionText: "I ___ home", CorrectAnswer: "went"},
	}
}

func TestCachedLoadBank_Hit(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Hour, discardLogger())

	cacheMock.On("Get", ctx, "quiz:bank:default", mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*[]models.Question)
			*dest = sampleBank()
		}).
		Return(nil)

	questions, err := repo.LoadBank(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, sampleBank(), questions)
	next.AssertNotCalled(t, "LoadBank", mock.Anything, mock.Anything)
}

func TestCachedLoadBank_MissFillsCache(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Hour, discardLogger())

	cacheMock.On("Get", ctx, "quiz:bank:default", mock.Anything).Return(cache.ErrCacheMiss)
	next.On("LoadBank", ctx, "default").Return(sampleBank(), nil)
	cacheMock.On("Set", ctx, "quiz:bank:default", sampleBank(), time.Hour).Return(nil)

	questions, err := repo.LoadBank(ctx, "default")
	require.NoError(t, err)
	assert.Len(t, questions, 1)
	cacheMock.AssertExpectations(t)
	next.AssertExpectations(t)
}

func TestCachedLoadBank_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Minute, discardLogger())

	cacheMock.On("Get", ctx, "quiz:bank:b", mock.Anything).Return(errors.New("connection refused"))
	next.On("LoadBank", ctx, "b").Return(sampleBank(), nil)
	cacheMock.On("Set", ctx, "quiz:bank:b", mock.Anything, time.Minute).Return(errors.New("connection refused"))

	questions, err := repo.LoadBank(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestCachedLoadBank_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Hour, discardLogger())

	cacheMock.On("Get", ctx, "quiz:bank:missing", mock.Anything).Return(cache.ErrCacheMiss)
	next.On("LoadBank", ctx, "missing").Return(nil, ErrBankNotFound)

	_, err := repo.LoadBank(ctx, "missing")
	assert.ErrorIs(t, err, ErrBankNotFound)
	cacheMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedListBanks(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Hour, discardLogger())

	summaries := []models.BankSummary{{BankID: "default", QuestionCount: 20}}
	cacheMock.On("Get", ctx, "quiz:banks", mock.Anything).Return(cache.ErrCacheMiss)
	next.On("ListBanks", ctx).Return(summaries, nil)
	cacheMock.On("Set", ctx, "quiz:banks", summaries, time.Hour).Return(nil)

	result, err := repo.ListBanks(ctx)
	require.NoError(t, err)
	assert.Equal(t, summaries, result)
}

func TestCachedSaveBank_Invalidates(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Hour, discardLogger())

	next.On("SaveBank", ctx, "default", sampleBank()).Return(nil)
	cacheMock.On("DeletePattern", ctx, "quiz:bank*").Return(nil)

	require.NoError(t, repo.SaveBank(ctx, "default", sampleBank()))
	cacheMock.AssertExpectations(t)
}

func TestCachedSaveBank_ErrorSkipsInvalidation(t *testing.T) {
	ctx := context.Background()
	cacheMock := new(MockCacheService)
	next := new(MockQuestionBankRepository)
	repo := NewCachedQuestionBankRepository(next, cacheMock, time.Hour, discardLogger())

	next.On("SaveBank", ctx, "default", mock.Anything).Return(errors.New("db down"))

	assert.Error(t, repo.SaveBank(ctx, "default", sampleBank()))
	cacheMock.AssertNotCalled(t, "DeletePattern", mock.Anything, mock.Anything)
}
