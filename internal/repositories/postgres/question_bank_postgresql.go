package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionBankPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionBankPostgreSQL(db *gorm.DB) repositories.QuestionBankRepository {
	return &QuestionBankPostgreSQL{db: db}
}

// AutoMigrate creates or updates the question table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.QuestionRecord{}); err != nil {
		return fmt.Errorf("failed to migrate question records: %w", err)
	}
	return nil
}

// LoadBank retrieves all questions of a bank ordered by position
func (r *QuestionBankPostgreSQL) LoadBank(ctx context.Context, bankID string) ([]models.Question, error) {
	var records []models.QuestionRecord
	if err := r.db.WithContext(ctx).
		Where("bank_id = ?", bankID).
		Order("position ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", repositories.ErrBankNotFound, bankID)
	}

	questions := make([]models.Question, 0, len(records))
	for i := range records {
		q, err := toQuestion(&records[i])
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// ListBanks returns every bank with its question count
func (r *QuestionBankPostgreSQL) ListBanks(ctx context.Context) ([]models.BankSummary, error) {
	var summaries []models.BankSummary
	if err := r.db.WithContext(ctx).
		Model(&models.QuestionRecord{}).
		Select("bank_id, COUNT(*) AS question_count").
		Group("bank_id").
		Order("bank_id").
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to list question banks: %w", err)
	}
	return summaries, nil
}

// SaveBank replaces the bank content inside a transaction
func (r *QuestionBankPostgreSQL) SaveBank(ctx context.Context, bankID string, questions []models.Question) error {
	records := make([]models.QuestionRecord, 0, len(questions))
	for i, q := range questions {
		record, err := toRecord(bankID, i, q)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bank_id = ?", bankID).Delete(&models.QuestionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear question bank: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("failed to save question bank: %w", err)
		}
		return nil
	})
}

func toRecord(bankID string, position int, q models.Question) (models.QuestionRecord, error) {
	options, err := toJSON(q.Options)
	if err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to encode options of question %s: %w", q.ID, err)
	}
	parts, err := toJSON(q.RearrangeParts)
	if err != nil {
		return models.QuestionRecord{}, fmt.Errorf("failed to encode rearrange parts of question %s: %w", q.ID, err)
	}

	return models.QuestionRecord{
		BankID:         bankID,
		Position:       position,
		QuestionID:     q.ID,
		Type:           q.Type,
		QuestionText:   q.QuestionText,
		ImageURL:       q.ImageURL,
		AudioURL:       q.AudioURL,
		Options:        options,
		RearrangeParts: parts,
		CorrectAnswer:  q.CorrectAnswer,
		Explanation:    q.Explanation,
	}, nil
}

func toQuestion(record *models.QuestionRecord) (models.Question, error) {
	q := models.Question{
		ID:            record.QuestionID,
		Type:          record.Type,
		QuestionText:  record.QuestionText,
		ImageURL:      record.ImageURL,
		AudioURL:      record.AudioURL,
		CorrectAnswer: record.CorrectAnswer,
		Explanation:   record.Explanation,
	}
	if err := fromJSON(record.Options, &q.Options); err != nil {
		return models.Question{}, fmt.Errorf("failed to decode options of question %s: %w", record.QuestionID, err)
	}
	if err := fromJSON(record.RearrangeParts, &q.RearrangeParts); err != nil {
		return models.Question{}, fmt.Errorf("failed to decode rearrange parts of question %s: %w", record.QuestionID, err)
	}
	return q, nil
}

func toJSON(values []string) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

func fromJSON(data datatypes.JSON, dest *[]string) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dest)
}
