package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ImportExportService reads question banks from files and exports session reports
type ImportExportService interface {
	// Import operations
	ImportBankFromFile(ctx context.Context, path string) (*ImportResult, error)
	ImportBank(ctx context.Context, reader io.Reader, filename string) (*ImportResult, error)
	ImportBankFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ImportBankFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ImportBankFromJSON(ctx context.Context, reader io.Reader) (*ImportResult, error)

	// Export operations
	ExportReportToExcel(ctx context.Context, report models.SessionReport) ([]byte, error)
	ExportBankToExcel(ctx context.Context, questions []models.Question) ([]byte, error)
}

type importExportService struct {
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

// ImportResult lists the questions that passed validation and the errors of the rows that did not
type ImportResult struct {
	TotalRows     int                            `json:"total_rows"`
	ProcessedRows int                            `json:"processed_rows"`
	SuccessCount  int                            `json:"success_count"`
	ErrorCount    int                            `json:"error_count"`
	Errors        []models.ImportValidationError `json:"errors"`
	Questions     []models.Question              `json:"questions,omitempty"`
	Status        models.ImportJobStatus         `json:"status"`
}

func (s *importExportService) ImportBankFromFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open question bank file: %w", err)
	}
	defer f.Close()

	return s.ImportBank(ctx, f, filepath.Base(path))
}

func (s *importExportService) ImportBank(ctx context.Context, reader io.Reader, filename string) (*ImportResult, error) {
	s.logger.Info("Starting question bank import", "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		return s.ImportBankFromJSON(ctx, reader)
	case ".csv":
		return s.ImportBankFromCSV(ctx, reader)
	case ".xlsx":
		return s.ImportBankFromExcel(ctx, reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
}

func (s *importExportService) ImportBankFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %v", ErrInvalidBankFile, err)
	}

	return s.importRows(records, "CSV")
}

func (s *importExportService) ImportBankFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrInvalidBankFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: Excel file has no sheets", ErrInvalidBankFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	return s.importRows(rows, "Excel")
}

// ImportBankFromJSON reads an array of question records
func (s *importExportService) ImportBankFromJSON(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	var questions []models.Question
	if err := json.NewDecoder(reader).Decode(&questions); err != nil {
		return nil, fmt.Errorf("%w: failed to decode JSON: %v", ErrInvalidBankFile, err)
	}

	result := &ImportResult{
		TotalRows: len(questions),
		Status:    models.ImportProcessing,
	}
	seen := make(map[string]int)
	for i := range questions {
		s.collect(result, seen, &questions[i], i+1)
	}
	s.finish(result, "JSON")
	return result, nil
}

func (s *importExportService) importRows(rows [][]string, format string) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s must have header row and at least one data row", ErrInvalidBankFile, format)
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	requiredColumns := []string{models.ColumnID, models.ColumnType, models.ColumnQuestionText, models.ColumnCorrectAnswer}
	for _, col := range requiredColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, fmt.Errorf("%w: missing required column %q", ErrInvalidBankFile, col)
		}
	}

	result := &ImportResult{
		TotalRows: len(rows) - 1, // Exclude header
		Status:    models.ImportProcessing,
	}

	seen := make(map[string]int)
	for rowIndex, record := range rows[1:] {
		if isBlankRow(record) {
			result.TotalRows--
			continue
		}
		question := parseRow(record, headerMap)
		s.collect(result, seen, &question, rowIndex+2)
	}

	s.finish(result, format)
	return result, nil
}

// collect validates one parsed question and records it either as a success or as row errors
func (s *importExportService) collect(result *ImportResult, seen map[string]int, q *models.Question, row int) {
	result.ProcessedRows++

	var rowErrors []models.ImportValidationError
	if err := s.validator.Question().ValidateQuestion(q); err != nil {
		rowErrors = toImportErrors(err, row)
	}
	if first, dup := seen[q.ID]; dup && q.ID != "" {
		rowErrors = append(rowErrors, models.ImportValidationError{
			Row: row, Column: models.ColumnID, Message: fmt.Sprintf("duplicates the id of row %d", first), Value: q.ID,
		})
	}

	if len(rowErrors) > 0 {
		result.Errors = append(result.Errors, rowErrors...)
		result.ErrorCount++
		return
	}
	seen[q.ID] = row
	result.Questions = append(result.Questions, *q)
	result.SuccessCount++
}

func (s *importExportService) finish(result *ImportResult, format string) {
	result.Status = models.ImportCompleted
	if result.ErrorCount > 0 || result.SuccessCount == 0 {
		result.Status = models.ImportValidationFailed
	}

	s.logger.Info(format+" import completed",
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount,
		"status", result.Status)
}

// ===== EXPORT OPERATIONS =====

const (
	reportSummarySheet = "Summary"
	reportAnswersSheet = "Answers"
)

// ExportReportToExcel writes a workbook with a summary sheet and a per-question sheet
func (s *importExportService) ExportReportToExcel(ctx context.Context, report models.SessionReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSummarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Player", report.PlayerName},
		{"Session", report.SessionID},
		{"Finish Reason", string(report.FinishReason)},
		{"Correct", report.CorrectCount},
		{"Answered", report.AnsweredCount},
		{"Total Questions", report.Total},
		{"Percent", report.Percent},
		{"Score", report.Score},
		{"Time Spent (seconds)", report.TimeSpent},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	if err := writeRows(f, reportSummarySheet, summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(reportAnswersSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	rows := [][]interface{}{
		{"#", "Question ID", "Type", "Question", "Status", "Your Answer", "Correct Answer", "Explanation"},
	}
	for _, item := range report.Items {
		rows = append(rows, []interface{}{
			item.Number,
			item.QuestionID,
			string(item.Type),
			item.QuestionText,
			string(item.Status),
			item.UserResponse,
			item.CorrectAnswer,
			item.Explanation,
		})
	}
	if err := writeRows(f, reportAnswersSheet, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Debug("Report exported", "session_id", report.SessionID, "items", len(report.Items))
	return buf.Bytes(), nil
}

// ===== HELPER FUNCTIONS =====

func parseRow(record []string, headerMap map[string]int) models.Question {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}

	q := models.Question{
		ID:             getColumn(models.ColumnID),
		Type:           models.QuestionType(strings.ToLower(getColumn(models.ColumnType))),
		QuestionText:   getColumn(models.ColumnQuestionText),
		Options:        splitList(getColumn(models.ColumnOptions)),
		RearrangeParts: splitList(getColumn(models.ColumnRearrangeParts)),
		CorrectAnswer:  getColumn(models.ColumnCorrectAnswer),
		Explanation:    getColumn(models.ColumnExplanation),
	}
	if v := getColumn(models.ColumnImageURL); v != "" {
		q.ImageURL = &v
	}
	if v := getColumn(models.ColumnAudioURL); v != "" {
		q.AudioURL = &v
	}
	return q
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(cell, models.ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func toImportErrors(err error, row int) []models.ImportValidationError {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.ImportValidationError{{Row: row, Message: err.Error()}}
	}

	result := make([]models.ImportValidationError, 0, len(errs))
	for _, e := range errs {
		value := ""
		if e.Value != nil {
			value = fmt.Sprint(e.Value)
		}
		result = append(result, models.ImportValidationError{
			Row:     row,
			Column:  e.Field,
			Message: e.Message,
			Value:   value,
		})
	}
	return result
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write Excel row %d: %w", i+1, err)
		}
	}
	return nil
}

// ExportBankToExcel renders questions in the layout ImportBankFromExcel reads
func (s *importExportService) ExportBankToExcel(ctx context.Context, questions []models.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(models.BankColumns))
	for i, col := range models.BankColumns {
		header[i] = col
	}
	rows := [][]interface{}{header}
	for _, q := range questions {
		rows = append(rows, []interface{}{
			q.ID,
			string(q.Type),
			q.QuestionText,
			deref(q.ImageURL),
			deref(q.AudioURL),
			strings.Join(q.Options, models.ListSeparator),
			strings.Join(q.RearrangeParts, models.ListSeparator),
			q.CorrectAnswer,
			q.Explanation,
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
