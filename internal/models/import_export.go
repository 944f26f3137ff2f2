package models

type ImportJobStatus string

const (
	ImportProcessing       ImportJobStatus = "processing"
	ImportCompleted        ImportJobStatus = "completed"
	ImportValidationFailed ImportJobStatus = "validation_failed"
)

type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Bank file columns, list cells are separated by ListSeparator
const (
	ColumnID             = "id"
	ColumnType           = "type"
	ColumnQuestionText   = "question_text"
	ColumnImageURL       = "image_url"
	ColumnAudioURL       = "audio_url"
	ColumnOptions        = "options"
	ColumnRearrangeParts = "rearrange_parts"
	ColumnCorrectAnswer  = "correct_answer"
	ColumnExplanation    = "explanation"

	ListSeparator = "|"
)

var BankColumns = []string{
	ColumnID, ColumnType, ColumnQuestionText, ColumnImageURL, ColumnAudioURL,
	ColumnOptions, ColumnRearrangeParts, ColumnCorrectAnswer, ColumnExplanation,
}
