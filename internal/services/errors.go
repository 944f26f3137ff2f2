package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-runner/internal/errors"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz"
	"github.com/SAP-F-2025/quiz-runner/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")

	// Question bank errors
	ErrQuestionBankNotFound = errors.New("question bank not found")
	ErrUnsupportedFile      = errors.New("unsupported question bank file format")
	ErrInvalidBankFile      = errors.New("invalid question bank file")
)

// Business rule names reported for rejected session operations
const (
	RuleInvalidOperation = "invalid_operation"
	RuleOutOfRange       = "out_of_range"
	RuleEmptyQuestionSet = "empty_question_set"
	RuleEmptyResponse    = "empty_response"
	RuleAlreadyAnswered  = "already_answered"
	RuleUnknownOption    = "unknown_option"
	RuleResponseMismatch = "response_mismatch"
	RuleHintUnavailable  = "hint_unavailable"
	RuleInvalidPlayer    = "invalid_player_name"
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	cause   error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.cause
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// wrapEngineError turns a rejected engine operation into a BusinessRuleError
// that still matches the engine sentinel with errors.Is
func wrapEngineError(err error, context map[string]interface{}) error {
	if err == nil || !quiz.IsRejected(err) {
		return err
	}
	return &BusinessRuleError{
		Rule:    ruleFor(err),
		Message: err.Error(),
		Context: context,
		cause:   err,
	}
}

func ruleFor(err error) string {
	switch {
	case errors.Is(err, quiz.ErrOutOfRange):
		return RuleOutOfRange
	case errors.Is(err, quiz.ErrEmptyQuestionSet):
		return RuleEmptyQuestionSet
	case errors.Is(err, quiz.ErrEmptyResponse):
		return RuleEmptyResponse
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return RuleAlreadyAnswered
	case errors.Is(err, quiz.ErrUnknownOption):
		return RuleUnknownOption
	case errors.Is(err, quiz.ErrResponseMismatch):
		return RuleResponseMismatch
	case errors.Is(err, quiz.ErrHintUnavailable):
		return RuleHintUnavailable
	case errors.Is(err, quiz.ErrInvalidPlayerName):
		return RuleInvalidPlayer
	default:
		return RuleInvalidOperation
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionBankNotFound) ||
		errors.Is(err, repositories.ErrBankNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrBadRequest) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict reports rejections caused by the session state rather than by the request content
func IsConflict(err error) bool {
	return errors.Is(err, quiz.ErrInvalidOperation) ||
		errors.Is(err, quiz.ErrAlreadyAnswered) ||
		errors.Is(err, quiz.ErrEmptyQuestionSet)
}
