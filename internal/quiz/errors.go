package quiz

import "errors"

var (
	ErrInvalidOperation  = errors.New("operation not allowed in current session state")
	ErrOutOfRange        = errors.New("question index out of range")
	ErrEmptyQuestionSet  = errors.New("question set is empty")
	ErrEmptyResponse     = errors.New("response is empty")
	ErrAlreadyAnswered   = errors.New("current question is already answered")
	ErrUnknownOption     = errors.New("response is not one of the offered choices")
	ErrInvalidPlayerName = errors.New("player name is required")
	ErrResponseMismatch  = errors.New("response kind does not match question type")
	ErrUnsupportedType   = errors.New("unsupported question type")
	ErrHintUnavailable   = errors.New("no hint available for this question")
)

// IsRejected reports whether err is a recoverable refusal that left the session untouched
func IsRejected(err error) bool {
	return errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrEmptyQuestionSet) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrAlreadyAnswered) ||
		errors.Is(err, ErrUnknownOption) ||
		errors.Is(err, ErrInvalidPlayerName) ||
		errors.Is(err, ErrResponseMismatch) ||
		errors.Is(err, ErrHintUnavailable)
}
