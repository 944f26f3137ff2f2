package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/events"
	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz"
	"github.com/SAP-F-2025/quiz-runner/internal/validator"
)

const publishTimeout = 5 * time.Second

// SessionService drives the single quiz session of this process
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*models.SessionSnapshot, error)
	State(ctx context.Context) *models.SessionSnapshot
	SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*AnswerResult, error)
	Advance(ctx context.Context) (*models.SessionSnapshot, error)
	Skip(ctx context.Context) (*models.SessionSnapshot, error)
	Finish(ctx context.Context) (*models.SessionSnapshot, error)
	JumpTo(ctx context.Context, req *JumpRequest) (*models.SessionSnapshot, error)
	PageBack(ctx context.Context) (*models.SessionSnapshot, error)
	PageForward(ctx context.Context) (*models.SessionSnapshot, error)
	RetryAll(ctx context.Context) (*models.SessionSnapshot, error)
	RetryWrong(ctx context.Context) (*models.SessionSnapshot, error)
	Hint(ctx context.Context) (*models.Hint, error)
	Report(ctx context.Context) (*models.SessionReport, error)
	ExportReport(ctx context.Context) ([]byte, error)
	Bank(ctx context.Context) *BankOverview
	Close() error
}

// Broadcaster pushes engine events to connected clients
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// ===== REQUESTS & RESPONSES =====

type StartSessionRequest struct {
	PlayerName string `json:"player_name" validate:"required,player_name"`
}

// SubmitAnswerRequest carries the field matching the current question type:
// option for multiple choice, text for fill in the blank, parts for rearrange
type SubmitAnswerRequest struct {
	Option string   `json:"option" validate:"max=500"`
	Text   string   `json:"text" validate:"max=500"`
	Parts  []string `json:"parts" validate:"max=50,dive,max=100"`
}

type JumpRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type AnswerResult struct {
	Answer   models.UserAnswer      `json:"answer"`
	Snapshot models.SessionSnapshot `json:"snapshot"`
}

// BankOverview lists the bank without answers
type BankOverview struct {
	Total     int                   `json:"total"`
	Questions []models.QuestionView `json:"questions"`
}

// StreamPayload is what websocket clients receive for every engine event
type StreamPayload struct {
	SessionID    string                 `json:"session_id"`
	AutoAdvanced bool                   `json:"auto_advanced,omitempty"`
	Reason       models.FinishReason    `json:"reason,omitempty"`
	Answer       *models.UserAnswer     `json:"answer,omitempty"`
	Snapshot     models.SessionSnapshot `json:"snapshot"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// SessionConfig holds the engine tuning taken from configuration
type SessionConfig struct {
	DurationSeconds  int
	AutoAdvanceDelay time.Duration
}

type sessionService struct {
	controller  *quiz.Controller
	publisher   events.EventPublisher
	broadcaster Broadcaster
	exporter    ImportExportService
	validator   *validator.Validator
	logger      *slog.Logger
	opLogger    *ServiceLogger
}

// NewSessionService builds the engine over bank. Extra engine options are applied last.
func NewSessionService(
	bank []models.Question,
	cfg SessionConfig,
	publisher events.EventPublisher,
	broadcaster Broadcaster,
	exporter ImportExportService,
	validator *validator.Validator,
	logger *slog.Logger,
	opts ...quiz.Option,
) (SessionService, error) {
	s := &sessionService{
		publisher:   publisher,
		broadcaster: broadcaster,
		exporter:    exporter,
		validator:   validator,
		logger:      logger,
		opLogger:    NewServiceLogger(logger, LogConfig{Service: "quiz-runner", Component: "session"}),
	}

	engineOpts := []quiz.Option{
		quiz.WithDuration(cfg.DurationSeconds),
		quiz.WithAutoAdvanceDelay(cfg.AutoAdvanceDelay),
		quiz.WithLogger(logger),
		quiz.WithObserver(s),
	}
	controller, err := quiz.NewController(bank, append(engineOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session controller: %w", err)
	}
	s.controller = controller

	return s, nil
}

// ===== SESSION OPERATIONS =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*models.SessionSnapshot, error) {
	op := s.opLogger.WithOperation(ctx, "start_session")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult("", err)
		return nil, err
	}

	err := wrapEngineError(s.controller.Start(req.PlayerName), map[string]interface{}{"player_name": req.PlayerName})
	return s.result(op, err)
}

func (s *sessionService) State(ctx context.Context) *models.SessionSnapshot {
	snapshot := s.controller.Snapshot()
	return &snapshot
}

func (s *sessionService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*AnswerResult, error) {
	op := s.opLogger.WithOperation(ctx, "submit_answer")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult(s.sessionID(), err)
		return nil, err
	}

	var questionType models.QuestionType
	if current := s.controller.Snapshot().Current; current != nil {
		questionType = current.Question.Type
	}

	answer, err := s.controller.SubmitResponse(responseFor(questionType, req))
	if err != nil {
		err = wrapEngineError(err, map[string]interface{}{"question_type": questionType})
		op.LogResult(s.sessionID(), err)
		return nil, err
	}

	op.LogResult(s.sessionID(), nil)
	return &AnswerResult{Answer: answer, Snapshot: s.controller.Snapshot()}, nil
}

func (s *sessionService) Advance(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "advance"), wrapEngineError(s.controller.Advance(), nil))
}

func (s *sessionService) Skip(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "skip"), wrapEngineError(s.controller.Skip(), nil))
}

func (s *sessionService) Finish(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "finish"), wrapEngineError(s.controller.Finish(), nil))
}

func (s *sessionService) JumpTo(ctx context.Context, req *JumpRequest) (*models.SessionSnapshot, error) {
	op := s.opLogger.WithOperation(ctx, "jump_to")

	if err := s.validator.Validate(req); err != nil {
		op.LogResult(s.sessionID(), err)
		return nil, err
	}

	err := wrapEngineError(s.controller.JumpTo(*req.Index), map[string]interface{}{"index": *req.Index})
	return s.result(op, err)
}

func (s *sessionService) PageBack(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "page_back"), wrapEngineError(s.controller.PageBack(), nil))
}

func (s *sessionService) PageForward(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "page_forward"), wrapEngineError(s.controller.PageForward(), nil))
}

func (s *sessionService) RetryAll(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "retry_all"), wrapEngineError(s.controller.RetryAll(), nil))
}

func (s *sessionService) RetryWrong(ctx context.Context) (*models.SessionSnapshot, error) {
	return s.result(s.opLogger.WithOperation(ctx, "retry_wrong"), wrapEngineError(s.controller.RetryWrong(), nil))
}

func (s *sessionService) Hint(ctx context.Context) (*models.Hint, error) {
	op := s.opLogger.WithOperation(ctx, "hint")

	hint, err := s.controller.Hint()
	if err != nil {
		err = wrapEngineError(err, nil)
		op.LogResult(s.sessionID(), err)
		return nil, err
	}

	op.LogResult(s.sessionID(), nil)
	return &hint, nil
}

func (s *sessionService) Report(ctx context.Context) (*models.SessionReport, error) {
	report, err := s.controller.Report()
	if err != nil {
		return nil, wrapEngineError(err, nil)
	}
	return &report, nil
}

func (s *sessionService) ExportReport(ctx context.Context) ([]byte, error) {
	op := s.opLogger.WithOperation(ctx, "export_report")

	report, err := s.Report(ctx)
	if err != nil {
		op.LogResult(s.sessionID(), err)
		return nil, err
	}

	data, err := s.exporter.ExportReportToExcel(ctx, *report)
	op.LogResult(report.SessionID, err)
	return data, err
}

func (s *sessionService) Bank(ctx context.Context) *BankOverview {
	bank := s.controller.Bank()
	overview := &BankOverview{
		Total:     len(bank),
		Questions: make([]models.QuestionView, len(bank)),
	}
	for i, q := range bank {
		overview.Questions[i] = q.View(false)
	}
	return overview
}

func (s *sessionService) Close() error {
	s.controller.Close()
	return s.publisher.Close()
}

// ===== ENGINE OBSERVER =====

// OnSessionEvent forwards every engine event to stream clients and publishes lifecycle events
func (s *sessionService) OnSessionEvent(e quiz.Event) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(string(e.Type), StreamPayload{
			SessionID:    e.SessionID,
			AutoAdvanced: e.AutoAdvanced,
			Reason:       e.Reason,
			Answer:       e.Answer,
			Snapshot:     e.Snapshot,
			OccurredAt:   e.OccurredAt,
		})
	}

	event := toSessionEvent(e)
	if event == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", event.Type,
			"session_id", e.SessionID,
			"error", err)
	}
}

func toSessionEvent(e quiz.Event) *events.SessionEvent {
	snap := e.Snapshot

	switch e.Type {
	case quiz.EventSessionStarted:
		ids := make([]string, len(snap.Grid))
		for i, cell := range snap.Grid {
			ids[i] = cell.QuestionID
		}
		return events.NewSessionEvent(events.EventSessionStarted, e.SessionID, events.SessionStartedData{
			PlayerName:   snap.PlayerName,
			QuestionIDs:  ids,
			DurationSecs: snap.TimeLeft,
		})
	case quiz.EventAnswerSubmitted:
		if e.Answer == nil {
			return nil
		}
		return events.NewSessionEvent(events.EventAnswerSubmitted, e.SessionID, events.AnswerSubmittedData{
			PlayerName:    snap.PlayerName,
			QuestionID:    e.Answer.QuestionID,
			QuestionIndex: snap.CurrentIndex,
			IsCorrect:     e.Answer.IsCorrect,
			Score:         snap.Score,
			AnsweredCount: snap.AnsweredCount,
		})
	case quiz.EventSessionFinished:
		return events.NewSessionEvent(events.EventSessionFinished, e.SessionID, events.SessionFinishedData{
			PlayerName:    snap.PlayerName,
			Reason:        string(e.Reason),
			CorrectCount:  snap.CorrectCount,
			AnsweredCount: snap.AnsweredCount,
			Total:         snap.Total,
			Score:         snap.Score,
			TimeLeft:      snap.TimeLeft,
		})
	default:
		return nil
	}
}

// ===== HELPERS =====

// responseFor picks the request field that matches the question type. An unknown
// type yields nil, which the engine rejects.
func responseFor(questionType models.QuestionType, req *SubmitAnswerRequest) quiz.Response {
	switch questionType {
	case models.MultipleChoice:
		return quiz.ChoiceResponse{Option: req.Option}
	case models.FillInBlank:
		return quiz.TextResponse{Text: req.Text}
	case models.Rearrange:
		return quiz.ArrangementResponse{Parts: req.Parts}
	default:
		return nil
	}
}

func (s *sessionService) sessionID() string {
	return s.controller.Snapshot().SessionID
}

func (s *sessionService) result(op *ContextualLogger, err error) (*models.SessionSnapshot, error) {
	snapshot := s.controller.Snapshot()
	op.LogResult(snapshot.SessionID, err)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
