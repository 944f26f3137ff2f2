package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/events"
	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz/quiztest"
	"github.com/SAP-F-2025/quiz-runner/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	mu    sync.Mutex
	types []string
}

func (b *recordingBroadcaster) Broadcast(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, msgType)
}

func (b *recordingBroadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.types...)
}

type sessionFixture struct {
	svc         SessionService
	sched       *quiztest.ManualScheduler
	publisher   *events.MockEventPublisher
	broadcaster *recordingBroadcaster
}

func mixedBank() []models.Question {
	return []models.Question{
		{ID: "1", Type: models.MultipleChoice, QuestionText: "She ___ to school.", Options: []string{"go", "goes", "going"}, CorrectAnswer: "goes"},
		{ID: "2", Type: models.FillInBlank, QuestionText: "I ___ home yesterday.", CorrectAnswer: "went"},
		{ID: "3", Type: models.Rearrange, QuestionText: "Order the words", RearrangeParts: []string{"am", "I", "happy"}, CorrectAnswer: "I am happy", Explanation: "Subject first"},
	}
}

func newSessionFixture(t *testing.T, duration int) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		sched:       quiztest.NewManualScheduler(),
		publisher:   events.NewMockEventPublisher(testLogger()),
		broadcaster: &recordingBroadcaster{},
	}
	v := validator.New()

	svc, err := NewSessionService(
		mixedBank(),
		SessionConfig{DurationSeconds: duration, AutoAdvanceDelay: time.Second},
		f.publisher,
		f.broadcaster,
		NewImportExportService(testLogger(), v),
		v,
		testLogger(),
		quiz.WithScheduler(f.sched),
		quiz.WithIDGenerator(func() string { return "session-1" }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	f.svc = svc
	return f
}

func (f *sessionFixture) start(t *testing.T) {
	t.Helper()
	_, err := f.svc.Start(context.Background(), &StartSessionRequest{PlayerName: "  Ann "})
	require.NoError(t, err)
}

func publishedTypes(p *events.MockEventPublisher) []events.EventType {
	var out []events.EventType
	for _, e := range p.GetPublishedEvents() {
		out = append(out, e.Type)
	}
	return out
}

func ruleOf(t *testing.T, err error) string {
	t.Helper()
	var bre *BusinessRuleError
	require.True(t, errors.As(err, &bre), "expected business rule error, got %v", err)
	return bre.Rule
}

func TestSessionService_StartValidatesPlayerName(t *testing.T) {
	f := newSessionFixture(t, 60)

	_, err := f.svc.Start(context.Background(), &StartSessionRequest{PlayerName: "   "})

	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, models.StateStart, f.svc.State(context.Background()).State)
	assert.Empty(t, f.publisher.GetPublishedEvents())
}

func TestSessionService_Start(t *testing.T) {
	f := newSessionFixture(t, 60)

	snapshot, err := f.svc.Start(context.Background(), &StartSessionRequest{PlayerName: "  Ann "})
	require.NoError(t, err)

	assert.Equal(t, models.StatePlaying, snapshot.State)
	assert.Equal(t, "Ann", snapshot.PlayerName)
	assert.Equal(t, "session-1", snapshot.SessionID)
	assert.Equal(t, 60, snapshot.TimeLeft)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionStarted, published[0].Type)
	data := published[0].Data.(events.SessionStartedData)
	assert.Equal(t, []string{"1", "2", "3"}, data.QuestionIDs)
	assert.Equal(t, 60, data.DurationSecs)

	assert.Equal(t, []string{string(quiz.EventSessionStarted)}, f.broadcaster.Types())
}

func TestSessionService_AnswersEveryQuestionType(t *testing.T) {
	f := newSessionFixture(t, 60)
	f.start(t)
	ctx := context.Background()

	result, err := f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "goes"})
	require.NoError(t, err)
	assert.True(t, result.Answer.IsCorrect)
	assert.Equal(t, "goes", result.Snapshot.Current.Question.CorrectAnswer)

	assert.Equal(t, 1, f.sched.FireDelayed())
	assert.Equal(t, 1, f.svc.State(ctx).CurrentIndex)

	result, err = f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Text: "  Went! "})
	require.NoError(t, err)
	assert.True(t, result.Answer.IsCorrect)
	f.sched.FireDelayed()

	result, err = f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Parts: []string{"I", "happy", "am"}})
	require.NoError(t, err)
	assert.False(t, result.Answer.IsCorrect)
	assert.Equal(t, "I happy am", result.Answer.UserResponse)
	assert.Equal(t, 0, f.sched.Pending(), "no auto-advance after a wrong answer")

	assert.Equal(t, 20, result.Snapshot.Score)
	assert.Equal(t, 3, result.Snapshot.AnsweredCount)

	answered := 0
	for _, e := range f.publisher.GetPublishedEvents() {
		if e.Type == events.EventAnswerSubmitted {
			answered++
		}
	}
	assert.Equal(t, 3, answered)
}

func TestSessionService_SubmitRejections(t *testing.T) {
	f := newSessionFixture(t, 60)
	ctx := context.Background()

	_, err := f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "goes"})
	assert.Equal(t, RuleInvalidOperation, ruleOf(t, err))
	assert.True(t, IsConflict(err))

	f.start(t)

	_, err = f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Text: "goes"})
	assert.Equal(t, RuleEmptyResponse, ruleOf(t, err))
	assert.ErrorIs(t, err, quiz.ErrEmptyResponse)

	_, err = f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "gone"})
	assert.Equal(t, RuleUnknownOption, ruleOf(t, err))

	assert.Equal(t, 0, f.svc.State(ctx).AnsweredCount)
}

func TestSessionService_Navigation(t *testing.T) {
	f := newSessionFixture(t, 60)
	f.start(t)
	ctx := context.Background()

	_, err := f.svc.JumpTo(ctx, &JumpRequest{})
	assert.True(t, IsValidation(err))

	index := 5
	_, err = f.svc.JumpTo(ctx, &JumpRequest{Index: &index})
	assert.Equal(t, RuleOutOfRange, ruleOf(t, err))

	index = 2
	snapshot, err := f.svc.JumpTo(ctx, &JumpRequest{Index: &index})
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.CurrentIndex)
	assert.True(t, snapshot.Current.IsLast)

	snapshot, err = f.svc.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.CurrentIndex, "advance on the last question is a no-op")

	index = 0
	_, err = f.svc.JumpTo(ctx, &JumpRequest{Index: &index})
	require.NoError(t, err)
	snapshot, err = f.svc.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.CurrentIndex)

	_, err = f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Text: "go"})
	require.NoError(t, err)
	_, err = f.svc.Skip(ctx)
	assert.Equal(t, RuleAlreadyAnswered, ruleOf(t, err))

	snapshot, err = f.svc.PageForward(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.Nav.Start)
	assert.False(t, snapshot.Nav.CanPageForward)
}

func TestSessionService_HintIsStable(t *testing.T) {
	f := newSessionFixture(t, 60)
	f.start(t)
	ctx := context.Background()

	first, err := f.svc.Hint(ctx)
	require.NoError(t, err)
	second, err := f.svc.Hint(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.HintEliminatedOption, first.Kind)
	assert.Equal(t, first, second)
	assert.NotEqual(t, "goes", first.Value)
}

func TestSessionService_FinishReportAndRetry(t *testing.T) {
	f := newSessionFixture(t, 60)
	f.start(t)
	ctx := context.Background()

	_, err := f.svc.RetryWrong(ctx)
	assert.Equal(t, RuleInvalidOperation, ruleOf(t, err))

	_, err = f.svc.SubmitAnswer(ctx, &SubmitAnswerRequest{Option: "go"})
	require.NoError(t, err)

	snapshot, err := f.svc.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StateFinished, snapshot.State)
	assert.Equal(t, models.FinishSubmitted, snapshot.FinishReason)

	report, err := f.svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", report.PlayerName)
	assert.Equal(t, 0, report.Percent)
	assert.True(t, report.HasWrong)
	assert.Equal(t, 3, report.Total)

	data, err := f.svc.ExportReport(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	assert.Equal(t, []events.EventType{
		events.EventSessionStarted,
		events.EventAnswerSubmitted,
		events.EventSessionFinished,
	}, publishedTypes(f.publisher))
	finished := f.publisher.GetPublishedEvents()[2].Data.(events.SessionFinishedData)
	assert.Equal(t, "submitted", finished.Reason)
	assert.Equal(t, 1, finished.AnsweredCount)

	snapshot, err = f.svc.RetryWrong(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatePlaying, snapshot.State)
	assert.Equal(t, 1, snapshot.Total)
	assert.Equal(t, "1", snapshot.Current.Question.ID)
}

func TestSessionService_RetryWrongWithoutMistakes(t *testing.T) {
	f := newSessionFixture(t, 60)
	f.start(t)
	ctx := context.Background()

	_, err := f.svc.Finish(ctx)
	require.NoError(t, err)

	_, err = f.svc.RetryWrong(ctx)
	assert.Equal(t, RuleEmptyQuestionSet, ruleOf(t, err))
	assert.Equal(t, models.StateFinished, f.svc.State(ctx).State)

	snapshot, err := f.svc.RetryAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Total)
}

func TestSessionService_TimeoutFinishesOnce(t *testing.T) {
	f := newSessionFixture(t, 2)
	f.start(t)

	f.sched.Tick(5)

	state := f.svc.State(context.Background())
	assert.Equal(t, models.StateFinished, state.State)
	assert.Equal(t, models.FinishTimeout, state.FinishReason)
	assert.Equal(t, 0, state.TimeLeft)

	finished := 0
	for _, typ := range publishedTypes(f.publisher) {
		if typ == events.EventSessionFinished {
			finished++
		}
	}
	assert.Equal(t, 1, finished)
	assert.Contains(t, f.broadcaster.Types(), string(quiz.EventTimerTick))
}

func TestSessionService_BankHidesAnswers(t *testing.T) {
	f := newSessionFixture(t, 60)

	overview := f.svc.Bank(context.Background())

	assert.Equal(t, 3, overview.Total)
	for _, q := range overview.Questions {
		assert.Empty(t, q.CorrectAnswer)
		assert.Empty(t, q.Explanation)
	}
}

func TestSessionService_ReportBeforeStart(t *testing.T) {
	f := newSessionFixture(t, 60)

	_, err := f.svc.Report(context.Background())
	assert.Equal(t, RuleInvalidOperation, ruleOf(t, err))
}
