package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-runner/internal/events"
	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz"
	"github.com/SAP-F-2025/quiz-runner/internal/quiz/quiztest"
	"github.com/SAP-F-2025/quiz-runner/internal/services"
	"github.com/SAP-F-2025/quiz-runner/internal/utils"
	"github.com/SAP-F-2025/quiz-runner/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankJSON = `[
  {"id": "1", "type": "multiple_choice", "question_text": "She ___ to school.", "options": ["go", "goes", "going"], "correct_answer": "goes"},
  {"id": "2", "type": "fill_in_blank", "question_text": "I ___ home yesterday.", "correct_answer": "went"},
  {"id": "3", "type": "rearrange", "question_text": "Order the words", "rearrange_parts": ["am", "I", "happy"], "correct_answer": "I am happy"}
]`

type noopStream struct{}

func (noopStream) ServeWS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, interface{}) {}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	importer := services.NewImportExportService(slogger, v)

	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(bankJSON), 0o644))
	bankService := services.NewQuestionBankService(services.BankSource{File: path, BankID: "default"}, importer, v, slogger)

	bank, err := bankService.LoadBank(t.Context())
	require.NoError(t, err)

	sessionService, err := services.NewSessionService(
		bank,
		services.SessionConfig{DurationSeconds: 60, AutoAdvanceDelay: time.Second},
		events.NewMockEventPublisher(slogger),
		noopBroadcaster{},
		importer,
		v,
		slogger,
		quiz.WithScheduler(quiztest.NewManualScheduler()),
		quiz.WithIDGenerator(func() string { return "session-1" }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { sessionService.Close() })

	router := gin.New()
	NewHandlerManager(sessionService, bankService, noopStream{}, utils.NewSlogLogger(slogger)).SetupRoutes(router)
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	w := perform(newTestRouter(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"quiz-runner"}`, w.Body.String())
}

func TestStartSession(t *testing.T) {
	router := newTestRouter(t)

	w := perform(router, http.MethodPost, "/api/v1/session/start", `{"player_name":"Ann"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var snapshot models.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, "session-1", snapshot.SessionID)
	assert.Equal(t, models.StatePlaying, snapshot.State)
	assert.Equal(t, 3, snapshot.Total)

	w = perform(router, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"playing"`)
}

func TestStartSession_InvalidPayload(t *testing.T) {
	w := perform(newTestRouter(t), http.MethodPost, "/api/v1/session/start", `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_payload", decodeError(t, w).Code)
}

func TestStartSession_BlankName(t *testing.T) {
	w := perform(newTestRouter(t), http.MethodPost, "/api/v1/session/start", `{"player_name":"   "}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", decodeError(t, w).Code)
}

func TestStartSession_AlreadyPlaying(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, perform(router, http.MethodPost, "/api/v1/session/start", `{"player_name":"Ann"}`).Code)

	w := perform(router, http.MethodPost, "/api/v1/session/start", `{"player_name":"Bob"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.RuleInvalidOperation, decodeError(t, w).Code)
}

func TestJumpTo_OutOfRange(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, perform(router, http.MethodPost, "/api/v1/session/start", `{"player_name":"Ann"}`).Code)

	w := perform(router, http.MethodPost, "/api/v1/session/jump", `{"index":99}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, services.RuleOutOfRange, decodeError(t, w).Code)

	w = perform(router, http.MethodPost, "/api/v1/session/jump", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/v1/session/jump", `{"index":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current_index":2`)
}

func TestRetryWrong_BeforeFinish(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, perform(router, http.MethodPost, "/api/v1/session/start", `{"player_name":"Ann"}`).Code)

	w := perform(router, http.MethodPost, "/api/v1/session/retry/wrong", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFinishAndExportReport(t *testing.T) {
	router := newTestRouter(t)
	require.Equal(t, http.StatusCreated, perform(router, http.MethodPost, "/api/v1/session/start", `{"player_name":"Ann"}`).Code)

	w := perform(router, http.MethodPost, "/api/v1/session/finish", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"finished"`)

	w = perform(router, http.MethodGet, "/api/v1/session/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report models.SessionReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Ann", report.PlayerName)
	assert.Len(t, report.Items, 3)

	w = perform(router, http.MethodGet, "/api/v1/session/report/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="quiz-report-session-1.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestGetBank_HidesAnswers(t *testing.T) {
	w := perform(newTestRouter(t), http.MethodGet, "/api/v1/bank", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
	assert.NotContains(t, w.Body.String(), "correct_answer")
}

func TestListBanks(t *testing.T) {
	w := perform(newTestRouter(t), http.MethodGet, "/api/v1/bank/list", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"banks":[{"bank_id":"default","question_count":3}],"total":1}`, w.Body.String())
}
