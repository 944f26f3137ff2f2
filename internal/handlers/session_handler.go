package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/quiz-runner/internal/models"
	"github.com/SAP-F-2025/quiz-runner/internal/services"
	"github.com/SAP-F-2025/quiz-runner/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession handles POST /session/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting quiz session")

	var req services.StartSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	snapshot, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionService.State(c.Request.Context()))
}

// SubmitAnswer handles POST /session/answer
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	h.LogRequest(c, "Submitting answer")

	var req services.SubmitAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.sessionService.SubmitAnswer(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// JumpTo handles POST /session/jump
func (h *SessionHandler) JumpTo(c *gin.Context) {
	var req services.JumpRequest
	if !bindJSON(c, &req) {
		return
	}

	snapshot, err := h.sessionService.JumpTo(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *SessionHandler) Advance(c *gin.Context)     { h.transition(c, h.sessionService.Advance) }
func (h *SessionHandler) Skip(c *gin.Context)        { h.transition(c, h.sessionService.Skip) }
func (h *SessionHandler) Finish(c *gin.Context)      { h.transition(c, h.sessionService.Finish) }
func (h *SessionHandler) PageBack(c *gin.Context)    { h.transition(c, h.sessionService.PageBack) }
func (h *SessionHandler) PageForward(c *gin.Context) { h.transition(c, h.sessionService.PageForward) }
func (h *SessionHandler) RetryAll(c *gin.Context)    { h.transition(c, h.sessionService.RetryAll) }
func (h *SessionHandler) RetryWrong(c *gin.Context)  { h.transition(c, h.sessionService.RetryWrong) }

// GetHint handles GET /session/hint
func (h *SessionHandler) GetHint(c *gin.Context) {
	hint, err := h.sessionService.Hint(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hint)
}

// GetReport handles GET /session/report
func (h *SessionHandler) GetReport(c *gin.Context) {
	report, err := h.sessionService.Report(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportReport handles GET /session/report/export and answers with an xlsx workbook
func (h *SessionHandler) ExportReport(c *gin.Context) {
	h.LogRequest(c, "Exporting session report")

	data, err := h.sessionService.ExportReport(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sessionID := h.sessionService.State(c.Request.Context()).SessionID
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-report-%s.xlsx"`, sessionID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *SessionHandler) transition(c *gin.Context, op func(ctx context.Context) (*models.SessionSnapshot, error)) {
	snapshot, err := op(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
