package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-runner/internal/services"
	"github.com/SAP-F-2025/quiz-runner/internal/utils"
	"github.com/gin-gonic/gin"
)

// StreamServer upgrades a request to the live session stream
type StreamServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type HandlerManager struct {
	sessionHandler *SessionHandler
	bankHandler    *BankHandler
	stream         StreamServer
}

func NewHandlerManager(
	sessionService services.SessionService,
	bankService services.QuestionBankService,
	stream StreamServer,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(sessionService, logger),
		bankHandler:    NewBankHandler(sessionService, bankService, logger),
		stream:         stream,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		session := v1.Group("/session")
		{
			session.GET("", hm.sessionHandler.GetSession)
			session.POST("/start", hm.sessionHandler.StartSession)
			session.POST("/answer", hm.sessionHandler.SubmitAnswer)
			session.POST("/advance", hm.sessionHandler.Advance)
			session.POST("/skip", hm.sessionHandler.Skip)
			session.POST("/finish", hm.sessionHandler.Finish)
			session.POST("/jump", hm.sessionHandler.JumpTo)

			// Page navigation
			session.POST("/nav/back", hm.sessionHandler.PageBack)
			session.POST("/nav/forward", hm.sessionHandler.PageForward)

			// Retries
			session.POST("/retry/all", hm.sessionHandler.RetryAll)
			session.POST("/retry/wrong", hm.sessionHandler.RetryWrong)

			session.GET("/hint", hm.sessionHandler.GetHint)
			session.GET("/report", hm.sessionHandler.GetReport)
			session.GET("/report/export", hm.sessionHandler.ExportReport)

			session.GET("/stream", hm.Stream)
		}

		bank := v1.Group("/bank")
		{
			bank.GET("", hm.bankHandler.GetBank)
			bank.GET("/list", hm.bankHandler.ListBanks)
		}
	}
}

// Stream handles GET /session/stream
func (hm *HandlerManager) Stream(c *gin.Context) {
	hm.stream.ServeWS(c.Writer, c.Request)
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-runner",
	})
}
