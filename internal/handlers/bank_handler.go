package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/quiz-runner/internal/services"
	"github.com/SAP-F-2025/quiz-runner/internal/utils"
	"github.com/gin-gonic/gin"
)

type BankHandler struct {
	BaseHandler
	sessionService services.SessionService
	bankService    services.QuestionBankService
}

func NewBankHandler(sessionService services.SessionService, bankService services.QuestionBankService, logger utils.Logger) *BankHandler {
	return &BankHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		bankService:    bankService,
	}
}

// GetBank handles GET /bank and lists the active bank without answers
func (h *BankHandler) GetBank(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessionService.Bank(c.Request.Context()))
}

// ListBanks handles GET /bank/list
func (h *BankHandler) ListBanks(c *gin.Context) {
	banks, err := h.bankService.ListBanks(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"banks": banks,
		"total": len(banks),
	})
}
