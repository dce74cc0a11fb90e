// internal/handlers/banking.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/devmarket/devmarket-backend/internal/services"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type BankingHandler struct {
	bankingService *services.BankingService
}

func NewBankingHandler(bankingService *services.BankingService) *BankingHandler {
	return &BankingHandler{
		bankingService: bankingService,
	}
}

// GET /banking
func (h *BankingHandler) GetBankingDetails(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	details, err := h.bankingService.GetBankingDetails(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, details)
}

// PUT /banking
func (h *BankingHandler) UpsertBankingDetails(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpsertBankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	details, err := h.bankingService.UpsertBankingDetails(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, details)
}
