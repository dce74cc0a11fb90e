// internal/handlers/payment.go
package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devmarket/devmarket-backend/internal/services"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

type createIntentRequest struct {
	Amount    float64   `json:"amount" binding:"required,gt=0"`
	ProjectID uuid.UUID `json:"project_id" binding:"required"`
}

// POST /payments/intent
// Issues the client secret the checkout UI confirms before POST /orders.
// Without a configured provider a synthetic payment id is handed back so the
// flow stays usable in development.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if !h.paymentService.Enabled() {
		utils.SuccessResponse(c, services.PaymentIntentResponse{
			PaymentID: fmt.Sprintf("pay_%s", uuid.New()),
			Status:    "succeeded",
		})
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(req.Amount, map[string]string{
		"user_id":    userID.String(),
		"project_id": req.ProjectID.String(),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, intent)
}
