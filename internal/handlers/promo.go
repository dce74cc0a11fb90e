// internal/handlers/promo.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/devmarket/devmarket-backend/internal/services"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type PromoHandler struct {
	promoService *services.PromoService
}

func NewPromoHandler(promoService *services.PromoService) *PromoHandler {
	return &PromoHandler{
		promoService: promoService,
	}
}

// POST /promo-codes
func (h *PromoHandler) CreatePromoCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	promo, err := h.promoService.CreatePromoCode(userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, promo)
}

// DELETE /promo-codes/:id
func (h *PromoHandler) DeletePromoCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	promoID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.promoService.DeletePromoCode(promoID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Promo code deleted",
	})
}

// GET /promo-codes/mine
func (h *PromoHandler) GetMyPromoCodes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	result, err := h.promoService.GetMyPromoCodes(userID, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /promo-codes/validate
func (h *PromoHandler) ValidatePromoCode(c *gin.Context) {
	var req services.ValidatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	result, err := h.promoService.ValidatePromoCode(&req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}
