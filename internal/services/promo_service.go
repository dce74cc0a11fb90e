// internal/services/promo_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type PromoService struct {
	db *gorm.DB
}

type CreatePromoCodeRequest struct {
	Code          string              `json:"code" validate:"required,promo_code"`
	DiscountType  models.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue float64             `json:"discount_value" validate:"required,gt=0"`
	ProjectID     *uuid.UUID          `json:"project_id,omitempty"`
	UsageLimit    int64               `json:"usage_limit,omitempty" validate:"omitempty,gte=0"`
	ExpiresAt     *time.Time          `json:"expires_at,omitempty"`
}

type ValidatePromoCodeRequest struct {
	Code       string      `json:"code" validate:"required"`
	ProjectIDs []uuid.UUID `json:"project_ids" validate:"required,min=1"`
}

// PromoValidationResult carries what the checkout needs to price the cart.
// The engine never applies the discount itself.
type PromoValidationResult struct {
	Code                 string              `json:"code"`
	DiscountType         models.DiscountType `json:"discount_type"`
	DiscountValue        float64             `json:"discount_value"`
	ApplicableProjectIDs []uuid.UUID         `json:"applicable_project_ids"`
}

func NewPromoService(db *gorm.DB) *PromoService {
	return &PromoService{db: db}
}

func (s *PromoService) CreatePromoCode(sellerID uuid.UUID, req *CreatePromoCodeRequest) (*models.PromoCode, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, ValidationError("percentage discount cannot exceed 100")
	}

	var seller models.User
	if err := s.db.First(&seller, sellerID).Error; err != nil {
		return nil, NotFoundError("seller not found")
	}
	if !seller.Role.CanSell() {
		return nil, ForbiddenError("only sellers can create promo codes")
	}

	// A project-bound code must point at the seller's own listing.
	if req.ProjectID != nil {
		var project models.Project
		if err := s.db.First(&project, *req.ProjectID).Error; err != nil {
			return nil, NotFoundError("project not found")
		}
		if project.SellerID != sellerID {
			return nil, ForbiddenError("you can only create codes for your own projects")
		}
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing models.PromoCode
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, ConflictError("promo code already exists")
	}

	promo := &models.PromoCode{
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		SellerID:      sellerID,
		ProjectID:     req.ProjectID,
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      true,
	}

	if err := s.db.Create(promo).Error; err != nil {
		// Live codes are unique via a partial index; this closes the race
		// the read guard above leaves open.
		if isUniqueViolation(err) {
			return nil, ConflictError("promo code already exists")
		}
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	return promo, nil
}

func (s *PromoService) DeletePromoCode(promoID, sellerID uuid.UUID) error {
	var promo models.PromoCode
	if err := s.db.First(&promo, promoID).Error; err != nil {
		return NotFoundError("promo code not found")
	}

	if promo.SellerID != sellerID {
		return ForbiddenError("you can only delete your own promo codes")
	}

	if err := s.db.Delete(&promo).Error; err != nil {
		return fmt.Errorf("failed to delete promo code: %w", err)
	}

	return nil
}

func (s *PromoService) GetMyPromoCodes(sellerID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.PromoCode{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count promo codes: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "used_count", "expires_at"})
	query = utils.ApplyPagination(query, params)

	var promos []models.PromoCode
	if err := query.Preload("Project").Find(&promos).Error; err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}

	result := utils.CreatePaginationResult(promos, total, params)
	return &result, nil
}

// ValidatePromoCode checks a code against the cart and reports which items it
// covers. A successful validation consumes one use, whether or not the
// checkout that follows completes.
func (s *PromoService) ValidatePromoCode(req *ValidatePromoCodeRequest) (*PromoValidationResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var promo models.PromoCode
	if err := s.db.Where("code = ? AND is_active = ?", code, true).First(&promo).Error; err != nil {
		return nil, NotFoundError("promo code not found")
	}

	if promo.ExpiresAt != nil && time.Now().After(*promo.ExpiresAt) {
		return nil, ExpiredError("promo code has expired")
	}

	if promo.UsageLimit > 0 && promo.UsedCount >= promo.UsageLimit {
		return nil, ConflictError("promo code usage limit reached")
	}

	applicable, err := s.resolveApplicable(&promo, req.ProjectIDs)
	if err != nil {
		return nil, err
	}
	if len(applicable) == 0 {
		return nil, ValidationError("promo code is not applicable to these projects")
	}

	if err := s.db.Model(&promo).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to record promo use: %w", err)
	}

	return &PromoValidationResult{
		Code:                 promo.Code,
		DiscountType:         promo.DiscountType,
		DiscountValue:        promo.DiscountValue,
		ApplicableProjectIDs: applicable,
	}, nil
}

// resolveApplicable narrows the cart down to the items the code covers: the
// bound project when one is set, otherwise every cart item sold by the code's
// seller.
func (s *PromoService) resolveApplicable(promo *models.PromoCode, cartProjectIDs []uuid.UUID) ([]uuid.UUID, error) {
	if promo.ProjectID != nil {
		for _, id := range cartProjectIDs {
			if id == *promo.ProjectID {
				return []uuid.UUID{id}, nil
			}
		}
		return nil, nil
	}

	var ids []uuid.UUID
	err := s.db.Model(&models.Project{}).
		Where("id IN ? AND seller_id = ?", cartProjectIDs, promo.SellerID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve applicable projects: %w", err)
	}

	return ids, nil
}
