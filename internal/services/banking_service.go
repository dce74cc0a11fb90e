// internal/services/banking_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type BankingService struct {
	db *gorm.DB
}

type UpsertBankingRequest struct {
	AccountHolderName string             `json:"account_holder_name" validate:"required,min=2,max=100"`
	BankName          string             `json:"bank_name" validate:"required,min=2,max=100"`
	AccountNumber     string             `json:"account_number" validate:"required,min=9,max=18,numeric"`
	IFSCCode          string             `json:"ifsc_code" validate:"required,ifsc"`
	AccountType       models.AccountType `json:"account_type" validate:"required,oneof=savings current"`
	UPIID             string             `json:"upi_id,omitempty" validate:"omitempty,max=100"`
}

func NewBankingService(db *gorm.DB) *BankingService {
	return &BankingService{db: db}
}

func (s *BankingService) GetBankingDetails(userID uuid.UUID) (*models.BankingDetails, error) {
	var details models.BankingDetails
	if err := s.db.Where("user_id = ?", userID).First(&details).Error; err != nil {
		return nil, NotFoundError("banking details not found")
	}
	return &details, nil
}

// UpsertBankingDetails creates or replaces the user's payout account. Any
// change drops the verified flag until an admin re-verifies.
func (s *BankingService) UpsertBankingDetails(userID uuid.UUID, req *UpsertBankingRequest) (*models.BankingDetails, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var details models.BankingDetails
	err := s.db.Where("user_id = ?", userID).First(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		details = models.BankingDetails{
			UserID:            userID,
			AccountHolderName: req.AccountHolderName,
			BankName:          req.BankName,
			AccountNumber:     req.AccountNumber,
			IFSCCode:          req.IFSCCode,
			AccountType:       req.AccountType,
			UPIID:             req.UPIID,
		}
		if err := s.db.Create(&details).Error; err != nil {
			return nil, fmt.Errorf("failed to create banking details: %w", err)
		}
		return &details, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load banking details: %w", err)
	}

	updates := map[string]interface{}{
		"account_holder_name": req.AccountHolderName,
		"bank_name":           req.BankName,
		"account_number":      req.AccountNumber,
		"ifsc_code":           req.IFSCCode,
		"account_type":        req.AccountType,
		"upi_id":              req.UPIID,
		"is_verified":         false,
	}
	if err := s.db.Model(&details).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update banking details: %w", err)
	}

	if err := s.db.Where("user_id = ?", userID).First(&details).Error; err != nil {
		return nil, fmt.Errorf("failed to reload banking details: %w", err)
	}

	return &details, nil
}
