// internal/models/promo_code.go
package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromoCode struct {
	BaseModel
	// Code is unique across live rows only (partial index in
	// database.createIndexes); deleting a code releases the string.
	Code          string       `json:"code" gorm:"size:20;not null;index"`
	DiscountType  DiscountType `json:"discount_type" gorm:"type:varchar(10);not null"`
	DiscountValue float64      `json:"discount_value" gorm:"type:decimal(10,2);not null"`
	SellerID      uuid.UUID    `json:"seller_id" gorm:"type:uuid;not null;index"`

	// ProjectID nil means the code applies to all of the seller's projects.
	ProjectID *uuid.UUID `json:"project_id" gorm:"type:uuid;index"`

	UsageLimit int64      `json:"usage_limit" gorm:"default:0"` // 0 = unlimited
	UsedCount  int64      `json:"used_count" gorm:"default:0"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`

	// Relationships
	Seller  User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// Codes are stored case-normalized so lookups can be exact-match.
func (p *PromoCode) BeforeSave(tx *gorm.DB) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	return nil
}

// ComputeDiscount computes the discount a code grants over the subtotal of
// the applicable cart items only. Percentage discounts round to currency
// precision; fixed discounts are capped at the subtotal.
func ComputeDiscount(discountType DiscountType, value, applicableSubtotal float64) float64 {
	switch discountType {
	case DiscountTypePercentage:
		return math.Round(applicableSubtotal*value) / 100
	case DiscountTypeFixed:
		return math.Min(value, applicableSubtotal)
	default:
		return 0
	}
}
