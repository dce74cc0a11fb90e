// internal/models/order.go
package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// CommissionRate is the fixed fraction of each sale retained by the platform.
const CommissionRate = 0.10

// Download entitlement bounds, fixed at order creation.
const (
	MaxDownloads   = 5
	DownloadWindow = 30 * 24 * time.Hour
)

type Order struct {
	BaseModel
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`

	// SellerID is a snapshot of the project's seller at purchase time. It is
	// never updated, even if the project changes hands later.
	SellerID uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`

	// Financial fields are computed once at creation and immutable afterwards.
	// Invariant: Commission + SellerEarning == Amount.
	Amount        float64 `json:"amount" gorm:"type:decimal(10,2);not null"`
	Commission    float64 `json:"commission" gorm:"type:decimal(10,2);not null"`
	SellerEarning float64 `json:"seller_earning" gorm:"type:decimal(10,2);not null"`

	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentID     string        `json:"payment_id" gorm:"size:255"`
	PaymentMethod string        `json:"payment_method" gorm:"size:50"`

	DownloadCount  int64     `json:"download_count" gorm:"default:0"`
	MaxDownloads   int64     `json:"max_downloads" gorm:"default:5"`
	DownloadToken  string    `json:"-" gorm:"size:64"`
	DownloadExpiry time.Time `json:"download_expiry"`

	// Relationships
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// SplitCommission splits a sale amount into platform commission and seller
// earning, both rounded to currency precision. The two parts always sum back
// to the amount exactly: the commission is rounded and the earning is the
// remainder.
func SplitCommission(amount float64) (commission, sellerEarning float64) {
	commission = round2(amount * CommissionRate)
	sellerEarning = round2(amount - commission)
	return commission, sellerEarning
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
