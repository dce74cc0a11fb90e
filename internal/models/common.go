// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleBoth   UserRole = "both"
	RoleAdmin  UserRole = "admin"
)

// CanSell reports whether the role is allowed to list projects.
func (r UserRole) CanSell() bool {
	return r == RoleSeller || r == RoleBoth || r == RoleAdmin
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type OTPPurpose string

const (
	OTPPurposeRegister      OTPPurpose = "register"
	OTPPurposeLogin         OTPPurpose = "login"
	OTPPurposeResetPassword OTPPurpose = "reset-password"
)

type AccountType string

const (
	AccountTypeSavings AccountType = "savings"
	AccountTypeCurrent AccountType = "current"
)

type ProjectCategory string

const (
	CategoryWebDevelopment  ProjectCategory = "web-development"
	CategoryMobileApp       ProjectCategory = "mobile-app"
	CategoryMachineLearning ProjectCategory = "machine-learning"
	CategoryDataScience     ProjectCategory = "data-science"
	CategoryBlockchain      ProjectCategory = "blockchain"
	CategoryIoT             ProjectCategory = "iot"
	CategoryGameDevelopment ProjectCategory = "game-development"
	CategoryDesktopApp      ProjectCategory = "desktop-app"
	CategoryAPI             ProjectCategory = "api"
	CategoryOther           ProjectCategory = "other"
)

var projectCategories = map[ProjectCategory]bool{
	CategoryWebDevelopment:  true,
	CategoryMobileApp:       true,
	CategoryMachineLearning: true,
	CategoryDataScience:     true,
	CategoryBlockchain:      true,
	CategoryIoT:             true,
	CategoryGameDevelopment: true,
	CategoryDesktopApp:      true,
	CategoryAPI:             true,
	CategoryOther:           true,
}

func (c ProjectCategory) Valid() bool {
	return projectCategories[c]
}
