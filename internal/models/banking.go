// internal/models/banking.go
package models

import (
	"github.com/google/uuid"
)

type BankingDetails struct {
	BaseModel
	UserID            uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	AccountHolderName string      `json:"account_holder_name" gorm:"size:100;not null"`
	BankName          string      `json:"bank_name" gorm:"size:100;not null"`
	AccountNumber     string      `json:"account_number" gorm:"size:20;not null"`
	IFSCCode          string      `json:"ifsc_code" gorm:"size:11;not null"`
	AccountType       AccountType `json:"account_type" gorm:"type:varchar(10);default:'savings'"`
	UPIID             string      `json:"upi_id" gorm:"size:100"`

	// Reset to false whenever the details change; set by admin verification.
	IsVerified bool `json:"is_verified" gorm:"default:false"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
