// internal/models/user.go
package models

import (
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name          string         `json:"name" gorm:"size:50;not null"`
	// Email uniqueness is enforced by a partial index over live rows only
	// (see database.createIndexes), so a deleted account's email can be
	// registered again.
	Email         string         `json:"email" gorm:"size:255;not null"`
	PasswordHash  string         `json:"-" gorm:"size:255;not null"`
	Role          UserRole       `json:"role" gorm:"type:varchar(10);default:'both';index"`
	Avatar        string         `json:"avatar" gorm:"size:500"`
	Bio           string         `json:"bio" gorm:"size:500"`
	College       string         `json:"college" gorm:"size:100"`
	Skills        pq.StringArray `json:"skills" gorm:"type:text[]"`
	Rating        float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalSales    int64          `json:"total_sales" gorm:"default:0"`
	TotalEarnings float64        `json:"total_earnings" gorm:"type:decimal(12,2);default:0"`
	IsVerified    bool           `json:"is_verified" gorm:"default:false"`

	// Relationships
	Projects   []Project   `json:"projects,omitempty" gorm:"foreignKey:SellerID"`
	Purchases  []Order     `json:"purchases,omitempty" gorm:"foreignKey:BuyerID"`
	Reviews    []Review    `json:"reviews,omitempty" gorm:"foreignKey:UserID"`
	PromoCodes []PromoCode `json:"promo_codes,omitempty" gorm:"foreignKey:SellerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
