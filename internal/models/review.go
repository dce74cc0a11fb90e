// internal/models/review.go
package models

import (
	"math"

	"github.com/google/uuid"
)

type Review struct {
	BaseModel
	// One review per (user, project) is a partial unique index over live
	// rows (see database.createIndexes); a deleted review frees the slot.
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID `json:"project_id" gorm:"type:uuid;not null;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Title     string    `json:"title" gorm:"size:100"`
	Comment   string    `json:"comment" gorm:"size:1000;not null"`

	// Set once at creation from the existence of a completed order for the
	// same (user, project); not re-evaluated afterwards.
	IsVerifiedPurchase bool `json:"is_verified_purchase" gorm:"default:false"`

	// Relationships
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Project Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}

// RoundRating rounds an average rating to one decimal place, the precision
// stored on Project.Rating.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
