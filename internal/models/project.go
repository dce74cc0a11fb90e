// internal/models/project.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Project struct {
	BaseModel
	Title            string          `json:"title" gorm:"size:100;not null"`
	Description      string          `json:"description" gorm:"type:text;not null"`
	ShortDescription string          `json:"short_description" gorm:"size:200"`
	Price            float64         `json:"price" gorm:"type:decimal(10,2);not null"`
	Category         ProjectCategory `json:"category" gorm:"type:varchar(30);not null;index"`
	TechStack        pq.StringArray  `json:"tech_stack" gorm:"type:text[]"`
	Images           pq.StringArray  `json:"images" gorm:"type:text[]"`
	Thumbnail        string          `json:"thumbnail" gorm:"size:500"`
	DemoURL          string          `json:"demo_url" gorm:"size:500"`
	GithubURL        string          `json:"github_url" gorm:"size:500"`
	VideoURL         string          `json:"video_url" gorm:"size:500"`
	DownloadFile     string          `json:"download_file" gorm:"size:500"`
	Features         pq.StringArray  `json:"features" gorm:"type:text[]"`
	Requirements     pq.StringArray  `json:"requirements" gorm:"type:text[]"`
	SellerID         uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null;index"`
	Views            int64           `json:"views" gorm:"default:0"`
	Downloads        int64           `json:"downloads" gorm:"default:0"`

	// Rating and TotalReviews are derived aggregates. They are only ever
	// written by the review recalculation routine, never by clients.
	Rating       float64 `json:"rating" gorm:"type:decimal(3,1);default:0"`
	TotalReviews int64   `json:"total_reviews" gorm:"default:0"`

	IsActive   bool `json:"is_active" gorm:"default:true;index"`
	IsFeatured bool `json:"is_featured" gorm:"default:false"`

	// Relationships
	Seller  User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Orders  []Order  `json:"orders,omitempty" gorm:"foreignKey:ProjectID"`
	Reviews []Review `json:"reviews,omitempty" gorm:"foreignKey:ProjectID"`
}
