// internal/services/review_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	ProjectID uuid.UUID `json:"project_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Title     string    `json:"title,omitempty" validate:"omitempty,max=100"`
	Comment   string    `json:"comment" validate:"required,min=10,max=1000"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title   string `json:"title,omitempty" validate:"omitempty,max=100"`
	Comment string `json:"comment,omitempty" validate:"omitempty,min=10,max=1000"`
}

// RatingDistribution is the per-star review count for a project.
type RatingDistribution map[int]int64

type ProjectReviewsResult struct {
	utils.PaginationResult
	Distribution RatingDistribution `json:"distribution"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview adds a review and refreshes the project's cached aggregates.
// One review per (user, project); the verified-purchase flag is decided here
// and never re-evaluated.
func (s *ReviewService) CreateReview(userID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		return nil, NotFoundError("project not found")
	}

	var existing models.Review
	if err := s.db.Where("user_id = ? AND project_id = ?", userID, req.ProjectID).
		First(&existing).Error; err == nil {
		return nil, ConflictError("you have already reviewed this project")
	}

	var completedOrders int64
	err := s.db.Model(&models.Order{}).
		Where("buyer_id = ? AND project_id = ? AND payment_status = ?",
			userID, req.ProjectID, models.PaymentStatusCompleted).
		Count(&completedOrders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}

	review := &models.Review{
		UserID:             userID,
		ProjectID:          req.ProjectID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		IsVerifiedPurchase: completedOrders > 0,
	}

	if err := s.db.Create(review).Error; err != nil {
		// The partial unique index on live (user, project) pairs backs the
		// read guard above against concurrent submissions.
		if isUniqueViolation(err) {
			return nil, ConflictError("you have already reviewed this project")
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.recalculateProjectRating(req.ProjectID); err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(review, review.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload review: %w", err)
	}

	return review, nil
}

func (s *ReviewService) UpdateReview(reviewID, userID uuid.UUID, req *UpdateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, NotFoundError("review not found")
	}

	if review.UserID != userID {
		return nil, ForbiddenError("you can only update your own reviews")
	}

	updates := map[string]interface{}{}
	if req.Rating != 0 {
		updates["rating"] = req.Rating
	}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Comment != "" {
		updates["comment"] = req.Comment
	}

	if len(updates) > 0 {
		if err := s.db.Model(&review).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update review: %w", err)
		}
	}

	if err := s.recalculateProjectRating(review.ProjectID); err != nil {
		return nil, err
	}

	if err := s.db.First(&review, reviewID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload review: %w", err)
	}

	return &review, nil
}

func (s *ReviewService) DeleteReview(reviewID, userID uuid.UUID) error {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		return NotFoundError("review not found")
	}

	if review.UserID != userID {
		return ForbiddenError("you can only delete your own reviews")
	}

	if err := s.db.Delete(&review).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return s.recalculateProjectRating(review.ProjectID)
}

// GetProjectReviews lists a project's reviews with the per-star breakdown.
func (s *ReviewService) GetProjectReviews(projectID uuid.UUID, params utils.PaginationParams) (*ProjectReviewsResult, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, NotFoundError("project not found")
	}

	query := s.db.Model(&models.Review{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "rating"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Preload("User").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	distribution := RatingDistribution{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	rows, err := s.db.Model(&models.Review{}).
		Where("project_id = ?", projectID).
		Select("rating, COUNT(*)").Group("rating").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rating distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rating distribution: %w", err)
		}
		distribution[rating] = count
	}

	return &ProjectReviewsResult{
		PaginationResult: utils.CreatePaginationResult(reviews, total, params),
		Distribution:     distribution,
	}, nil
}

func (s *ReviewService) GetMyReviews(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Review{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "rating"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Preload("Project").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	return &result, nil
}

// recalculateProjectRating is the only writer of Project.Rating and
// Project.TotalReviews. It recomputes both from scratch after every review
// mutation; with no reviews left, both reset to zero.
func (s *ReviewService) recalculateProjectRating(projectID uuid.UUID) error {
	var avg float64
	var count int64

	row := s.db.Model(&models.Review{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(AVG(rating), 0), COUNT(*)").Row()
	if err := row.Scan(&avg, &count); err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	err := s.db.Model(&models.Project{}).Where("id = ?", projectID).
		UpdateColumns(map[string]interface{}{
			"rating":        models.RoundRating(avg),
			"total_reviews": count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update project rating: %w", err)
	}

	return nil
}
