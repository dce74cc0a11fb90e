// internal/services/review_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type ReviewServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ReviewService
	orders  *OrderService
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) SetupSuite() {
	s.db = setupTestDB(s.T())
	s.service = NewReviewService(s.db)

	cfg := testConfig()
	storage, err := NewStorageService(cfg)
	s.Require().NoError(err)
	s.orders = NewOrderService(s.db, NewPaymentService(cfg), storage)
}

func (s *ReviewServiceSuite) SetupTest() {
	truncateAll(s.T(), s.db)
}

func (s *ReviewServiceSuite) projectRating(projectID interface{}) (float64, int64) {
	var project models.Project
	s.Require().NoError(s.db.First(&project, projectID).Error)
	return project.Rating, project.TotalReviews
}

func (s *ReviewServiceSuite) TestRatingAggregation() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	for _, rating := range []int{5, 5, 4} {
		reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
		_, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
			ProjectID: project.ID,
			Rating:    rating,
			Comment:   "Clean code and easy setup instructions.",
		})
		s.Require().NoError(err)
	}

	rating, total := s.projectRating(project.ID)
	s.Equal(4.7, rating)
	s.Equal(int64(3), total)
}

func (s *ReviewServiceSuite) TestDeleteResetsAggregates() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	review, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    5,
		Comment:   "Clean code and easy setup instructions.",
	})
	s.Require().NoError(err)

	rating, total := s.projectRating(project.ID)
	s.Equal(5.0, rating)
	s.Equal(int64(1), total)

	s.Require().NoError(s.service.DeleteReview(review.ID, reviewer.ID))

	rating, total = s.projectRating(project.ID)
	s.Equal(0.0, rating)
	s.Equal(int64(0), total)
}

func (s *ReviewServiceSuite) TestReReviewAfterDelete() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	review, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    2,
		Comment:   "Setup docs were missing half the steps.",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.service.DeleteReview(review.ID, reviewer.ID))

	// Deleting a review frees the (user, project) slot for a fresh one.
	replacement, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    4,
		Comment:   "Much better after the docs were fixed.",
	})
	s.Require().NoError(err)
	s.NotEqual(review.ID, replacement.ID)

	rating, total := s.projectRating(project.ID)
	s.Equal(4.0, rating)
	s.Equal(int64(1), total)
}

func (s *ReviewServiceSuite) TestUpdateRecalculates() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	review, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    2,
		Comment:   "Documentation was thin when I first bought this.",
	})
	s.Require().NoError(err)

	_, err = s.service.UpdateReview(review.ID, reviewer.ID, &UpdateReviewRequest{Rating: 4})
	s.Require().NoError(err)

	rating, total := s.projectRating(project.ID)
	s.Equal(4.0, rating)
	s.Equal(int64(1), total)
}

func (s *ReviewServiceSuite) TestDuplicateReviewConflict() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	req := &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    5,
		Comment:   "Clean code and easy setup instructions.",
	}

	_, err := s.service.CreateReview(reviewer.ID, req)
	s.Require().NoError(err)

	_, err = s.service.CreateReview(reviewer.ID, req)
	s.Require().Error(err)
	s.Equal(KindConflict, KindOf(err))
}

func (s *ReviewServiceSuite) TestVerifiedPurchaseFlag() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	buyer := createTestUser(s.T(), s.db, models.RoleBuyer)
	browser := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	_, err := s.orders.CreateOrder(buyer.ID, &CreateOrderRequest{ProjectID: project.ID})
	s.Require().NoError(err)

	verified, err := s.service.CreateReview(buyer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    5,
		Comment:   "Worked out of the box after purchase.",
	})
	s.Require().NoError(err)
	s.True(verified.IsVerifiedPurchase)

	unverified, err := s.service.CreateReview(browser.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    3,
		Comment:   "Judging from the demo video this looks decent.",
	})
	s.Require().NoError(err)
	s.False(unverified.IsVerifiedPurchase)
}

func (s *ReviewServiceSuite) TestOwnershipChecks() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
	other := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	review, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    4,
		Comment:   "Solid starter template for a college project.",
	})
	s.Require().NoError(err)

	_, err = s.service.UpdateReview(review.ID, other.ID, &UpdateReviewRequest{Rating: 1})
	s.Require().Error(err)
	s.Equal(KindForbidden, KindOf(err))

	err = s.service.DeleteReview(review.ID, other.ID)
	s.Require().Error(err)
	s.Equal(KindForbidden, KindOf(err))
}

func (s *ReviewServiceSuite) TestProjectReviewsDistribution() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	for _, rating := range []int{5, 5, 3} {
		reviewer := createTestUser(s.T(), s.db, models.RoleBuyer)
		_, err := s.service.CreateReview(reviewer.ID, &CreateReviewRequest{
			ProjectID: project.ID,
			Rating:    rating,
			Comment:   "Clean code and easy setup instructions.",
		})
		s.Require().NoError(err)
	}

	result, err := s.service.GetProjectReviews(project.ID, utils.PaginationParams{
		Page: 1, Limit: 10, Sort: "created_at", Order: "desc",
	})
	s.Require().NoError(err)
	s.Equal(int64(3), result.Total)
	s.Equal(int64(2), result.Distribution[5])
	s.Equal(int64(1), result.Distribution[3])
	s.Equal(int64(0), result.Distribution[1])
}
