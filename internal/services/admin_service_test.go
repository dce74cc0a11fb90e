// internal/services/admin_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
)

type AdminServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AdminService
	orders  *OrderService
	reviews *ReviewService
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupSuite() {
	s.db = setupTestDB(s.T())

	cfg := testConfig()
	storage, err := NewStorageService(cfg)
	s.Require().NoError(err)
	s.orders = NewOrderService(s.db, NewPaymentService(cfg), storage)
	s.reviews = NewReviewService(s.db)
	s.service = NewAdminService(s.db, s.orders)
}

func (s *AdminServiceSuite) SetupTest() {
	truncateAll(s.T(), s.db)
}

func (s *AdminServiceSuite) TestReconcileRepairsDriftedCounters() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	buyer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 500.00)

	_, err := s.orders.CreateOrder(buyer.ID, &CreateOrderRequest{ProjectID: project.ID})
	s.Require().NoError(err)

	_, err = s.reviews.CreateReview(buyer.ID, &CreateReviewRequest{
		ProjectID: project.ID,
		Rating:    5,
		Comment:   "Worked out of the box after purchase.",
	})
	s.Require().NoError(err)

	// Corrupt every cached counter.
	s.Require().NoError(s.db.Model(&models.Project{}).Where("id = ?", project.ID).
		UpdateColumns(map[string]interface{}{
			"downloads": 99, "rating": 1.0, "total_reviews": 42,
		}).Error)
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", seller.ID).
		UpdateColumns(map[string]interface{}{
			"total_sales": 7, "total_earnings": 12345.00,
		}).Error)

	_, err = s.service.ReconcileAggregates()
	s.Require().NoError(err)

	var reloadedProject models.Project
	s.Require().NoError(s.db.First(&reloadedProject, project.ID).Error)
	s.Equal(int64(1), reloadedProject.Downloads)
	s.Equal(5.0, reloadedProject.Rating)
	s.Equal(int64(1), reloadedProject.TotalReviews)

	var reloadedSeller models.User
	s.Require().NoError(s.db.First(&reloadedSeller, seller.ID).Error)
	s.Equal(int64(1), reloadedSeller.TotalSales)
	s.Equal(450.00, reloadedSeller.TotalEarnings)
}

func (s *AdminServiceSuite) TestReconcileZeroesOrphanedCounters() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	project := createTestProject(s.T(), s.db, seller.ID, 100.00)

	// Counters with no backing ledger rows at all.
	s.Require().NoError(s.db.Model(&models.Project{}).Where("id = ?", project.ID).
		UpdateColumns(map[string]interface{}{
			"downloads": 5, "rating": 4.5, "total_reviews": 10,
		}).Error)
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", seller.ID).
		UpdateColumns(map[string]interface{}{
			"total_sales": 3, "total_earnings": 900.00,
		}).Error)

	_, err := s.service.ReconcileAggregates()
	s.Require().NoError(err)

	var reloadedProject models.Project
	s.Require().NoError(s.db.First(&reloadedProject, project.ID).Error)
	s.Equal(int64(0), reloadedProject.Downloads)
	s.Equal(0.0, reloadedProject.Rating)
	s.Equal(int64(0), reloadedProject.TotalReviews)

	var reloadedSeller models.User
	s.Require().NoError(s.db.First(&reloadedSeller, seller.ID).Error)
	s.Equal(int64(0), reloadedSeller.TotalSales)
	s.Equal(0.0, reloadedSeller.TotalEarnings)
}

func (s *AdminServiceSuite) TestRefundWalksBackCounters() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	buyer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 200.00)

	order, err := s.orders.CreateOrder(buyer.ID, &CreateOrderRequest{ProjectID: project.ID})
	s.Require().NoError(err)

	refunded, err := s.service.RefundOrder(order.ID, "buyer request")
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusRefunded, refunded.PaymentStatus)

	var reloadedSeller models.User
	s.Require().NoError(s.db.First(&reloadedSeller, seller.ID).Error)
	s.Equal(int64(0), reloadedSeller.TotalSales)
	s.Equal(0.0, reloadedSeller.TotalEarnings)

	// A refunded order can be bought again.
	_, err = s.orders.CreateOrder(buyer.ID, &CreateOrderRequest{ProjectID: project.ID})
	s.NoError(err)
}

func (s *AdminServiceSuite) TestPlatformStats() {
	seller := createTestUser(s.T(), s.db, models.RoleSeller)
	buyer := createTestUser(s.T(), s.db, models.RoleBuyer)
	project := createTestProject(s.T(), s.db, seller.ID, 500.00)

	_, err := s.orders.CreateOrder(buyer.ID, &CreateOrderRequest{ProjectID: project.ID})
	s.Require().NoError(err)

	stats, err := s.service.GetPlatformStats()
	s.Require().NoError(err)
	s.Equal(int64(2), stats.TotalUsers)
	s.Equal(int64(1), stats.UsersByRole[string(models.RoleSeller)])
	s.Equal(int64(1), stats.TotalOrders)
	s.Equal(500.00, stats.TotalRevenue)
	s.Equal(50.00, stats.TotalCommission)
}

func (s *AdminServiceSuite) TestAdminUserUndeletable() {
	admin := createTestUser(s.T(), s.db, models.RoleAdmin)

	err := s.service.DeleteUser(admin.ID)
	s.Require().Error(err)
	s.Equal(KindForbidden, KindOf(err))
}
