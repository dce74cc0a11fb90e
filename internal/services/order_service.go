// internal/services/order_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

// downloadURLTTL bounds the life of a presigned archive link, not the
// buyer's 30-day entitlement window.
const downloadURLTTL = 15 * time.Minute

type OrderService struct {
	db      *gorm.DB
	payment *PaymentService
	storage *StorageService
}

type CreateOrderRequest struct {
	ProjectID     uuid.UUID `json:"project_id" validate:"required"`
	PaymentID     string    `json:"payment_id,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty" validate:"omitempty,oneof=card upi netbanking wallet"`
}

type DownloadResponse struct {
	DownloadURL        string `json:"download_url"`
	DownloadsRemaining int64  `json:"downloads_remaining"`
	ExpiresAt          string `json:"expires_at"`
}

type OrderStats struct {
	TotalPurchases int64   `json:"total_purchases"`
	TotalSpent     float64 `json:"total_spent"`
	TotalSales     int64   `json:"total_sales"`
	TotalEarnings  float64 `json:"total_earnings"`
	PendingOrders  int64   `json:"pending_orders"`
}

func NewOrderService(db *gorm.DB, payment *PaymentService, storage *StorageService) *OrderService {
	return &OrderService{
		db:      db,
		payment: payment,
		storage: storage,
	}
}

// CreateOrder records a completed purchase. The amount is a snapshot of the
// project's price at this moment; later price edits never touch it. The order
// row is the authoritative ledger — the project and seller counters bumped
// afterwards are rebuildable caches, so the three writes are deliberately not
// one transaction.
func (s *OrderService) CreateOrder(buyerID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		return nil, NotFoundError("project not found")
	}
	if !project.IsActive {
		return nil, NotFoundError("project not found")
	}

	if project.SellerID == buyerID {
		return nil, ForbiddenError("you cannot purchase your own project")
	}

	var existing models.Order
	err := s.db.Where("buyer_id = ? AND project_id = ? AND payment_status = ?",
		buyerID, req.ProjectID, models.PaymentStatusCompleted).First(&existing).Error
	if err == nil {
		return nil, ConflictError("you have already purchased this project")
	}

	commission, sellerEarning := models.SplitCommission(project.Price)

	token, err := utils.GenerateDownloadToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate download token: %w", err)
	}

	paymentID := req.PaymentID
	if paymentID == "" {
		paymentID = "pay_" + uuid.New().String()
	}

	order := &models.Order{
		BuyerID:        buyerID,
		ProjectID:      project.ID,
		SellerID:       project.SellerID,
		Amount:         project.Price,
		Commission:     commission,
		SellerEarning:  sellerEarning,
		PaymentStatus:  models.PaymentStatusCompleted,
		PaymentID:      paymentID,
		PaymentMethod:  req.PaymentMethod,
		MaxDownloads:   models.MaxDownloads,
		DownloadToken:  token,
		DownloadExpiry: time.Now().Add(models.DownloadWindow),
	}

	if err := s.db.Create(order).Error; err != nil {
		// The partial unique index on (buyer, project) completed orders backs
		// the read guard above against concurrent checkouts.
		if isUniqueViolation(err) {
			return nil, ConflictError("you have already purchased this project")
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.db.Model(&models.Project{}).Where("id = ?", project.ID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error; err != nil {
		logrus.WithError(err).WithField("project_id", project.ID).
			Warn("Failed to bump project download counter")
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", project.SellerID).
		UpdateColumns(map[string]interface{}{
			"total_sales":    gorm.Expr("total_sales + 1"),
			"total_earnings": gorm.Expr("total_earnings + ?", sellerEarning),
		}).Error; err != nil {
		logrus.WithError(err).WithField("seller_id", project.SellerID).
			Warn("Failed to bump seller earnings counters")
	}

	if err := s.db.Preload("Project").Preload("Seller").First(order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	return order, nil
}

// Download checks the buyer's entitlement and hands out a short-lived URL for
// the project archive. Expiry wins over remaining count.
func (s *OrderService) Download(orderID, userID uuid.UUID) (*DownloadResponse, error) {
	var order models.Order
	if err := s.db.Preload("Project").First(&order, orderID).Error; err != nil {
		return nil, NotFoundError("order not found")
	}

	if order.BuyerID != userID {
		return nil, ForbiddenError("this order does not belong to you")
	}

	if order.PaymentStatus != models.PaymentStatusCompleted {
		return nil, ForbiddenError("order payment is not completed")
	}

	if time.Now().After(order.DownloadExpiry) {
		return nil, ExpiredError("download window has expired")
	}

	if order.DownloadCount >= order.MaxDownloads {
		return nil, ConflictError("download limit reached")
	}

	url, err := s.storage.DownloadURL(order.Project.DownloadFile, downloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve download url: %w", err)
	}

	if err := s.db.Model(&order).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		return nil, fmt.Errorf("failed to record download: %w", err)
	}

	return &DownloadResponse{
		DownloadURL:        url,
		DownloadsRemaining: order.MaxDownloads - order.DownloadCount - 1,
		ExpiresAt:          order.DownloadExpiry.Format(time.RFC3339),
	}, nil
}

// GetOrder is visible to the two parties of the trade only.
func (s *OrderService) GetOrder(orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Project").Preload("Buyer").Preload("Seller").
		First(&order, orderID).Error; err != nil {
		return nil, NotFoundError("order not found")
	}

	if order.BuyerID != userID && order.SellerID != userID {
		return nil, ForbiddenError("you are not a party to this order")
	}

	return &order, nil
}

func (s *OrderService) GetMyPurchases(buyerID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Order{}).Where("buyer_id = ?", buyerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Project").Preload("Seller").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

func (s *OrderService) GetMySales(sellerID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Order{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount", "seller_earning"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Project").Preload("Buyer").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

// GetDashboardStats summarizes the user's trade history from the order
// ledger, both sides.
func (s *OrderService) GetDashboardStats(userID uuid.UUID) (*OrderStats, error) {
	stats := &OrderStats{}

	row := s.db.Model(&models.Order{}).
		Where("buyer_id = ? AND payment_status = ?", userID, models.PaymentStatusCompleted).
		Select("COUNT(*), COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&stats.TotalPurchases, &stats.TotalSpent); err != nil {
		return nil, fmt.Errorf("failed to aggregate purchases: %w", err)
	}

	row = s.db.Model(&models.Order{}).
		Where("seller_id = ? AND payment_status = ?", userID, models.PaymentStatusCompleted).
		Select("COUNT(*), COALESCE(SUM(seller_earning), 0)").Row()
	if err := row.Scan(&stats.TotalSales, &stats.TotalEarnings); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	if err := s.db.Model(&models.Order{}).
		Where("(buyer_id = ? OR seller_id = ?) AND payment_status = ?",
			userID, userID, models.PaymentStatusPending).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	return stats, nil
}

// Refund reverses a completed order: the charge is refunded through the
// payment provider and the cached counters are walked back.
func (s *OrderService) Refund(orderID uuid.UUID, reason string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, NotFoundError("order not found")
	}

	if order.PaymentStatus != models.PaymentStatusCompleted {
		return nil, ConflictError("only completed orders can be refunded")
	}

	if _, err := s.payment.RefundPayment(order.PaymentID, reason); err != nil {
		return nil, fmt.Errorf("payment refund failed: %w", err)
	}

	if err := s.db.Model(&order).
		Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
		return nil, fmt.Errorf("failed to mark order refunded: %w", err)
	}
	order.PaymentStatus = models.PaymentStatusRefunded

	if err := s.db.Model(&models.Project{}).Where("id = ? AND downloads > 0", order.ProjectID).
		UpdateColumn("downloads", gorm.Expr("downloads - 1")).Error; err != nil {
		logrus.WithError(err).WithField("project_id", order.ProjectID).
			Warn("Failed to walk back project download counter")
	}

	if err := s.db.Model(&models.User{}).Where("id = ?", order.SellerID).
		UpdateColumns(map[string]interface{}{
			"total_sales":    gorm.Expr("GREATEST(total_sales - 1, 0)"),
			"total_earnings": gorm.Expr("GREATEST(total_earnings - ?, 0)", order.SellerEarning),
		}).Error; err != nil {
		logrus.WithError(err).WithField("seller_id", order.SellerID).
			Warn("Failed to walk back seller earnings counters")
	}

	return &order, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// The postgres driver surfaces unique violations as SQLSTATE 23505; gorm
	// does not normalize them into a typed error here.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "SQLSTATE 23505")
}
