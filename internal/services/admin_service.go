// internal/services/admin_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type AdminService struct {
	db     *gorm.DB
	orders *OrderService
}

type PlatformStats struct {
	TotalUsers      int64            `json:"total_users"`
	UsersByRole     map[string]int64 `json:"users_by_role"`
	TotalProjects   int64            `json:"total_projects"`
	ActiveProjects  int64            `json:"active_projects"`
	TotalOrders     int64            `json:"total_orders"`
	TotalRevenue    float64          `json:"total_revenue"`
	TotalCommission float64          `json:"total_commission"`
	RecentOrders    int64            `json:"recent_orders"`  // last 30 days
	RecentRevenue   float64          `json:"recent_revenue"` // last 30 days
}

type ReconcileResult struct {
	ProjectsUpdated int `json:"projects_updated"`
	SellersUpdated  int `json:"sellers_updated"`
	RatingsUpdated  int `json:"ratings_updated"`
}

func NewAdminService(db *gorm.DB, orders *OrderService) *AdminService {
	return &AdminService{
		db:     db,
		orders: orders,
	}
}

func (s *AdminService) GetPlatformStats() (*PlatformStats, error) {
	stats := &PlatformStats{UsersByRole: map[string]int64{}}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.db.Model(&models.User{}).
		Select("role, COUNT(*)").Group("role").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate users by role: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		var count int64
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("failed to scan role counts: %w", err)
		}
		stats.UsersByRole[role] = count
	}

	if err := s.db.Model(&models.Project{}).Count(&stats.TotalProjects).Error; err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if err := s.db.Model(&models.Project{}).Where("is_active = ?", true).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, fmt.Errorf("failed to count active projects: %w", err)
	}

	row := s.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentStatusCompleted).
		Select("COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(commission), 0)").Row()
	if err := row.Scan(&stats.TotalOrders, &stats.TotalRevenue, &stats.TotalCommission); err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	since := time.Now().AddDate(0, 0, -30)
	row = s.db.Model(&models.Order{}).
		Where("payment_status = ? AND created_at >= ?", models.PaymentStatusCompleted, since).
		Select("COUNT(*), COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&stats.RecentOrders, &stats.RecentRevenue); err != nil {
		return nil, fmt.Errorf("failed to aggregate recent orders: %w", err)
	}

	return stats, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "total_sales", "total_earnings"})
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := utils.CreatePaginationResult(users, total, params)
	return &result, nil
}

// DeleteUser removes an account and its listings. Admin accounts are
// untouchable.
func (s *AdminService) DeleteUser(userID uuid.UUID) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return NotFoundError("user not found")
	}

	if user.Role == models.RoleAdmin {
		return ForbiddenError("admin accounts cannot be deleted")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("seller_id = ?", userID).Delete(&models.Project{}).Error; err != nil {
			return fmt.Errorf("failed to delete projects: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.BankingDetails{}).Error; err != nil {
			return fmt.Errorf("failed to delete banking details: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func (s *AdminService) ListOrders(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Order{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount", "commission"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Project").Preload("Buyer").Preload("Seller").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

func (s *AdminService) ListProjects(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Project{})

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("title ILIKE ?", search)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "downloads", "rating"})
	query = utils.ApplyPagination(query, params)

	var projects []models.Project
	if err := query.Preload("Seller").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	result := utils.CreatePaginationResult(projects, total, params)
	return &result, nil
}

func (s *AdminService) DeleteProject(projectID uuid.UUID) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return NotFoundError("project not found")
	}

	if err := s.db.Delete(&project).Error; err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

func (s *AdminService) RefundOrder(orderID uuid.UUID, reason string) (*models.Order, error) {
	return s.orders.Refund(orderID, reason)
}

// ReconcileAggregates rebuilds every cached counter from the authoritative
// tables: project downloads and seller sales/earnings from completed orders,
// project rating/review counts from reviews. Safe to run at any time.
func (s *AdminService) ReconcileAggregates() (*ReconcileResult, error) {
	result := &ReconcileResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE projects p SET downloads = COALESCE(o.cnt, 0)
			FROM (
				SELECT project_id, COUNT(*) AS cnt
				FROM orders
				WHERE payment_status = 'completed' AND deleted_at IS NULL
				GROUP BY project_id
			) o
			WHERE p.id = o.project_id AND p.downloads IS DISTINCT FROM o.cnt
		`)
		if res.Error != nil {
			return fmt.Errorf("failed to rebuild project downloads: %w", res.Error)
		}
		result.ProjectsUpdated = int(res.RowsAffected)

		res = tx.Exec(`
			UPDATE projects SET downloads = 0
			WHERE downloads <> 0 AND id NOT IN (
				SELECT DISTINCT project_id FROM orders
				WHERE payment_status = 'completed' AND deleted_at IS NULL
			)
		`)
		if res.Error != nil {
			return fmt.Errorf("failed to zero orphaned download counters: %w", res.Error)
		}
		result.ProjectsUpdated += int(res.RowsAffected)

		res = tx.Exec(`
			UPDATE users u SET total_sales = COALESCE(o.cnt, 0), total_earnings = COALESCE(o.sum, 0)
			FROM (
				SELECT seller_id, COUNT(*) AS cnt, SUM(seller_earning) AS sum
				FROM orders
				WHERE payment_status = 'completed' AND deleted_at IS NULL
				GROUP BY seller_id
			) o
			WHERE u.id = o.seller_id
		`)
		if res.Error != nil {
			return fmt.Errorf("failed to rebuild seller counters: %w", res.Error)
		}
		result.SellersUpdated = int(res.RowsAffected)

		res = tx.Exec(`
			UPDATE users SET total_sales = 0, total_earnings = 0
			WHERE (total_sales <> 0 OR total_earnings <> 0) AND id NOT IN (
				SELECT DISTINCT seller_id FROM orders
				WHERE payment_status = 'completed' AND deleted_at IS NULL
			)
		`)
		if res.Error != nil {
			return fmt.Errorf("failed to zero orphaned seller counters: %w", res.Error)
		}
		result.SellersUpdated += int(res.RowsAffected)

		res = tx.Exec(`
			UPDATE projects p SET
				rating = COALESCE(ROUND(r.avg::numeric, 1), 0),
				total_reviews = COALESCE(r.cnt, 0)
			FROM (
				SELECT project_id, AVG(rating) AS avg, COUNT(*) AS cnt
				FROM reviews
				WHERE deleted_at IS NULL
				GROUP BY project_id
			) r
			WHERE p.id = r.project_id
		`)
		if res.Error != nil {
			return fmt.Errorf("failed to rebuild project ratings: %w", res.Error)
		}
		result.RatingsUpdated = int(res.RowsAffected)

		res = tx.Exec(`
			UPDATE projects SET rating = 0, total_reviews = 0
			WHERE (rating <> 0 OR total_reviews <> 0) AND id NOT IN (
				SELECT DISTINCT project_id FROM reviews WHERE deleted_at IS NULL
			)
		`)
		if res.Error != nil {
			return fmt.Errorf("failed to zero orphaned ratings: %w", res.Error)
		}
		result.RatingsUpdated += int(res.RowsAffected)

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"projects": result.ProjectsUpdated,
		"sellers":  result.SellersUpdated,
		"ratings":  result.RatingsUpdated,
	}).Info("Aggregate reconciliation complete")

	return result, nil
}
