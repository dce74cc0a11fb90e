// internal/services/service_test.go
package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devmarket/devmarket-backend/internal/config"
	"github.com/devmarket/devmarket-backend/internal/database"
	"github.com/devmarket/devmarket-backend/internal/models"
)

// setupTestDB connects to the database named by TEST_DATABASE_DSN and runs
// the migrations. Suites that need a database skip when the variable is
// unset, so the pure-function tests still run everywhere.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping database-backed tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// truncateAll wipes every table between tests.
func truncateAll(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Exec(`TRUNCATE users, projects, orders, reviews, promo_codes, otps, banking_details, audit_logs CASCADE`).Error
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.AccessTokenTTL = 1
	return cfg
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Name:       "Test User",
		Email:      fmt.Sprintf("user-%s@example.com", uuid.New()),
		Role:       role,
		IsVerified: true,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func createTestProject(t *testing.T, db *gorm.DB, sellerID uuid.UUID, price float64) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:        "E-commerce Dashboard",
		Description:  "A complete admin dashboard with charts, auth and order management.",
		Price:        price,
		Category:     models.CategoryWebDevelopment,
		TechStack:    []string{"React", "Node.js"},
		DownloadFile: "archives/dashboard.zip",
		SellerID:     sellerID,
		IsActive:     true,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// backdateDownloadExpiry pushes an order's window into the past directly in
// the database, since expiry is fixed at creation.
func backdateDownloadExpiry(t *testing.T, db *gorm.DB, orderID uuid.UUID) {
	t.Helper()

	err := db.Model(&models.Order{}).Where("id = ?", orderID).
		UpdateColumn("download_expiry", time.Now().Add(-time.Hour)).Error
	if err != nil {
		t.Fatalf("failed to backdate download expiry: %v", err)
	}
}
