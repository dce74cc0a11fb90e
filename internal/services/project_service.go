// internal/services/project_service.go
package services

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/devmarket/devmarket-backend/internal/models"
	"github.com/devmarket/devmarket-backend/internal/utils"
)

type ProjectService struct {
	db *gorm.DB
}

type CreateProjectRequest struct {
	Title            string                 `json:"title" validate:"required,min=5,max=100"`
	Description      string                 `json:"description" validate:"required,min=20"`
	ShortDescription string                 `json:"short_description" validate:"omitempty,max=200"`
	Price            float64                `json:"price" validate:"gte=0"`
	Category         models.ProjectCategory `json:"category" validate:"required"`
	TechStack        []string               `json:"tech_stack" validate:"required,min=1,max=20"`
	Images           []string               `json:"images,omitempty" validate:"omitempty,max=10"`
	Thumbnail        string                 `json:"thumbnail,omitempty" validate:"omitempty,url"`
	DemoURL          string                 `json:"demo_url,omitempty" validate:"omitempty,url"`
	GithubURL        string                 `json:"github_url,omitempty" validate:"omitempty,url"`
	VideoURL         string                 `json:"video_url,omitempty" validate:"omitempty,url"`
	DownloadFile     string                 `json:"download_file,omitempty"`
	Features         []string               `json:"features,omitempty" validate:"omitempty,max=20"`
	Requirements     []string               `json:"requirements,omitempty" validate:"omitempty,max=20"`
}

type UpdateProjectRequest struct {
	Title            string                 `json:"title,omitempty" validate:"omitempty,min=5,max=100"`
	Description      string                 `json:"description,omitempty" validate:"omitempty,min=20"`
	ShortDescription string                 `json:"short_description,omitempty" validate:"omitempty,max=200"`
	Price            *float64               `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category         models.ProjectCategory `json:"category,omitempty"`
	TechStack        []string               `json:"tech_stack,omitempty" validate:"omitempty,min=1,max=20"`
	Images           []string               `json:"images,omitempty" validate:"omitempty,max=10"`
	Thumbnail        string                 `json:"thumbnail,omitempty" validate:"omitempty,url"`
	DemoURL          string                 `json:"demo_url,omitempty" validate:"omitempty,url"`
	GithubURL        string                 `json:"github_url,omitempty" validate:"omitempty,url"`
	VideoURL         string                 `json:"video_url,omitempty" validate:"omitempty,url"`
	DownloadFile     string                 `json:"download_file,omitempty"`
	Features         []string               `json:"features,omitempty" validate:"omitempty,max=20"`
	Requirements     []string               `json:"requirements,omitempty" validate:"omitempty,max=20"`
	IsActive         *bool                  `json:"is_active,omitempty"`
}

// ProjectFilters are the public catalog query knobs, on top of pagination.
type ProjectFilters struct {
	Category  string
	Search    string
	MinPrice  string
	MaxPrice  string
	TechStack string
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (s *ProjectService) CreateProject(sellerID uuid.UUID, req *CreateProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.Category.Valid() {
		return nil, ValidationError("invalid category")
	}

	var seller models.User
	if err := s.db.First(&seller, sellerID).Error; err != nil {
		return nil, NotFoundError("seller not found")
	}
	if !seller.Role.CanSell() {
		return nil, ForbiddenError("only sellers can list projects")
	}

	project := &models.Project{
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		Category:         req.Category,
		TechStack:        pq.StringArray(req.TechStack),
		Images:           pq.StringArray(req.Images),
		Thumbnail:        req.Thumbnail,
		DemoURL:          req.DemoURL,
		GithubURL:        req.GithubURL,
		VideoURL:         req.VideoURL,
		DownloadFile:     req.DownloadFile,
		Features:         pq.StringArray(req.Features),
		Requirements:     pq.StringArray(req.Requirements),
		SellerID:         sellerID,
		IsActive:         true,
	}

	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects is the public catalog: active projects, filters, and the sort
// presets the storefront exposes.
func (s *ProjectService) ListProjects(params utils.PaginationParams, filters ProjectFilters) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Project{}).Where("is_active = ?", true)
	query = s.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query = utils.ApplyCatalogSort(query, params.Sort)
	query = utils.ApplyPagination(query, params)

	var projects []models.Project
	if err := query.Preload("Seller").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	result := utils.CreatePaginationResult(projects, total, params)
	return &result, nil
}

func (s *ProjectService) applyFilters(query *gorm.DB, filters ProjectFilters) *gorm.DB {
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ? OR short_description ILIKE ?",
			search, search, search)
	}
	if filters.MinPrice != "" {
		if min, err := strconv.ParseFloat(filters.MinPrice, 64); err == nil {
			query = query.Where("price >= ?", min)
		}
	}
	if filters.MaxPrice != "" {
		if max, err := strconv.ParseFloat(filters.MaxPrice, 64); err == nil {
			query = query.Where("price <= ?", max)
		}
	}
	if filters.TechStack != "" {
		query = query.Where("? = ANY(tech_stack)", filters.TechStack)
	}
	return query
}

// GetProject returns a single listing and bumps its view counter. The counter
// is a cache, not a ledger; the increment is fire-and-forget.
func (s *ProjectService) GetProject(projectID uuid.UUID, countView bool) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Seller").First(&project, projectID).Error; err != nil {
		return nil, NotFoundError("project not found")
	}

	if countView {
		s.db.Model(&models.Project{}).Where("id = ?", projectID).
			UpdateColumn("views", gorm.Expr("views + 1"))
		project.Views++
	}

	return &project, nil
}

func (s *ProjectService) GetFeaturedProjects(limit int) ([]models.Project, error) {
	if limit < 1 || limit > 20 {
		limit = 8
	}

	var projects []models.Project
	err := s.db.Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").Limit(limit).
		Preload("Seller").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get featured projects: %w", err)
	}

	return projects, nil
}

// GetSimilarProjects returns other active listings in the same category.
func (s *ProjectService) GetSimilarProjects(projectID uuid.UUID, limit int) ([]models.Project, error) {
	if limit < 1 || limit > 20 {
		limit = 6
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, NotFoundError("project not found")
	}

	var projects []models.Project
	err := s.db.Where("category = ? AND id != ? AND is_active = ?", project.Category, projectID, true).
		Order("rating DESC, downloads DESC").Limit(limit).
		Preload("Seller").Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get similar projects: %w", err)
	}

	return projects, nil
}

// GetMyProjects lists the seller's own projects, active or not.
func (s *ProjectService) GetMyProjects(sellerID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Project{}).Where("seller_id = ?", sellerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "downloads", "rating", "views"})
	query = utils.ApplyPagination(query, params)

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	result := utils.CreatePaginationResult(projects, total, params)
	return &result, nil
}

func (s *ProjectService) UpdateProject(projectID, sellerID uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, NotFoundError("project not found")
	}

	if project.SellerID != sellerID {
		return nil, ForbiddenError("you can only update your own projects")
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.ShortDescription != "" {
		updates["short_description"] = req.ShortDescription
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Category != "" {
		if !req.Category.Valid() {
			return nil, ValidationError("invalid category")
		}
		updates["category"] = req.Category
	}
	if req.TechStack != nil {
		updates["tech_stack"] = pq.StringArray(req.TechStack)
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Thumbnail != "" {
		updates["thumbnail"] = req.Thumbnail
	}
	if req.DemoURL != "" {
		updates["demo_url"] = req.DemoURL
	}
	if req.GithubURL != "" {
		updates["github_url"] = req.GithubURL
	}
	if req.VideoURL != "" {
		updates["video_url"] = req.VideoURL
	}
	if req.DownloadFile != "" {
		updates["download_file"] = req.DownloadFile
	}
	if req.Features != nil {
		updates["features"] = pq.StringArray(req.Features)
	}
	if req.Requirements != nil {
		updates["requirements"] = pq.StringArray(req.Requirements)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update project: %w", err)
		}
	}

	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}

	return &project, nil
}

func (s *ProjectService) DeleteProject(projectID, sellerID uuid.UUID) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return NotFoundError("project not found")
	}

	if project.SellerID != sellerID {
		return ForbiddenError("you can only delete your own projects")
	}

	if err := s.db.Delete(&project).Error; err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
