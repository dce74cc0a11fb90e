// internal/utils/pagination.go
package utils

import (
	"math"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// catalogSortPresets are the sort keys the storefront exposes on the project
// catalog. Anything else falls back to newest-first.
var catalogSortPresets = map[string]string{
	"newest":     "created_at DESC",
	"price-low":  "price ASC",
	"price-high": "price DESC",
	"rating":     "rating DESC, total_reviews DESC",
	"popular":    "downloads DESC, views DESC",
}

type PaginationParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Sort     string `json:"sort"`
	Order    string `json:"order"`
	Search   string `json:"search"`
	Category string `json:"category"`
}

type PaginationResult struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
	Data       interface{} `json:"data"`
}

// GetPaginationParams reads the shared list-endpoint query knobs. Out-of-range
// values clamp to defaults rather than erroring.
func GetPaginationParams(c *gin.Context) PaginationParams {
	params := PaginationParams{
		Sort:     c.DefaultQuery("sort", "created_at"),
		Order:    c.DefaultQuery("order", "desc"),
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}

	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if params.Page < 1 {
		params.Page = 1
	}

	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if params.Limit < 1 || params.Limit > MaxPageSize {
		params.Limit = DefaultPageSize
	}

	if params.Order != "asc" && params.Order != "desc" {
		params.Order = "desc"
	}

	return params
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	return db.Offset((params.Page - 1) * params.Limit).Limit(params.Limit)
}

// ApplyCatalogSort orders a project query by one of the storefront presets.
func ApplyCatalogSort(db *gorm.DB, sort string) *gorm.DB {
	clause, ok := catalogSortPresets[sort]
	if !ok {
		clause = catalogSortPresets["newest"]
	}
	return db.Order(clause)
}

// ApplySort orders owner and back-office listings by an allow-listed column,
// in the direction the client asked for.
func ApplySort(db *gorm.DB, params PaginationParams, allowedSortFields []string) *gorm.DB {
	sortField := params.Sort
	if !slices.Contains(allowedSortFields, sortField) {
		sortField = "created_at"
	}
	return db.Order(sortField + " " + params.Order)
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	return PaginationResult{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
		Data:       data,
	}
}

func SetPaginationHeaders(c *gin.Context, result PaginationResult) {
	c.Header("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Header("X-Page", strconv.Itoa(result.Page))
	c.Header("X-Per-Page", strconv.Itoa(result.Limit))
	c.Header("X-Total-Pages", strconv.Itoa(result.TotalPages))
}
