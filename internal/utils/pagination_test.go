// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(t *testing.T, query string) PaginationParams {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/projects?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paramsForQuery(t, "")

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultPageSize, params.Limit)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantOrder string
	}{
		{"negative page", "page=-3", 1, DefaultPageSize, "desc"},
		{"zero limit", "limit=0", 1, DefaultPageSize, "desc"},
		{"limit over cap", "limit=5000", 1, DefaultPageSize, "desc"},
		{"garbage order", "order=sideways", 1, DefaultPageSize, "desc"},
		{"valid asc", "page=3&limit=50&order=asc", 3, 50, "asc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := paramsForQuery(t, tt.query)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOrder, params.Order)
		})
	}
}

func TestCatalogSortPresetsKnownKeys(t *testing.T) {
	for _, key := range []string{"newest", "price-low", "price-high", "rating", "popular"} {
		assert.Contains(t, catalogSortPresets, key)
	}
}

func TestCreatePaginationResultTotalPages(t *testing.T) {
	result := CreatePaginationResult(nil, 41, PaginationParams{Page: 2, Limit: 20})

	assert.Equal(t, int64(41), result.Total)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 2, result.Page)
}
