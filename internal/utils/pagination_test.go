// internal/utils/pagination_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := GetPaginationParams(contextWithQuery(""))

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "desc", params.Order)
	assert.Empty(t, params.Search)
}

func TestGetPaginationParamsClampsBadInput(t *testing.T) {
	params := GetPaginationParams(contextWithQuery("page=-3&pageSize=9999&sortOrder=sideways"))

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
	assert.Equal(t, "desc", params.Order)
}

func TestGetPaginationParamsPassesThrough(t *testing.T) {
	params := GetPaginationParams(contextWithQuery("page=3&pageSize=50&sortBy=price&sortOrder=asc&searchQuery=lamp"))

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 50, params.Limit)
	assert.Equal(t, "price", params.Sort)
	assert.Equal(t, "asc", params.Order)
	assert.Equal(t, "lamp", params.Search)
}

func TestGetCursorParams(t *testing.T) {
	params := GetCursorParams(contextWithQuery("pageSize=25&cursor=abc"))
	assert.Equal(t, 25, params.PageSize)
	assert.Equal(t, "abc", params.Cursor)

	params = GetCursorParams(contextWithQuery("pageSize=0"))
	assert.Equal(t, 10, params.PageSize)

	params = GetCursorParams(contextWithQuery("pageSize=500"))
	assert.Equal(t, 10, params.PageSize)
}

func TestNewPagingInfo(t *testing.T) {
	info := NewPagingInfo(41, PaginationParams{Page: 2, Limit: 20})
	assert.Equal(t, int64(41), info.Total)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 3, info.Pages)

	info = NewPagingInfo(0, PaginationParams{Page: 1, Limit: 20})
	assert.Equal(t, 1, info.Pages)
}
