// internal/utils/pagination.go
package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaginationParams struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
	Search string `json:"search"`
}

// PagingInfo is the offset-pagination block of list responses.
type PagingInfo struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// CursorParams drives keyset pagination over a user's order history. Cursor
// is the id of the last entity of the previous page, empty for the first.
type CursorParams struct {
	PageSize int    `json:"pageSize"`
	Cursor   string `json:"cursor"`
}

type CursorInfo struct {
	PageSize   int     `json:"pageSize"`
	NextCursor *string `json:"nextCursor"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	sort := c.DefaultQuery("sortBy", "created_at")
	order := c.DefaultQuery("sortOrder", "desc")
	search := c.Query("searchQuery")

	// Validate and set defaults
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Sort:   sort,
		Order:  order,
		Search: search,
	}
}

func GetCursorParams(c *gin.Context) CursorParams {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	return CursorParams{
		PageSize: pageSize,
		Cursor:   c.Query("cursor"),
	}
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	offset := (params.Page - 1) * params.Limit
	return db.Offset(offset).Limit(params.Limit)
}

func ApplySort(db *gorm.DB, params PaginationParams, allowedSortFields []string) *gorm.DB {
	sortField := params.Sort
	validSort := false
	for _, field := range allowedSortFields {
		if field == sortField {
			validSort = true
			break
		}
	}

	if !validSort {
		sortField = "created_at"
	}

	return db.Order(sortField + " " + params.Order)
}

func NewPagingInfo(total int64, params PaginationParams) PagingInfo {
	pages := int(math.Ceil(float64(total) / float64(params.Limit)))
	if pages < 1 {
		pages = 1
	}

	return PagingInfo{
		Total: total,
		Page:  params.Page,
		Pages: pages,
	}
}
