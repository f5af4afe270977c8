package ginutil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// DefaultPerPage is the listing page size used when the client does not send one
const DefaultPerPage = 10

// MaxPerPage caps per_page to keep listing queries bounded
const MaxPerPage = 100

// QueryInt extracts an integer from query parameters with default value
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// Pagination reads page / per_page and clamps them to sane bounds
func Pagination(c *gin.Context) (page, perPage int) {
	page = QueryInt(c, "page", 1)
	perPage = QueryInt(c, "per_page", DefaultPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > MaxPerPage {
		perPage = DefaultPerPage
	}
	return page, perPage
}
