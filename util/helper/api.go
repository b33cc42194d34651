package helper_util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxPageSize caps a single ledger page; larger requests paginate.
const maxPageSize = 100

// GetPaginationParams reads limit/offset query parameters. Negative values
// are rejected rather than passed through, since SQLite reads a negative
// LIMIT as "no limit".
func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 0, 0, err
	}
	if limit < 0 {
		return 0, 0, fmt.Errorf("limit must not be negative, got %d", limit)
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	return limit, offset, nil
}
