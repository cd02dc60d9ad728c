package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// ParsePagination reads limit/offset query parameters, clamping limit to
// [1, 100] and offset to >= 0.
func ParsePagination(ctx *gin.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit

	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	if limit < 1 {
		limit = 1
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := ctx.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			offset = n
		}
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
