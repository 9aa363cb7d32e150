package api

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// parsePagination parses limit and offset from query parameters.
// Invalid values fall back to the defaults; limit is capped at maxPageLimit.
func parsePagination(c echo.Context) (limit, offset int) {
	limit = defaultPageLimit
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = min(parsed, maxPageLimit)
		}
	}

	if offsetParam := c.QueryParam("offset"); offsetParam != "" {
		if parsed, err := strconv.Atoi(offsetParam); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}

// paginate returns the window [offset, offset+limit) of items.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
