package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"commscore/internal/pkg/apperror"
	"commscore/internal/pkg/pagination"
)

// PageQuery reads the limit and cursor query parameters shared by every
// paginated listing endpoint.
func PageQuery(c *gin.Context) (int, *pagination.Cursor, error) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, apperror.Validation("limit", "must be an integer")
		}
		limit = parsed
	}
	var cursor *pagination.Cursor
	if raw := c.Query("cursor"); raw != "" {
		decoded, err := pagination.Decode(raw)
		if err != nil {
			return 0, nil, apperror.Validation("cursor", "malformed cursor")
		}
		cursor = &decoded
	}
	return limit, cursor, nil
}

// EncodeCursor renders a next-page cursor for a response body, or nil
// when the page is the last one.
func EncodeCursor(cursor *pagination.Cursor) any {
	if cursor == nil {
		return nil
	}
	return cursor.Encode()
}
