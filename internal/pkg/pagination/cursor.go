package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ErrBadCursor is returned when an opaque cursor cannot be decoded.
var ErrBadCursor = errors.New("pagination: malformed cursor")

// Cursor identifies a pagination boundary by sort key and row id. The id is
// a mandatory tie-breaker: timestamps are not unique under concurrent writes.
type Cursor struct {
	SortKey time.Time
	ID      string
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d|%s", c.SortKey.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token produced by Encode.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrBadCursor
	}
	key, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return Cursor{}, ErrBadCursor
	}
	micros, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return Cursor{}, ErrBadCursor
	}
	return Cursor{SortKey: time.UnixMicro(micros).UTC(), ID: id}, nil
}

// ClampLimit normalizes a requested page size into [1, MaxLimit], applying
// the default when the caller passed nothing.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
