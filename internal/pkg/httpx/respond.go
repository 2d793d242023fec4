package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"commscore/internal/pkg/apperror"
)

// OK writes the uniform success envelope: {"ok": true, ...payload}.
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail maps err to a status via apperror.Status and writes {"error": msg}.
// Internal errors are logged with the route and replaced with a generic
// message so infrastructure detail never reaches the caller.
func Fail(c *gin.Context, err error) {
	status := apperror.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, apperror.ErrInternal) {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// NoStore forbids any intermediate cache from serving this response. Read
// state correctness depends on it: a cached stale unread count is a bug.
func NoStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}
