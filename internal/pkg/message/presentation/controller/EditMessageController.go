package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/message/application/usecase"
	"commscore/internal/pkg/message/persistence/repository/adapter"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type EditMessageController struct {
	Pool *pgxpool.Pool
}

func NewEditMessageController(pool *pgxpool.Pool) *EditMessageController {
	return &EditMessageController{Pool: pool}
}

type editMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *EditMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req editMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		repo := adapter.NewPgMessageRepository(h.Pool, scope)
		uc := usecase.NewEditMessageUseCase(repo, channelGate(h.Pool, scope), scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		updated, err := uc.Execute(ctx, c.Param("messageId"), req.Body)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"message": messageJSON(updated)})
	}
}
