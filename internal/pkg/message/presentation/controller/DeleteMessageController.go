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

type DeleteMessageController struct {
	Pool *pgxpool.Pool
}

func NewDeleteMessageController(pool *pgxpool.Pool) *DeleteMessageController {
	return &DeleteMessageController{Pool: pool}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		repo := adapter.NewPgMessageRepository(h.Pool, scope)
		uc := usecase.NewDeleteMessageUseCase(repo, channelGate(h.Pool, scope), scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := uc.Execute(ctx, c.Param("messageId")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{})
	}
}
