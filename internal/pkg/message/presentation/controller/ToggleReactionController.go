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

type ToggleReactionController struct {
	Pool *pgxpool.Pool
}

func NewToggleReactionController(pool *pgxpool.Pool) *ToggleReactionController {
	return &ToggleReactionController{Pool: pool}
}

type toggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

func (h *ToggleReactionController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req toggleReactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		repo := adapter.NewPgMessageRepository(h.Pool, scope)
		uc := usecase.NewToggleReactionUseCase(repo, channelGate(h.Pool, scope), scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		present, err := uc.Execute(ctx, c.Param("messageId"), req.Emoji)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"reacted": present})
	}
}
