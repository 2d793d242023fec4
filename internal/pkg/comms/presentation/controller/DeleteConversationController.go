package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	qport "commscore/internal/infrastructure/queue/port"
	"commscore/internal/pkg/comms/application/usecase"
	"commscore/internal/pkg/comms/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type DeleteConversationController struct {
	Pool  *pgxpool.Pool
	Queue qport.Client
}

func NewDeleteConversationController(pool *pgxpool.Pool, queue qport.Client) *DeleteConversationController {
	return &DeleteConversationController{Pool: pool, Queue: queue}
}

func (h *DeleteConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		repo := adapter.NewPgConversationRepository(h.Pool, scope)
		uc := usecase.NewDeleteConversationUseCase(repo, h.Queue, scope)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		if err := uc.Execute(ctx, c.Param("conversationId")); err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{})
	}
}
