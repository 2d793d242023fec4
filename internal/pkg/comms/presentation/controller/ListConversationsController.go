package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/comms/application/usecase"
	"commscore/internal/pkg/comms/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type ListConversationsController struct {
	Pool *pgxpool.Pool
}

func NewListConversationsController(pool *pgxpool.Pool) *ListConversationsController {
	return &ListConversationsController{Pool: pool}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		limit, cursor, err := httpx.PageQuery(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		repo := adapter.NewPgConversationRepository(h.Pool, scope)
		uc := usecase.NewListConversationsUseCase(repo)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		page, err := uc.Execute(ctx, limit, cursor)
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		items := make([]gin.H, 0, len(page.Conversations))
		for _, conv := range page.Conversations {
			items = append(items, conversationJSON(conv))
		}
		httpx.OK(c, http.StatusOK, gin.H{
			"conversations": items,
			"nextCursor":    httpx.EncodeCursor(page.NextCursor),
		})
	}
}
