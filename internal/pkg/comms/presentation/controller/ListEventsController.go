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

type ListEventsController struct {
	Pool *pgxpool.Pool
}

func NewListEventsController(pool *pgxpool.Pool) *ListEventsController {
	return &ListEventsController{Pool: pool}
}

func (h *ListEventsController) Handle() gin.HandlerFunc {
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
		uc := usecase.NewListEventsUseCase(repo)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		page, err := uc.Execute(ctx, c.Param("conversationId"), limit, cursor)
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		items := make([]gin.H, 0, len(page.Events))
		for _, event := range page.Events {
			items = append(items, eventJSON(event))
		}
		httpx.OK(c, http.StatusOK, gin.H{
			"events":     items,
			"nextCursor": httpx.EncodeCursor(page.NextCursor),
		})
	}
}
