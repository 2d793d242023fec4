package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/channel/application/usecase"
	"commscore/internal/pkg/channel/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

type ListChannelsController struct {
	Pool *pgxpool.Pool
}

func NewListChannelsController(pool *pgxpool.Pool) *ListChannelsController {
	return &ListChannelsController{Pool: pool}
}

func (h *ListChannelsController) Handle() gin.HandlerFunc {
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

		repo := adapter.NewPgChannelRepository(h.Pool, scope)
		uc := usecase.NewListChannelsUseCase(repo)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		result, err := uc.Execute(ctx, usecase.ListChannelsInput{
			IncludeArchived: c.Query("includeArchived") == "true",
			Limit:           limit,
			Cursor:          cursor,
		})
		if err != nil {
			httpx.Fail(c, err)
			return
		}

		items := make([]gin.H, 0, len(result.Channels))
		for _, ch := range result.Channels {
			items = append(items, channelJSON(ch))
		}
		httpx.OK(c, http.StatusOK, gin.H{
			"channels":   items,
			"nextCursor": httpx.EncodeCursor(result.NextCursor),
		})
	}
}
