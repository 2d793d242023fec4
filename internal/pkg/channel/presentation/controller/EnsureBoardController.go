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

// EnsureBoardController returns the workspace board, creating it on
// first access. One controller per endpoint.
type EnsureBoardController struct {
	Pool *pgxpool.Pool
}

func NewEnsureBoardController(pool *pgxpool.Pool) *EnsureBoardController {
	return &EnsureBoardController{Pool: pool}
}

func (h *EnsureBoardController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		repo := adapter.NewPgChannelRepository(h.Pool, scope)
		uc := usecase.NewEnsureBoardUseCase(repo)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		board, err := uc.Execute(ctx)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"channel": channelJSON(board)})
	}
}
