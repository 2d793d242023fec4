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

// CheckSuppressionController answers whether a counterparty number is
// opted out. Outbound senders call it before every send.
type CheckSuppressionController struct {
	Pool *pgxpool.Pool
}

func NewCheckSuppressionController(pool *pgxpool.Pool) *CheckSuppressionController {
	return &CheckSuppressionController{Pool: pool}
}

func (h *CheckSuppressionController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		uc := usecase.NewCheckSuppressionUseCase(adapter.NewPgSuppressionRepository(h.Pool))

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		suppressed, err := uc.Execute(ctx, scope.WorkspaceID, c.Param("e164"))
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"suppressed": suppressed})
	}
}
