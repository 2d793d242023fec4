package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"commscore/internal/pkg/apperror"
	commsadapter "commscore/internal/pkg/comms/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/readstate/application/usecase"
	"commscore/internal/pkg/readstate/persistence/repository/adapter"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

// ConversationReadStateController reads and advances the caller's read
// pointer on a comms conversation. The gate enforces the user-private
// rule: a conversation assigned to someone else reports NotFound.
type ConversationReadStateController struct {
	Pool *pgxpool.Pool
}

func NewConversationReadStateController(pool *pgxpool.Pool) *ConversationReadStateController {
	return &ConversationReadStateController{Pool: pool}
}

func (h *ConversationReadStateController) useCase(scope tenancy.Identity) *usecase.MarkReadUseCase {
	conversations := commsadapter.NewPgConversationRepository(h.Pool, scope)
	gate := usecase.GateFunc(func(ctx context.Context, threadID string) error {
		_, found, err := conversations.FindByID(ctx, threadID)
		if err != nil {
			return err
		}
		if !found {
			return apperror.ErrNotFound
		}
		return nil
	})
	return usecase.NewMarkReadUseCase(
		scope,
		gate,
		adapter.NewPgEventAnchorResolver(h.Pool, scope),
		adapter.NewPgConversationReadStateRepository(h.Pool, scope),
	)
}

func (h *ConversationReadStateController) HandleMark() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		state, err := h.useCase(scope).Execute(ctx, c.Param("conversationId"), req.AnchorID)
		httpx.NoStore(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"readState": readStateJSON(state)})
	}
}

func (h *ConversationReadStateController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		state, err := h.useCase(scope).Get(ctx, c.Param("conversationId"))
		httpx.NoStore(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"readState": readStateJSON(state)})
	}
}
