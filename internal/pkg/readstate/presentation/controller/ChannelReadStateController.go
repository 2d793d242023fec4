package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	channelusecase "commscore/internal/pkg/channel/application/usecase"
	channeladapter "commscore/internal/pkg/channel/persistence/repository/adapter"
	"commscore/internal/pkg/httpx"
	domain "commscore/internal/pkg/readstate/application/domain"
	"commscore/internal/pkg/readstate/application/usecase"
	"commscore/internal/pkg/readstate/persistence/repository/adapter"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

const requestTimeout = 3 * time.Second

// ChannelReadStateController reads and advances the caller's read
// pointer on a chat channel.
type ChannelReadStateController struct {
	Pool *pgxpool.Pool
}

func NewChannelReadStateController(pool *pgxpool.Pool) *ChannelReadStateController {
	return &ChannelReadStateController{Pool: pool}
}

type markReadRequest struct {
	AnchorID *string `json:"anchorId"`
}

func (h *ChannelReadStateController) useCase(scope tenancy.Identity) *usecase.MarkReadUseCase {
	channelRepo := channeladapter.NewPgChannelRepository(h.Pool, scope)
	access := channelusecase.NewChannelAccessUseCase(channelRepo, scope)
	gate := usecase.GateFunc(func(ctx context.Context, threadID string) error {
		_, err := access.Require(ctx, threadID)
		return err
	})
	return usecase.NewMarkReadUseCase(
		scope,
		gate,
		adapter.NewPgMessageAnchorResolver(h.Pool, scope),
		adapter.NewPgChannelReadStateRepository(h.Pool, scope),
	)
}

func (h *ChannelReadStateController) HandleMark() gin.HandlerFunc {
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
		state, err := h.useCase(scope).Execute(ctx, c.Param("channelId"), req.AnchorID)
		httpx.NoStore(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"readState": readStateJSON(state)})
	}
}

func (h *ChannelReadStateController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := middleware.IdentityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		state, err := h.useCase(scope).Get(ctx, c.Param("channelId"))
		httpx.NoStore(c)
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"readState": readStateJSON(state)})
	}
}

func readStateJSON(state domain.State) gin.H {
	return gin.H{
		"threadId":   state.ThreadID,
		"anchorId":   state.AnchorID,
		"lastReadAt": state.LastReadAt,
	}
}
