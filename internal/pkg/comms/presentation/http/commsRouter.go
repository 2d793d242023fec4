package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	eventport "commscore/internal/infrastructure/events/port"
	qport "commscore/internal/infrastructure/queue/port"
	"commscore/internal/pkg/comms/application/usecase"
	"commscore/internal/pkg/comms/persistence/repository/adapter"
	"commscore/internal/pkg/comms/presentation/controller"
)

// RegisterRoutes binds the user-facing conversation endpoints. The group
// is expected to sit behind the identity middleware and the comms
// capability check.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, queue qport.Client) {
	listCtl := controller.NewListConversationsController(pool)
	eventsCtl := controller.NewListEventsController(pool)
	deleteCtl := controller.NewDeleteConversationController(pool, queue)
	suppressionCtl := controller.NewCheckSuppressionController(pool)

	// GET /api/v1/conversations -> the caller's assigned conversations
	g.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:conversationId/events -> ledger history
	g.GET("/conversations/:conversationId/events", eventsCtl.Handle())

	// DELETE /api/v1/conversations/:conversationId -> cascade delete
	g.DELETE("/conversations/:conversationId", deleteCtl.Handle())

	// GET /api/v1/suppressions/:e164 -> outbound send pre-check
	g.GET("/suppressions/:e164", suppressionCtl.Handle())
}

// RegisterWebhookRoutes binds the provider webhook endpoints. These are
// unauthenticated entry points; workspace resolution happens through the
// receiving number or the provider sid.
func RegisterWebhookRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, entitlement usecase.EntitlementChecker, publisher eventport.Publisher) {
	ledger := adapter.NewPgCommsRepository(pool)
	suppressions := adapter.NewPgSuppressionRepository(pool)

	inboundCtl := controller.NewInboundSmsWebhookController(
		usecase.NewIngestInboundSmsUseCase(ledger, ledger, suppressions, entitlement, publisher))
	statusCtl := controller.NewDeliveryStatusWebhookController(
		usecase.NewApplyDeliveryStatusUseCase(ledger, entitlement, publisher))
	callCtl := controller.NewCallWebhookController(
		usecase.NewIngestCallEventUseCase(ledger, ledger, entitlement, publisher))

	g.POST("/webhooks/sms/inbound", inboundCtl.Handle())
	g.POST("/webhooks/sms/status", statusCtl.Handle())
	g.POST("/webhooks/voice", callCtl.Handle())
}
