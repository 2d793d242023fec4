package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "commscore/internal/infrastructure/cache/port"
	eventport "commscore/internal/infrastructure/events/port"
	qport "commscore/internal/infrastructure/queue/port"
	channelhttp "commscore/internal/pkg/channel/presentation/http"
	commshttp "commscore/internal/pkg/comms/presentation/http"
	messagehttp "commscore/internal/pkg/message/presentation/http"
	readstatehttp "commscore/internal/pkg/readstate/presentation/http"
	retentionhttp "commscore/internal/pkg/retention/presentation/http"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	tenancyusecase "commscore/internal/pkg/tenancy/application/usecase"
	tenancyadapter "commscore/internal/pkg/tenancy/persistence/repository/adapter"
	"commscore/internal/pkg/tenancy/presentation/middleware"
)

// RegisterRoutes mounts all version 1 API routes. Identity resolution
// runs before every workspace handler; the comms group additionally
// re-checks the plan capability. Webhooks and the retention trigger have
// their own credentials and bypass the identity middleware.
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, queue qport.Client, cache cacheport.Cache, publisher eventport.Publisher) {
	resolveIdentity := tenancyusecase.NewResolveIdentityUseCase(
		tenancyadapter.PassthroughSessionResolver{},
		tenancyadapter.NewPgMembershipRepository(pool),
	)
	requireCapability := tenancyusecase.NewRequireCapabilityUseCase(
		tenancyadapter.NewPgEntitlementResolver(pool),
		cache,
	)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity(resolveIdentity))

	channelhttp.RegisterRoutes(v1, pool)
	messagehttp.RegisterRoutes(v1, pool, queue)
	readstatehttp.RegisterChannelRoutes(v1, pool)

	comms := v1.Group("")
	comms.Use(middleware.RequireCapability(requireCapability, tenancy.CapabilityComms))
	commshttp.RegisterRoutes(comms, pool, queue)
	readstatehttp.RegisterConversationRoutes(comms, pool)

	// Provider webhooks carry no user identity.
	webhooks := r.Group("/api/v1")
	commshttp.RegisterWebhookRoutes(webhooks, pool, requireCapability, publisher)

	// Scheduler-facing endpoints under /internal, bearer-token only.
	internal := r.Group("/internal")
	retentionhttp.RegisterRoutes(internal, pool)
}
