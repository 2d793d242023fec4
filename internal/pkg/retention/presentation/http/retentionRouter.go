package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	retention "commscore/internal/pkg/retention/application/domain"
	"commscore/internal/pkg/retention/application/usecase"
	"commscore/internal/pkg/retention/persistence/repository/adapter"
	"commscore/internal/pkg/retention/presentation/controller"
)

// RegisterRoutes binds the scheduler-facing sweep endpoint. It does not
// go through the identity middleware; the bearer token is the only
// credential.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	uc := usecase.NewSweepUseCase(retention.PolicyFromEnv(), adapter.NewPgSweepRepository(pool))
	ctl := controller.NewSweepController(uc)

	// POST /internal/retention/sweep?dryRun=true
	g.POST("/retention/sweep", ctl.Handle())
}
