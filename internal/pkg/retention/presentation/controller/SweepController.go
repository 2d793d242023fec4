package controller

import (
	"context"
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"commscore/internal/pkg/httpx"
	"commscore/internal/pkg/retention/application/usecase"
)

// Sweeps walk every expired row, so they get a far longer budget than
// interactive requests.
const sweepTimeout = 5 * time.Minute

// SweepController triggers a retention pass. The caller is an external
// scheduler authenticated by a shared bearer token, not a workspace
// identity.
type SweepController struct {
	UC    *usecase.SweepUseCase
	Token string
}

func NewSweepController(uc *usecase.SweepUseCase) *SweepController {
	return &SweepController{UC: uc, Token: os.Getenv("RETENTION_TOKEN")}
}

func (h *SweepController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authorized(c.GetHeader("Authorization")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), sweepTimeout)
		defer cancel()
		results, err := h.UC.Execute(ctx, c.Query("dryRun") == "true")
		if err != nil {
			httpx.Fail(c, err)
			return
		}
		httpx.OK(c, http.StatusOK, gin.H{"results": results})
	}
}

func (h *SweepController) authorized(header string) bool {
	if h.Token == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) == 1
}
