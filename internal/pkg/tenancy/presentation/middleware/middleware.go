package middleware

import (
	"github.com/gin-gonic/gin"

	"commscore/internal/pkg/httpx"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	"commscore/internal/pkg/tenancy/application/usecase"
)

const identityKey = "tenancy.identity"

// Identity resolves the caller's workspace identity and aborts the request
// on failure. The authenticating edge forwards the verified credential in
// X-User-Id and the selected workspace in X-Workspace-Id.
func Identity(uc *usecase.ResolveIdentityUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uc.Execute(c.Request.Context(), usecase.ResolveIdentityInput{
			Credential:  c.GetHeader("X-User-Id"),
			WorkspaceID: c.GetHeader("X-Workspace-Id"),
		})
		if err != nil {
			httpx.Fail(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireCapability gates a route group behind a plan capability. Must run
// after Identity: the order is identity, entitlement, data access.
func RequireCapability(uc *usecase.RequireCapabilityUseCase, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			httpx.Fail(c, errMissingIdentity)
			c.Abort()
			return
		}
		if err := uc.Execute(c.Request.Context(), id.WorkspaceID, capability); err != nil {
			httpx.Fail(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom extracts the identity stored by the Identity middleware.
func IdentityFrom(c *gin.Context) (tenancy.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return tenancy.Identity{}, false
	}
	id, ok := v.(tenancy.Identity)
	return id, ok
}
