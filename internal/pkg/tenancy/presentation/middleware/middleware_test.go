package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	cacheadapter "commscore/internal/infrastructure/cache/adapter"
	tenancy "commscore/internal/pkg/tenancy/application/domain"
	"commscore/internal/pkg/tenancy/application/usecase"
	"commscore/internal/pkg/tenancy/persistence/repository/adapter"
)

type stubMembers struct{}

func (stubMembers) FindRole(ctx context.Context, workspaceID, userID string) (tenancy.Role, bool, error) {
	if (workspaceID == "w1" || workspaceID == "w2") && userID == "u1" {
		return tenancy.RoleMember, true, nil
	}
	return "", false, nil
}

type stubEntitlements struct{}

func (stubEntitlements) Resolve(ctx context.Context, workspaceID string) (tenancy.Entitlement, error) {
	if workspaceID == "w1" {
		return tenancy.Entitlement{Status: "active", Capabilities: map[string]bool{tenancy.CapabilityComms: true}}, nil
	}
	return tenancy.Entitlement{Status: "none"}, nil
}

func newTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)
	identity := usecase.NewResolveIdentityUseCase(adapter.PassthroughSessionResolver{}, stubMembers{})
	capability := usecase.NewRequireCapabilityUseCase(stubEntitlements{}, cacheadapter.NewMemoryCache())

	engine := gin.New()
	protected := engine.Group("/api")
	protected.Use(Identity(identity))
	protected.GET("/me", func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID})
	})

	comms := protected.Group("")
	comms.Use(RequireCapability(capability, tenancy.CapabilityComms))
	comms.GET("/comms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func request(engine *gin.Engine, path, user, workspace string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	if workspace != "" {
		req.Header.Set("X-Workspace-Id", workspace)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestIdentityMiddleware(t *testing.T) {
	engine := newTestServer()
	cases := []struct {
		name       string
		user       string
		workspace  string
		wantStatus int
	}{
		{"anonymous", "", "", http.StatusUnauthorized},
		{"no workspace", "u1", "", http.StatusBadRequest},
		{"not a member", "u9", "w1", http.StatusForbidden},
		{"member", "u1", "w1", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := request(engine, "/api/me", tc.user, tc.workspace); rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCapabilityGateReturns402(t *testing.T) {
	engine := newTestServer()
	if rec := request(engine, "/api/comms", "u1", "w1"); rec.Code != http.StatusOK {
		t.Fatalf("entitled status = %d, want 200", rec.Code)
	}
	if rec := request(engine, "/api/comms", "u1", "w2"); rec.Code != http.StatusPaymentRequired {
		t.Fatalf("unentitled status = %d, want 402, body %s", rec.Code, rec.Body.String())
	}
}
