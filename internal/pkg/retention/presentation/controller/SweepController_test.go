package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	retention "commscore/internal/pkg/retention/application/domain"
	"commscore/internal/pkg/retention/application/usecase"
	"commscore/internal/pkg/retention/persistence/repository/adapter"
)

func newSweepServer(token string, repo *adapter.MemSweepRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	policy := retention.Policy{ChatWindow: 90 * 24 * time.Hour, CommsWindow: 365 * 24 * time.Hour, BatchSize: 500}
	ctl := &SweepController{UC: usecase.NewSweepUseCase(policy, repo), Token: token}
	engine := gin.New()
	engine.POST("/internal/retention/sweep", ctl.Handle())
	return engine
}

func TestSweepRejectsBadToken(t *testing.T) {
	engine := newSweepServer("s3cret", adapter.NewMemSweepRepository())

	for _, header := range []string{"", "Bearer wrong", "s3cret", "Basic s3cret"} {
		req := httptest.NewRequest(http.MethodPost, "/internal/retention/sweep", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestSweepRejectsWhenTokenUnset(t *testing.T) {
	engine := newSweepServer("", adapter.NewMemSweepRepository())
	req := httptest.NewRequest(http.MethodPost, "/internal/retention/sweep", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSweepRunsWithValidToken(t *testing.T) {
	repo := adapter.NewMemSweepRepository()
	repo.Seed(retention.ClassChatMessages, time.Now().Add(-100*24*time.Hour), 3)
	engine := newSweepServer("s3cret", repo)

	req := httptest.NewRequest(http.MethodPost, "/internal/retention/sweep", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if remaining := repo.Remaining(retention.ClassChatMessages); remaining != 0 {
		t.Fatalf("remaining = %d, want 0", remaining)
	}
}
