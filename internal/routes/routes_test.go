package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/planner"
	"github.com/EthanH9977/JourneyXPro/internal/app/handlers"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/store"
)

func TestSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := planner.NewRegistry(func(ctx context.Context, id, key string) *planner.Session {
		return planner.NewSession(ctx, id, planner.Dependencies{Store: store.NewMemory()}, planner.Options{HistoryKey: key})
	}, time.Minute, zap.NewNop())

	r := gin.New()
	Setup(r, registry, handlers.NewPlannerHandler(registry, zap.NewNop(), ""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, w.Body.String())

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}
	for _, want := range []string{
		"POST /api/sessions",
		"GET /api/sessions/:id",
		"POST /api/sessions/:id/submit",
		"POST /api/sessions/:id/adjust",
		"POST /api/sessions/:id/adjust/open",
		"POST /api/sessions/:id/save",
		"POST /api/sessions/:id/select/:tripId",
		"DELETE /api/sessions/:id/saved/:tripId",
		"POST /api/sessions/:id/reset",
		"POST /api/sessions/:id/sample",
		"POST /api/sessions/:id/sync",
		"GET /api/sessions/:id/markers",
		"GET /api/sessions/:id/book",
		"GET /api/sessions/:id/book.html",
		"GET /api/sessions/:id/book.pdf",
		"GET /api/sessions/:id/sync/qr.png",
	} {
		assert.True(t, registered[want], want)
	}
}
