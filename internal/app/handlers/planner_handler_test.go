package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/booksync"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/planner"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
	"github.com/EthanH9977/JourneyXPro/internal/pkg/store"
)

type sampleGenerator struct{}

func (sampleGenerator) Generate(context.Context, models.TripRequest, string) (*models.ItineraryResponse, error) {
	return &models.ItineraryResponse{Plan: itinerary.SamplePlan(), GroundingChunks: []models.GroundingChunk{}}, nil
}

type memorySink struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func (m *memorySink) Write(_ context.Context, key booksync.DocumentKey, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key.Path()] = doc
	return nil
}

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type testServer struct {
	router *gin.Engine
	sink   *memorySink
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	sink := &memorySink{docs: map[string]map[string]any{}}
	gateway := booksync.NewGateway(sink, logger)
	trips := store.NewMemory()

	registry := planner.NewRegistry(func(ctx context.Context, sessionID, historyKey string) *planner.Session {
		return planner.NewSession(ctx, sessionID, planner.Dependencies{
			Generator: sampleGenerator{},
			Uploader:  gateway,
			Store:     trips,
			Logger:    logger,
		}, planner.Options{HistoryKey: historyKey, BookURL: "https://book.example"})
	}, time.Hour, logger)

	h := NewPlannerHandler(registry, logger, "")
	r := gin.New()
	api := r.Group("/api/sessions")
	api.POST("", h.CreateSession)
	api.GET("/:id", h.GetSession)
	api.DELETE("/:id", h.DeleteSession)
	api.POST("/:id/submit", h.Submit)
	api.POST("/:id/adjust", h.Adjust)
	api.POST("/:id/adjust/open", h.OpenAdjustment)
	api.POST("/:id/save", h.Save)
	api.POST("/:id/select/:tripId", h.Select)
	api.DELETE("/:id/saved/:tripId", h.DeleteSaved)
	api.POST("/:id/reset", h.Reset)
	api.POST("/:id/sample", h.LoadSample)
	api.POST("/:id/sync", h.Sync)
	api.GET("/:id/markers", h.Markers)
	api.GET("/:id/book", h.Book)
	api.GET("/:id/book.html", h.BookHTML)
	api.GET("/:id/book.pdf", h.BookPDF)
	api.GET("/:id/sync/qr.png", h.SyncQRCode)
	return &testServer{router: r, sink: sink}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) planner.Snapshot {
	t.Helper()
	var snap planner.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func (ts *testServer) createSession(t *testing.T) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/sessions", map[string]string{"clientId": "client-1"})
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decodeSnapshot(t, w)
	require.NotEmpty(t, snap.ID)
	assert.Equal(t, planner.StateIdle, snap.State)
	return snap.ID
}

func (ts *testServer) snapshot(t *testing.T, id string) planner.Snapshot {
	w := ts.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return decodeSnapshot(t, w)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(planner.ErrGenerationInFlight))
	assert.Equal(t, http.StatusConflict, StatusFor(planner.ErrSyncInFlight))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(planner.ErrNoPlan))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(booksync.ErrAccountRequired))
	assert.Equal(t, http.StatusNotFound, StatusFor(planner.ErrTripNotFound))
	assert.Equal(t, http.StatusNotFound, StatusFor(planner.ErrSessionNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("disk full")))
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/sessions/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/sessions/nope/sample", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/sessions/nope", nil).Code)
}

func TestSubmitFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", map[string]string{"destination": "日本京都"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing dates must fail binding")

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/submit", itinerary.SampleRequest())
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		return ts.snapshot(t, id).State == planner.StateReady
	}, 2*time.Second, 10*time.Millisecond)

	snap := ts.snapshot(t, id)
	require.NotNil(t, snap.Plan)
	assert.Equal(t, itinerary.SamplePlan().TripTitle, snap.Plan.TripTitle)
}

func TestAdjustPreconditions(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/adjust", map[string]string{"feedback": "多一點美食"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/sample", nil).Code)
	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/adjust/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeSnapshot(t, w).AdjustmentOpen)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/adjust", map[string]string{"feedback": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/adjust", map[string]string{"feedback": "多一點美食"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Eventually(t, func() bool {
		return ts.snapshot(t, id).State == planner.StateReady
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSampleExports(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodGet, "/api/sessions/"+id+"/book", nil).Code)

	w := ts.do(t, http.MethodGet, "/api/sessions/"+id+"/markers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/sample", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, planner.StateReady, decodeSnapshot(t, w).State)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/markers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var markers []models.MapMarker
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &markers))
	assert.NotEmpty(t, markers)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/book", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var book bookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	sample := itinerary.SamplePlan()
	assert.Len(t, book.Days, len(sample.Days))

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/book.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<html")

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/book.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestSaveSelectDelete(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/save", nil).Code)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/sample", nil).Code)
	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/save", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var trip models.SavedTrip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trip))
	require.NotEmpty(t, trip.ID)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeSnapshot(t, w).Plan)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/select/missing", nil).Code)

	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/select/"+trip.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	require.NotNil(t, snap.Plan)
	assert.True(t, snap.CurrentSaved)

	w = ts.do(t, http.MethodDelete, "/api/sessions/"+id+"/saved/"+trip.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeSnapshot(t, w).SavedTrips)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/sessions/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/sessions/"+id, nil).Code)
}

func TestSyncFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createSession(t)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/sessions/"+id+"/sync/qr.png", nil).Code)

	w := ts.do(t, http.MethodPost, "/api/sessions/"+id+"/sync", map[string]string{"account": "amy"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/sessions/"+id+"/sample", nil).Code)
	w = ts.do(t, http.MethodPost, "/api/sessions/"+id+"/sync", map[string]string{"account": "amy", "title": "Kyoto Trip"})
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Eventually(t, func() bool {
		return ts.snapshot(t, id).LastSyncedLink != ""
	}, 2*time.Second, 10*time.Millisecond)

	snap := ts.snapshot(t, id)
	assert.Equal(t, "https://book.example?user=amy&file=kyoto-trip", snap.LastSyncedLink)
	assert.False(t, snap.Syncing)
	assert.Equal(t, 1, ts.sink.count())

	w = ts.do(t, http.MethodGet, "/api/sessions/"+id+"/sync/qr.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}
