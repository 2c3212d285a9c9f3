package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/export"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/itinerary"
	"github.com/EthanH9977/JourneyXPro/internal/app/domain/planner"
	"github.com/EthanH9977/JourneyXPro/internal/app/models"
)

const (
	clientIDHeader   = "X-Client-ID"
	noPlanMessage    = "目前沒有行程，請先產生新的旅遊計畫。"
	notSyncedMessage = "尚未同步旅遊書。"
)

type createSessionRequest struct {
	ClientID string `json:"clientId"`
}

type adjustRequest struct {
	Feedback string `json:"feedback"`
}

type syncRequest struct {
	Account string `json:"account"`
	Title   string `json:"title"`
}

type bookResponse struct {
	Title string                 `json:"title"`
	Days  []models.TravelBookDay `json:"days"`
}

type PlannerHandler struct {
	registry    *planner.Registry
	logger      *zap.Logger
	pdfFontPath string
}

func NewPlannerHandler(registry *planner.Registry, logger *zap.Logger, pdfFontPath string) *PlannerHandler {
	return &PlannerHandler{registry: registry, logger: logger, pdfFontPath: pdfFontPath}
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrGenerationInFlight), errors.Is(err, planner.ErrSyncInFlight):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPrecondition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *PlannerHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Planner request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *PlannerHandler) session(c *gin.Context) (*planner.Session, bool) {
	s, err := h.registry.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

// watch drains the outcome of a background operation. Failures are already
// reflected in the session; this only keeps a log trail.
func (h *PlannerHandler) watch(sessionID, op string, done <-chan error) {
	go func() {
		if err := <-done; err != nil {
			h.logger.Info("Background planner operation finished with error",
				zap.String("session_id", sessionID),
				zap.String("operation", op),
				zap.Error(err))
		}
	}()
}

func (h *PlannerHandler) CreateSession(c *gin.Context) {
	var body createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	clientID := strings.TrimSpace(body.ClientID)
	if clientID == "" {
		clientID = strings.TrimSpace(c.GetHeader(clientIDHeader))
	}
	s := h.registry.Create(c.Request.Context(), clientID)
	c.JSON(http.StatusCreated, s.Snapshot())
}

func (h *PlannerHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *PlannerHandler) DeleteSession(c *gin.Context) {
	if !h.registry.Remove(c.Param("id")) {
		h.fail(c, planner.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlannerHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req models.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	done, err := s.SubmitAsync(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.watch(s.ID(), "submit", done)
	c.JSON(http.StatusAccepted, s.Snapshot())
}

func (h *PlannerHandler) Adjust(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body adjustRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	done, err := s.AdjustAsync(c.Request.Context(), body.Feedback)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.watch(s.ID(), "adjust", done)
	c.JSON(http.StatusAccepted, s.Snapshot())
}

func (h *PlannerHandler) OpenAdjustment(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.OpenAdjustment()
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *PlannerHandler) Save(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	trip, err := s.Save(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *PlannerHandler) Select(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Select(c.Param("tripId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *PlannerHandler) DeleteSaved(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Delete(c.Request.Context(), c.Param("tripId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *PlannerHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reset()
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *PlannerHandler) LoadSample(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.LoadSample()
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *PlannerHandler) Sync(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var body syncRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	done, err := s.SyncAsync(c.Request.Context(), body.Account, body.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.watch(s.ID(), "sync", done)
	c.JSON(http.StatusAccepted, s.Snapshot())
}

func (h *PlannerHandler) Markers(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, itinerary.ExtractMapMarkers(s.Plan()))
}

func (h *PlannerHandler) plan(c *gin.Context) (*planner.Session, *models.TripPlan, bool) {
	s, ok := h.session(c)
	if !ok {
		return nil, nil, false
	}
	plan := s.Plan()
	if plan == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noPlanMessage})
		return nil, nil, false
	}
	return s, plan, true
}

func (h *PlannerHandler) Book(c *gin.Context) {
	_, plan, ok := h.plan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, bookResponse{Title: plan.TripTitle, Days: itinerary.ToTravelBook(plan)})
}

func (h *PlannerHandler) BookHTML(c *gin.Context) {
	_, plan, ok := h.plan(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.BookView(plan, itinerary.ToTravelBook(plan)).Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render travel book view", zap.Error(err))
	}
}

func (h *PlannerHandler) BookPDF(c *gin.Context) {
	s, plan, ok := h.plan(c)
	if !ok {
		return
	}
	pdf, err := export.RenderPDF(plan, itinerary.ToTravelBook(plan), export.PDFOptions{
		FontPath: h.pdfFontPath,
		Link:     s.LastSyncedLink(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="journey-%s.pdf"`, s.ID()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *PlannerHandler) SyncQRCode(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	link := s.LastSyncedLink()
	if link == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": notSyncedMessage})
		return
	}
	png, err := export.QRCodePNG(link)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
