package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/planner"
	"github.com/EthanH9977/JourneyXPro/internal/app/handlers"
	"github.com/EthanH9977/JourneyXPro/internal/app/middleware"
)

// Setup registers the planning API and the health probe.
func Setup(r *gin.Engine, registry *planner.Registry, h *handlers.PlannerHandler) {
	r.GET(middleware.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": registry.Len()})
	})

	api := r.Group("/api")
	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)

		sessions.POST("/:id/submit", h.Submit)
		sessions.POST("/:id/adjust", h.Adjust)
		sessions.POST("/:id/adjust/open", h.OpenAdjustment)
		sessions.POST("/:id/reset", h.Reset)
		sessions.POST("/:id/sample", h.LoadSample)

		sessions.POST("/:id/save", h.Save)
		sessions.POST("/:id/select/:tripId", h.Select)
		sessions.DELETE("/:id/saved/:tripId", h.DeleteSaved)

		sessions.POST("/:id/sync", h.Sync)
		sessions.GET("/:id/sync/qr.png", h.SyncQRCode)

		sessions.GET("/:id/markers", h.Markers)
		sessions.GET("/:id/book", h.Book)
		sessions.GET("/:id/book.html", h.BookHTML)
		sessions.GET("/:id/book.pdf", h.BookPDF)
	}
}
