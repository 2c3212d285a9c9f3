package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/domain/planner"
	"github.com/EthanH9977/JourneyXPro/internal/app/handlers"
	"github.com/EthanH9977/JourneyXPro/internal/app/middleware"
	"github.com/EthanH9977/JourneyXPro/internal/routes"
)

// RouterOptions carries the settings the router needs from config.
type RouterOptions struct {
	ServiceName string
	GinMode     string
	PDFFontPath string
}

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(registry *planner.Registry, opts RouterOptions, logger *zap.Logger) *gin.Engine {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.OTELGinMiddleware(opts.ServiceName))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	routes.Setup(r, registry, handlers.NewPlannerHandler(registry, logger, opts.PDFFontPath))

	return r
}
