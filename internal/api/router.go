package api

import (
	"github.com/gin-gonic/gin"
	"github.com/scoutlab/vexscout/internal/api/handlers"
	"github.com/scoutlab/vexscout/internal/services"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, analysis *services.AnalysisService, overrides services.OverrideStore, refresher *services.RefresherService) {
	analysisHandler := handlers.NewAnalysisHandler(analysis)
	overridesHandler := handlers.NewOverridesHandler(overrides)
	healthHandler := handlers.NewHealthHandler(refresher)

	// Analysis endpoints
	group.POST("/analyze", analysisHandler.Analyze)
	group.POST("/events/:sku/refresh", analysisHandler.Refresh)
	group.GET("/events/:sku/progress", analysisHandler.GetProgress)
	group.GET("/events/tracked", analysisHandler.GetTrackedEvents)

	// Override endpoints
	group.GET("/events/:sku/overrides", overridesHandler.GetOverrides)
	group.PUT("/events/:sku/teams/:team/rating", overridesHandler.SetRating)
	group.PUT("/events/:sku/teams/:team/note", overridesHandler.SetNote)
	group.POST("/events/:sku/h2h", overridesHandler.AddHeadToHead)
	group.DELETE("/events/:sku/h2h", overridesHandler.ClearHeadToHead)

	// Alliance selection pick tracking
	group.POST("/events/:sku/teams/:team/pick", overridesHandler.PickTeam)
	group.DELETE("/events/:sku/teams/:team/pick", overridesHandler.UnpickTeam)
	group.POST("/events/:sku/picks/reset", overridesHandler.ResetPicks)

	// Operational status
	group.GET("/status", healthHandler.GetStatus)
}
