package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scoutlab/vexscout/internal/engine"
	"github.com/scoutlab/vexscout/internal/models"
	"github.com/scoutlab/vexscout/internal/services"
	"github.com/scoutlab/vexscout/pkg/utils"
)

type AnalysisHandler struct {
	analysis *services.AnalysisService
}

func NewAnalysisHandler(analysis *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
	}
}

type analyzeResponse struct {
	Analysis *models.Analysis `json:"analysis"`
	Warning  string           `json:"warning,omitempty"`
}

// Analyze runs a full scouting analysis for one event. Results are cached, so
// repeat calls are cheap unless force is set.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req struct {
		SKU    string `json:"sku" binding:"required"`
		MyTeam string `json:"my_team"`
		Force  bool   `json:"force"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	analysis, err := h.analysis.Analyze(c.Request.Context(), req.SKU, req.MyTeam, req.Force)
	h.respond(c, analysis, err)
}

// Refresh forces a fresh fetch and re-analysis, bypassing the cache.
func (h *AnalysisHandler) Refresh(c *gin.Context) {
	var req struct {
		MyTeam string `json:"my_team"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	analysis, err := h.analysis.Refresh(c.Request.Context(), c.Param("sku"), req.MyTeam)
	h.respond(c, analysis, err)
}

// GetProgress reports where a running analysis is, for client-side progress
// bars. Unknown events report idle rather than an error.
func (h *AnalysisHandler) GetProgress(c *gin.Context) {
	utils.SendSuccess(c, h.analysis.Progress(c.Param("sku")))
}

// GetTrackedEvents lists the events the background refresher keeps warm.
func (h *AnalysisHandler) GetTrackedEvents(c *gin.Context) {
	events, err := h.analysis.TrackedEvents(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	if events == nil {
		events = []services.TrackedEvent{}
	}
	utils.SendSuccess(c, events)
}

func (h *AnalysisHandler) respond(c *gin.Context, analysis *models.Analysis, err error) {
	switch {
	case err == nil:
		utils.SendSuccess(c, analyzeResponse{Analysis: analysis})
	case errors.Is(err, engine.ErrTeamNotFound) && analysis != nil:
		// The field analysis is still usable without the caller's team.
		utils.SendSuccess(c, analyzeResponse{Analysis: analysis, Warning: err.Error()})
	case errors.Is(err, utils.ErrInvalidInput):
		utils.SendValidationError(c, "Invalid request", err.Error())
	case errors.Is(err, utils.ErrEventNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, engine.ErrNoRankings):
		utils.SendError(c, http.StatusNotFound, utils.NewAppError(utils.ErrCodeNoRankings, "No rankings available for event", err.Error()))
	default:
		utils.SendError(c, http.StatusBadGateway, utils.NewAppError(utils.ErrCodeUpstream, "Analysis failed", err.Error()))
	}
}
