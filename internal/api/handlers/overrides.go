package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/scoutlab/vexscout/internal/models"
	"github.com/scoutlab/vexscout/internal/services"
	"github.com/scoutlab/vexscout/pkg/utils"
)

// OverridesHandler exposes the human layer on top of the computed analysis:
// eye-test ratings, scouting notes, observed elimination results, and live
// pick tracking during alliance selection.
type OverridesHandler struct {
	store services.OverrideStore
}

func NewOverridesHandler(store services.OverrideStore) *OverridesHandler {
	return &OverridesHandler{
		store: store,
	}
}

// GetOverrides returns everything recorded for an event.
func (h *OverridesHandler) GetOverrides(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context(), c.Param("sku"))
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, snap)
}

// SetRating records a 1-10 eye-test rating for a team. Rating 0 removes it.
func (h *OverridesHandler) SetRating(c *gin.Context) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if err := h.store.SetRating(c.Request.Context(), c.Param("sku"), c.Param("team"), req.Rating); err != nil {
		utils.SendValidationError(c, "Invalid rating", err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"team": c.Param("team"), "rating": req.Rating})
}

// SetNote attaches a free-text scouting note to a team. An empty note clears
// the existing one.
func (h *OverridesHandler) SetNote(c *gin.Context) {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	if err := h.store.SetNote(c.Request.Context(), c.Param("sku"), c.Param("team"), req.Note); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"team": c.Param("team"), "note": req.Note})
}

// AddHeadToHead records an observed elimination result, which feeds the
// overperformance checks on the next analysis run.
func (h *OverridesHandler) AddHeadToHead(c *gin.Context) {
	var req struct {
		Winner string `json:"winner" binding:"required"`
		Loser  string `json:"loser" binding:"required"`
		Round  string `json:"round"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	record := models.HeadToHead{Winner: req.Winner, Loser: req.Loser, Round: req.Round}
	if err := h.store.AddHeadToHead(c.Request.Context(), c.Param("sku"), record); err != nil {
		utils.SendValidationError(c, "Invalid head-to-head record", err.Error())
		return
	}
	utils.SendSuccess(c, record)
}

// ClearHeadToHead drops all recorded elimination results for an event.
func (h *OverridesHandler) ClearHeadToHead(c *gin.Context) {
	if err := h.store.ClearHeadToHead(c.Request.Context(), c.Param("sku")); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"cleared": true})
}

// PickTeam marks a team as taken during live alliance selection.
func (h *OverridesHandler) PickTeam(c *gin.Context) {
	if err := h.store.SetPicked(c.Request.Context(), c.Param("sku"), c.Param("team"), true); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"team": c.Param("team"), "picked": true})
}

// UnpickTeam undoes a pick, usually after a mis-tap.
func (h *OverridesHandler) UnpickTeam(c *gin.Context) {
	if err := h.store.SetPicked(c.Request.Context(), c.Param("sku"), c.Param("team"), false); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"team": c.Param("team"), "picked": false})
}

// ResetPicks clears all picks, for restarting alliance selection tracking.
func (h *OverridesHandler) ResetPicks(c *gin.Context) {
	if err := h.store.ResetPicks(c.Request.Context(), c.Param("sku")); err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"reset": true})
}
