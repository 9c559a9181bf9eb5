package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scoutlab/vexscout/internal/services"
)

type HealthHandler struct {
	refresher *services.RefresherService
}

func NewHealthHandler(refresher *services.RefresherService) *HealthHandler {
	return &HealthHandler{
		refresher: refresher,
	}
}

// GetHealth returns basic health status - always returns 200 if server is running
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "vexscout",
		"time":    time.Now().UTC(),
	})
}

// GetStatus reports background refresher state for operational visibility.
func (h *HealthHandler) GetStatus(c *gin.Context) {
	status := gin.H{
		"status": "ok",
	}
	if h.refresher != nil {
		status["refresher"] = h.refresher.Status()
	}
	c.JSON(http.StatusOK, status)
}
