package handlers

import (
	"net/http"

	"traceaq/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Status func() utils.HealthStatus
}

func NewHealthHandler(status func() utils.HealthStatus) *HealthHandler {
	return &HealthHandler{Status: status}
}

// Health reports the last dependency check. It answers 503 while a dependency is down.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Status()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
