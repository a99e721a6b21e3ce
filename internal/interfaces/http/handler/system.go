package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler serves health endpoints
type SystemHandler struct {
	BaseHandler
	db Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Healthz handles GET /healthz
func (h *SystemHandler) Healthz(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{"status": status})
}
