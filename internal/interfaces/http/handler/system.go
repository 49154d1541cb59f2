package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Pinger checks a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// poolReporter is implemented by persistence.Database
type poolReporter interface {
	PoolStats() sql.DBStats
}

// SystemHandler handles health and build information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Jewelry Shop API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string      `json:"status" example:"healthy"`
	Database string      `json:"database" example:"connected"`
	Pool     *PoolHealth `json:"pool,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// PoolHealth summarizes the database connection pool
type PoolHealth struct {
	Open    int   `json:"open"`
	InUse   int   `json:"in_use"`
	Idle    int   `json:"idle"`
	Waiting int64 `json:"wait_count"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports whether the API and its database are reachable
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logger.L(c.Request.Context()).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:   "unhealthy",
				Database: "disconnected",
				Error:    err.Error(),
			})
			return
		}
	}

	resp := HealthResponse{Status: "healthy", Database: "connected"}
	if r, ok := h.db.(poolReporter); ok {
		st := r.PoolStats()
		resp.Pool = &PoolHealth{Open: st.OpenConnections, InUse: st.InUse, Idle: st.Idle, Waiting: st.WaitCount}
	}
	c.JSON(http.StatusOK, resp)
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Description  Returns the service name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
