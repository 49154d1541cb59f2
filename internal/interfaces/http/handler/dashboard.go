package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jewelry/backend/internal/application/trade"
)

// DashboardHandler serves the admin home page figures
type DashboardHandler struct {
	BaseHandler
	dashboardService *trade.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *trade.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats godoc
// @Summary      Dashboard statistics
// @Description  Order counts per status, revenue of delivered orders, catalog and customer counts, moderation backlog and the latest orders
// @Tags         admin-dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=trade.DashboardStats}
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
