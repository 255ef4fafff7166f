package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/godi-api/internal/application/service"
	"github.com/sangkips/godi-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles getting dashboard statistics in the caller's calendar
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), *userID, GetLocation(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, stats)
}
