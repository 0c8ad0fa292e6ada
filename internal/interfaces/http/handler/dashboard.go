package handler

import (
	"context"

	"github.com/crm/backend/internal/application/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DashboardService computes the dashboard figures
type DashboardService interface {
	GetDashboard(ctx context.Context, tenantID uuid.UUID, req report.DashboardRequest) (*report.DashboardResponse, error)
}

// DashboardHandler serves the dashboard
type DashboardHandler struct {
	BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get returns totals, pipeline and expense figures for the requested period
func (h *DashboardHandler) Get(c *gin.Context) {
	var req report.DashboardRequest
	if !h.bindQuery(c, &req) {
		return
	}
	dashboard, err := h.service.GetDashboard(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
