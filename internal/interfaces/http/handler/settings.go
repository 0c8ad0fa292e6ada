package handler

import (
	"context"

	settingsapp "github.com/crm/backend/internal/application/settings"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettingsService is the settings API surface used by SettingsHandler
type SettingsService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*settingsapp.SettingsResponse, error)
	Update(ctx context.Context, tenantID uuid.UUID, req settingsapp.UpdateSettingsRequest) (*settingsapp.SettingsResponse, error)
}

// SettingsHandler handles the tenant settings endpoints
type SettingsHandler struct {
	BaseHandler
	service SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the tenant settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context(), tenantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}

// Update saves a partial settings update
func (h *SettingsHandler) Update(c *gin.Context) {
	var req settingsapp.UpdateSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, err := h.service.Update(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}
