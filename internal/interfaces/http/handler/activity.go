package handler

import (
	"context"

	activityapp "github.com/crm/backend/internal/application/activity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityService is the activity API surface used by ActivityHandler
type ActivityService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req activityapp.CreateActivityRequest) (*activityapp.ActivityResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*activityapp.ActivityResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter activityapp.ActivityListFilter) ([]activityapp.ActivityResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req activityapp.UpdateActivityRequest) (*activityapp.ActivityResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Complete(ctx context.Context, tenantID, id uuid.UUID) (*activityapp.ActivityResponse, error)
	Reopen(ctx context.Context, tenantID, id uuid.UUID) (*activityapp.ActivityResponse, error)
	ListUpcoming(ctx context.Context, tenantID uuid.UUID, limit int) ([]activityapp.ActivityResponse, error)
	ListOverdue(ctx context.Context, tenantID uuid.UUID, filter activityapp.ActivityListFilter) ([]activityapp.ActivityResponse, int64, error)
	ListByRelated(ctx context.Context, tenantID uuid.UUID, kind string, id uuid.UUID, filter activityapp.ActivityListFilter) ([]activityapp.ActivityResponse, error)
}

// UpcomingQuery bounds the upcoming activity list
type UpcomingQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ActivityHandler handles activity endpoints
type ActivityHandler struct {
	BaseHandler
	service ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(service ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// Create creates an activity
func (h *ActivityHandler) Create(c *gin.Context) {
	var req activityapp.CreateActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	a, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, a)
}

// GetByID returns an activity
func (h *ActivityHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// List returns a page of activities
func (h *ActivityHandler) List(c *gin.Context) {
	var filter activityapp.ActivityListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, p, size)
}

// Update applies a partial update to an activity
func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req activityapp.UpdateActivityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Delete removes an activity
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tenantID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Complete marks an activity done
func (h *ActivityHandler) Complete(c *gin.Context) {
	h.transition(c, h.service.Complete)
}

// Reopen clears the completion of an activity
func (h *ActivityHandler) Reopen(c *gin.Context) {
	h.transition(c, h.service.Reopen)
}

func (h *ActivityHandler) transition(c *gin.Context, apply func(context.Context, uuid.UUID, uuid.UUID) (*activityapp.ActivityResponse, error)) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	a, err := apply(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, a)
}

// Upcoming returns the next open activities
func (h *ActivityHandler) Upcoming(c *gin.Context) {
	var q UpcomingQuery
	if !h.bindQuery(c, &q) {
		return
	}
	items, err := h.service.ListUpcoming(c.Request.Context(), tenantID(c), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Overdue returns a page of open activities past their due time
func (h *ActivityHandler) Overdue(c *gin.Context) {
	var filter activityapp.ActivityListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.service.ListOverdue(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, p, size)
}

// ListByRelated returns a handler listing the activities attached to the
// record named by the :id parameter. kind is contact, company, lead or opportunity.
func (h *ActivityHandler) ListByRelated(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		var filter activityapp.ActivityListFilter
		if !h.bindQuery(c, &filter) {
			return
		}
		items, err := h.service.ListByRelated(c.Request.Context(), tenantID(c), kind, id, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, items)
	}
}
