package handler

import (
	"context"

	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadService is the lead API surface used by LeadHandler
type LeadService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req salesapp.CreateLeadRequest) (*salesapp.LeadResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*salesapp.LeadResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter salesapp.LeadListFilter) ([]salesapp.LeadResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req salesapp.UpdateLeadRequest) (*salesapp.LeadResponse, error)
	Move(ctx context.Context, tenantID, id uuid.UUID, req salesapp.MoveRequest) (*salesapp.LeadResponse, error)
	Convert(ctx context.Context, tenantID, id uuid.UUID, createdBy *uuid.UUID) (*salesapp.ConvertLeadResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Board(ctx context.Context, tenantID uuid.UUID, filter salesapp.LeadListFilter) (*salesapp.BoardResponse[salesapp.LeadResponse], error)
}

// LeadStatusRequest moves a lead card on the kanban
type LeadStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	Position   *int   `json:"position" binding:"omitempty,min=0"`
	LostReason string `json:"lost_reason" binding:"max=500"`
}

// LeadHandler handles lead endpoints and the lead board
type LeadHandler struct {
	BaseHandler
	service LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(service LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// Create creates a lead
func (h *LeadHandler) Create(c *gin.Context) {
	var req salesapp.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	lead, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lead)
}

// GetByID returns a lead
func (h *LeadHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	lead, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// List returns a page of leads
func (h *LeadHandler) List(c *gin.Context) {
	var filter salesapp.LeadListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	leads, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, leads, total, p, size)
}

// Update applies a partial update to a lead
func (h *LeadHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lead, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// UpdateStatus moves a lead to another kanban column
func (h *LeadHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req LeadStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lead, err := h.service.Move(c.Request.Context(), tenantID(c), id, salesapp.MoveRequest{
		Stage:      req.Status,
		Position:   req.Position,
		LostReason: req.LostReason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// Convert turns a lead into an opportunity
func (h *LeadHandler) Convert(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Convert(c.Request.Context(), tenantID(c), id, userID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Delete removes a lead
func (h *LeadHandler) Delete(c *gin.Context) {
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

// Board returns the lead kanban
func (h *LeadHandler) Board(c *gin.Context) {
	var filter salesapp.LeadListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	board, err := h.service.Board(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}

// OpportunityService is the opportunity API surface used by OpportunityHandler
type OpportunityService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req salesapp.CreateOpportunityRequest) (*salesapp.OpportunityResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*salesapp.OpportunityResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter salesapp.OpportunityListFilter) ([]salesapp.OpportunityResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req salesapp.UpdateOpportunityRequest) (*salesapp.OpportunityResponse, error)
	Move(ctx context.Context, tenantID, id uuid.UUID, req salesapp.MoveRequest) (*salesapp.OpportunityResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Board(ctx context.Context, tenantID uuid.UUID, filter salesapp.OpportunityListFilter) (*salesapp.BoardResponse[salesapp.OpportunityResponse], error)
}

// OpportunityHandler handles opportunity endpoints and the deal board
type OpportunityHandler struct {
	BaseHandler
	service OpportunityService
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(service OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{service: service}
}

// Create creates an opportunity
func (h *OpportunityHandler) Create(c *gin.Context) {
	var req salesapp.CreateOpportunityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	opp, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, opp)
}

// GetByID returns an opportunity
func (h *OpportunityHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	opp, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opp)
}

// List returns a page of opportunities
func (h *OpportunityHandler) List(c *gin.Context) {
	var filter salesapp.OpportunityListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	opps, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, opps, total, p, size)
}

// Update applies a partial update to an opportunity
func (h *OpportunityHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.UpdateOpportunityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	opp, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opp)
}

// UpdateStage moves an opportunity to another kanban column
func (h *OpportunityHandler) UpdateStage(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req salesapp.MoveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	opp, err := h.service.Move(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opp)
}

// Delete removes an opportunity
func (h *OpportunityHandler) Delete(c *gin.Context) {
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

// Board returns the deal kanban
func (h *OpportunityHandler) Board(c *gin.Context) {
	var filter salesapp.OpportunityListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	board, err := h.service.Board(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}
