package handler

import (
	"context"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyService is the company API surface used by CompanyHandler
type CompanyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partnerapp.CompanyResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.CompanyListFilter) ([]partnerapp.CompanyResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req partnerapp.UpdateCompanyRequest) (*partnerapp.CompanyResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListContacts(ctx context.Context, tenantID, companyID uuid.UUID, filter partnerapp.ContactListFilter) ([]partnerapp.ContactResponse, int64, error)
}

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	BaseHandler
	service CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(service CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// Create creates a company
func (h *CompanyHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	company, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// GetByID returns a company
func (h *CompanyHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	company, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// List returns a page of companies
func (h *CompanyHandler) List(c *gin.Context) {
	var filter partnerapp.CompanyListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	companies, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, companies, total, p, size)
}

// Update applies a partial update to a company
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	company, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Delete removes a company
func (h *CompanyHandler) Delete(c *gin.Context) {
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

// ListContacts returns the contacts working at a company
func (h *CompanyHandler) ListContacts(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter partnerapp.ContactListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	contacts, total, err := h.service.ListContacts(c.Request.Context(), tenantID(c), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, contacts, total, p, size)
}

// ContactService is the contact API surface used by ContactHandler
type ContactService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateContactRequest) (*partnerapp.ContactResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partnerapp.ContactResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.ContactListFilter) ([]partnerapp.ContactResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req partnerapp.UpdateContactRequest) (*partnerapp.ContactResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ContactHandler handles contact endpoints
type ContactHandler struct {
	BaseHandler
	service ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(service ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Create creates a contact
func (h *ContactHandler) Create(c *gin.Context) {
	var req partnerapp.CreateContactRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	contact, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// GetByID returns a contact
func (h *ContactHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	contact, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// List returns a page of contacts
func (h *ContactHandler) List(c *gin.Context) {
	var filter partnerapp.ContactListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	contacts, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, contacts, total, p, size)
}

// Update applies a partial update to a contact
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateContactRequest
	if !h.bindJSON(c, &req) {
		return
	}
	contact, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Delete removes a contact
func (h *ContactHandler) Delete(c *gin.Context) {
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

// CompetitorService is the competitor API surface used by CompetitorHandler
type CompetitorService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req partnerapp.CreateCompetitorRequest) (*partnerapp.CompetitorResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*partnerapp.CompetitorResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter partnerapp.CompetitorListFilter) ([]partnerapp.CompetitorResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req partnerapp.UpdateCompetitorRequest) (*partnerapp.CompetitorResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CompetitorHandler handles competitor endpoints
type CompetitorHandler struct {
	BaseHandler
	service CompetitorService
}

// NewCompetitorHandler creates a new CompetitorHandler
func NewCompetitorHandler(service CompetitorService) *CompetitorHandler {
	return &CompetitorHandler{service: service}
}

// Create creates a competitor
func (h *CompetitorHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCompetitorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	competitor, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, competitor)
}

// GetByID returns a competitor
func (h *CompetitorHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	competitor, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, competitor)
}

// List returns a page of competitors
func (h *CompetitorHandler) List(c *gin.Context) {
	var filter partnerapp.CompetitorListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	competitors, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, competitors, total, p, size)
}

// Update applies a partial update to a competitor
func (h *CompetitorHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCompetitorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	competitor, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, competitor)
}

// Delete removes a competitor
func (h *CompetitorHandler) Delete(c *gin.Context) {
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
