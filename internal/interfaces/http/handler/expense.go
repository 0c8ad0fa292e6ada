package handler

import (
	"context"

	financeapp "github.com/crm/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExpenseService is the expense API surface used by ExpenseHandler
type ExpenseService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req financeapp.CreateExpenseRequest) (*financeapp.ExpenseResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.ExpenseResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter financeapp.ExpenseListFilter) ([]financeapp.ExpenseResponse, int64, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, req financeapp.UpdateExpenseRequest) (*financeapp.ExpenseResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Submit(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.ExpenseResponse, error)
	Approve(ctx context.Context, tenantID, id, reviewerID uuid.UUID) (*financeapp.ExpenseResponse, error)
	Reject(ctx context.Context, tenantID, id, reviewerID uuid.UUID, req financeapp.RejectExpenseRequest) (*financeapp.ExpenseResponse, error)
	ReceiptUploadURL(ctx context.Context, tenantID, id uuid.UUID, req financeapp.ReceiptUploadRequest) (*financeapp.ReceiptURLResponse, error)
	ReceiptDownloadURL(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.ReceiptURLResponse, error)
	Summary(ctx context.Context, tenantID uuid.UUID, req financeapp.SummaryRequest) (*financeapp.SummaryResponse, error)
}

// ExpenseHandler handles expense endpoints and the approval workflow
type ExpenseHandler struct {
	BaseHandler
	service ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Create records a draft expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req financeapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.CreatedBy = userID(c)

	expense, err := h.service.Create(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID returns an expense
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	expense, err := h.service.GetByID(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List returns a page of expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var filter financeapp.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	expenses, total, err := h.service.List(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, expenses, total, p, size)
}

// Update edits a draft or rejected expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.service.Update(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete removes a draft or rejected expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
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

// Submit sends an expense for approval
func (h *ExpenseHandler) Submit(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	expense, err := h.service.Submit(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Approve approves a submitted expense on behalf of the acting user
func (h *ExpenseHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	reviewer := userID(c)
	if reviewer == nil {
		h.Unauthorized(c, "A reviewing user is required")
		return
	}
	expense, err := h.service.Approve(c.Request.Context(), tenantID(c), id, *reviewer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Reject rejects a submitted expense with a reason
func (h *ExpenseHandler) Reject(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	reviewer := userID(c)
	if reviewer == nil {
		h.Unauthorized(c, "A reviewing user is required")
		return
	}
	var req financeapp.RejectExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	expense, err := h.service.Reject(c.Request.Context(), tenantID(c), id, *reviewer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// ReceiptUploadURL issues a presigned URL for uploading the receipt
func (h *ExpenseHandler) ReceiptUploadURL(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	url, err := h.service.ReceiptUploadURL(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// ReceiptDownloadURL issues a presigned URL for the stored receipt
func (h *ExpenseHandler) ReceiptDownloadURL(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.service.ReceiptDownloadURL(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, url)
}

// Summary totals expenses by category and month
func (h *ExpenseHandler) Summary(c *gin.Context) {
	var req financeapp.SummaryRequest
	if !h.bindQuery(c, &req) {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), tenantID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
