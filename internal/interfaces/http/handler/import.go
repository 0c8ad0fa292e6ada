package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	importapp "github.com/crm/backend/internal/application/import"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadFormField is the multipart field carrying the import file
const UploadFormField = "file"

// ImportService is the import API surface used by ImportHandler
type ImportService interface {
	Upload(ctx context.Context, tenantID, userID uuid.UUID, req importapp.UploadRequest) (*importapp.UploadResponse, error)
	Validate(ctx context.Context, tenantID, sessionID uuid.UUID, req importapp.ValidateRequest) (*importapp.ValidateResponse, error)
	Execute(ctx context.Context, tenantID, sessionID uuid.UUID, req importapp.ExecuteRequest) (*importapp.ExecuteResponse, error)
	Cancel(ctx context.Context, tenantID, sessionID uuid.UUID) error
	Fields(entity string) ([]dataimport.Field, error)
	Template(entity, format string) (*dataimport.TemplateFile, error)
	ListHistory(ctx context.Context, tenantID uuid.UUID, filter importapp.HistoryListFilter) ([]importapp.HistoryResponse, int64, error)
	GetHistory(ctx context.Context, tenantID, id uuid.UUID) (*importapp.HistoryResponse, error)
}

// TemplateQuery selects the template file format
type TemplateQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

// ImportHandler handles the bulk import pipeline
type ImportHandler struct {
	BaseHandler
	service ImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(service ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// Upload parses a multipart file into an import session
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile(UploadFormField)
	if err != nil {
		h.bindUploadError(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	var actor uuid.UUID
	if id := userID(c); id != nil {
		actor = *id
	}

	result, err := h.service.Upload(c.Request.Context(), tenantID(c), actor, importapp.UploadRequest{
		Entity:   c.Param("entity"),
		FileName: fileHeader.Filename,
		Sheet:    c.PostForm("sheet"),
		Content:  file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *ImportHandler) bindUploadError(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.bindError(c, err)
		return
	}
	h.BadRequest(c, "A file must be uploaded in the '"+UploadFormField+"' form field")
}

// Validate applies a column mapping and checks every row
func (h *ImportHandler) Validate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req importapp.ValidateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.Validate(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Execute imports the validated rows
func (h *ImportHandler) Execute(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req importapp.ExecuteRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.Execute(c.Request.Context(), tenantID(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel abandons a session
func (h *ImportHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), tenantID(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Fields lists the importable fields of an entity
func (h *ImportHandler) Fields(c *gin.Context) {
	fields, err := h.service.Fields(c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fields)
}

// Template downloads an import template as an attachment
func (h *ImportHandler) Template(c *gin.Context) {
	var q TemplateQuery
	if !h.bindQuery(c, &q) {
		return
	}
	file, err := h.service.Template(c.Param("entity"), q.Format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// ListHistory returns a page of past imports
func (h *ImportHandler) ListHistory(c *gin.Context) {
	var filter importapp.HistoryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	items, total, err := h.service.ListHistory(c.Request.Context(), tenantID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, size := page(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, p, size)
}

// GetHistory returns one past import
func (h *ImportHandler) GetHistory(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.service.GetHistory(c.Request.Context(), tenantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}
