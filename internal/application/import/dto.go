package importapp

import (
	"io"
	"time"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/shared"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/google/uuid"
)

// PreviewRows is how many rows upload and validation responses echo back
const PreviewRows = 5

// UploadRequest carries an uploaded file
type UploadRequest struct {
	Entity   string
	FileName string
	// Sheet selects an xlsx worksheet; empty means the first one
	Sheet   string
	Content io.Reader
}

// UploadResponse describes a freshly parsed session
type UploadResponse struct {
	SessionID        uuid.UUID           `json:"session_id"`
	Entity           string              `json:"entity"`
	Format           string              `json:"format"`
	FileName         string              `json:"file_name"`
	Headers          []string            `json:"headers"`
	SuggestedMapping dataimport.Mapping  `json:"suggested_mapping"`
	TotalRows        int                 `json:"total_rows"`
	Preview          []map[string]string `json:"preview"`
	ExpiresAt        time.Time           `json:"expires_at"`
}

// ValidateRequest maps source columns onto target fields
type ValidateRequest struct {
	Mapping dataimport.Mapping `json:"mapping" binding:"required"`
}

// ValidateResponse summarises a validation pass
type ValidateResponse struct {
	SessionID   uuid.UUID             `json:"session_id"`
	State       string                `json:"state"`
	TotalRows   int                   `json:"total_rows"`
	ValidRows   int                   `json:"valid_rows"`
	ErrorRows   int                   `json:"error_rows"`
	Errors      []dataimport.RowError `json:"errors"`
	TotalErrors int                   `json:"total_errors"`
	IsTruncated bool                  `json:"is_truncated"`
	Preview     []map[string]string   `json:"preview"`
}

// ExecuteRequest selects how rows matching existing records are handled
type ExecuteRequest struct {
	ConflictMode string `json:"conflict_mode" binding:"omitempty,oneof=skip update fail"`
}

// ExecuteResponse reports the outcome of an import run
type ExecuteResponse struct {
	SessionID    uuid.UUID             `json:"session_id"`
	HistoryID    uuid.UUID             `json:"history_id"`
	Status       string                `json:"status"`
	TotalRows    int                   `json:"total_rows"`
	ImportedRows int                   `json:"imported_rows"`
	UpdatedRows  int                   `json:"updated_rows"`
	SkippedRows  int                   `json:"skipped_rows"`
	ErrorRows    int                   `json:"error_rows"`
	Errors       []dataimport.RowError `json:"errors"`
	TotalErrors  int                   `json:"total_errors"`
	IsTruncated  bool                  `json:"is_truncated"`
}

// HistoryResponse is an import history entry
type HistoryResponse struct {
	ID           uuid.UUID          `json:"id"`
	EntityType   string             `json:"entity_type"`
	Format       string             `json:"format"`
	FileName     string             `json:"file_name"`
	FileSize     int64              `json:"file_size"`
	StorageKey   string             `json:"storage_key,omitempty"`
	ConflictMode string             `json:"conflict_mode"`
	Status       string             `json:"status"`
	TotalRows    int                `json:"total_rows"`
	SuccessRows  int                `json:"success_rows"`
	UpdatedRows  int                `json:"updated_rows"`
	SkippedRows  int                `json:"skipped_rows"`
	ErrorRows    int                `json:"error_rows"`
	SuccessRate  float64            `json:"success_rate"`
	ErrorDetails []bulk.ErrorDetail `json:"error_details"`
	CreatedBy    *uuid.UUID         `json:"created_by,omitempty"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ToHistoryResponse converts an ImportHistory
func ToHistoryResponse(h *bulk.ImportHistory) HistoryResponse {
	return HistoryResponse{
		ID:           h.ID,
		EntityType:   string(h.EntityType),
		Format:       string(h.Format),
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		StorageKey:   h.StorageKey,
		ConflictMode: string(h.ConflictMode),
		Status:       string(h.Status),
		TotalRows:    h.TotalRows,
		SuccessRows:  h.SuccessRows,
		UpdatedRows:  h.UpdatedRows,
		SkippedRows:  h.SkippedRows,
		ErrorRows:    h.ErrorRows,
		SuccessRate:  h.SuccessRate(),
		ErrorDetails: h.ErrorDetails,
		CreatedBy:    h.CreatedBy,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
		CreatedAt:    h.CreatedAt,
	}
}

// HistoryListFilter filters the import history
type HistoryListFilter struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	EntityType string `form:"entity_type" binding:"omitempty,oneof=contacts companies leads opportunities competitors expenses"`
	Status     string `form:"status" binding:"omitempty,oneof=pending processing completed failed"`
}

func (f HistoryListFilter) toDomain() shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{},
	}
	if f.EntityType != "" {
		out.Filters["entity_type"] = f.EntityType
	}
	if f.Status != "" {
		out.Filters["status"] = f.Status
	}
	return out.Normalize()
}

func preview(table *dataimport.Table) []map[string]string {
	n := len(table.Rows)
	if n > PreviewRows {
		n = PreviewRows
	}
	out := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		out[i] = table.Rows[i].Values
	}
	return out
}
