package bulk

import (
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntityType is a record kind that can be bulk imported
type EntityType string

const (
	EntityContacts      EntityType = "contacts"
	EntityCompanies     EntityType = "companies"
	EntityLeads         EntityType = "leads"
	EntityOpportunities EntityType = "opportunities"
	EntityCompetitors   EntityType = "competitors"
	EntityExpenses      EntityType = "expenses"
)

// EntityTypes lists every importable entity
var EntityTypes = []EntityType{
	EntityContacts, EntityCompanies, EntityLeads, EntityOpportunities, EntityCompetitors, EntityExpenses,
}

// IsValid checks if the entity type is importable
func (e EntityType) IsValid() bool {
	for _, known := range EntityTypes {
		if e == known {
			return true
		}
	}
	return false
}

// FileFormat is the source file format
type FileFormat string

const (
	FormatXLSX FileFormat = "xlsx"
	FormatJSON FileFormat = "json"
	FormatCSV  FileFormat = "csv"
)

// IsValid checks if the format is supported
func (f FileFormat) IsValid() bool {
	return f == FormatXLSX || f == FormatJSON || f == FormatCSV
}

// Status represents the status of an import run
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal returns true if this is a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ConflictMode defines how rows matching an existing record are handled
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "skip"
	ConflictModeUpdate ConflictMode = "update"
	ConflictModeFail   ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// ErrorDetail describes a rejected row
type ErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportHistory records the outcome of one executed import
type ImportHistory struct {
	shared.TenantAggregateRoot
	EntityType   EntityType
	Format       FileFormat
	FileName     string
	FileSize     int64
	StorageKey   string
	TotalRows    int
	SuccessRows  int
	UpdatedRows  int
	SkippedRows  int
	ErrorRows    int
	ConflictMode ConflictMode
	Status       Status
	ErrorDetails []ErrorDetail
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// NewImportHistory creates a pending history record
func NewImportHistory(tenantID uuid.UUID, entity EntityType, format FileFormat, fileName string, fileSize int64, mode ConflictMode) (*ImportHistory, error) {
	if !entity.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", fmt.Sprintf("Invalid entity type: %s", entity))
	}
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unsupported file format: %s", format))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", fmt.Sprintf("Invalid conflict mode: %s", mode))
	}

	return &ImportHistory{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EntityType:          entity,
		Format:              format,
		FileName:            fileName,
		FileSize:            fileSize,
		ConflictMode:        mode,
		Status:              StatusPending,
		ErrorDetails:        make([]ErrorDetail, 0),
	}, nil
}

// StartProcessing marks the import as running
func (h *ImportHistory) StartProcessing(totalRows int) error {
	if h.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	now := time.Now()
	h.Status = StatusProcessing
	h.TotalRows = totalRows
	h.StartedAt = &now
	h.Touch()
	return nil
}

// Complete records the final counters. An import where every row failed is
// marked failed rather than completed.
func (h *ImportHistory) Complete(success, updated, skipped, errorRows int, details []ErrorDetail) error {
	if h.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}

	h.Status = StatusCompleted
	if errorRows > 0 && success == 0 && updated == 0 {
		h.Status = StatusFailed
	}
	h.SuccessRows = success
	h.UpdatedRows = updated
	h.SkippedRows = skipped
	h.ErrorRows = errorRows
	if details == nil {
		details = make([]ErrorDetail, 0)
	}
	h.ErrorDetails = details
	now := time.Now()
	h.CompletedAt = &now
	h.Touch()
	return nil
}

// Abort records the counters of a run that stopped before its last row
// and marks it failed
func (h *ImportHistory) Abort(success, updated, skipped, errorRows int, details []ErrorDetail) error {
	if h.Status != StatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot abort from state: %s", h.Status))
	}
	h.SuccessRows = success
	h.UpdatedRows = updated
	h.SkippedRows = skipped
	h.ErrorRows = errorRows
	return h.Fail(details)
}

// Fail marks the import as failed
func (h *ImportHistory) Fail(details []ErrorDetail) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}
	h.Status = StatusFailed
	if details != nil {
		h.ErrorDetails = details
	}
	now := time.Now()
	h.CompletedAt = &now
	h.Touch()
	return nil
}

// SuccessRate returns imported plus updated rows as a percentage of total
func (h *ImportHistory) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.SuccessRows+h.UpdatedRows) / float64(h.TotalRows) * 100
}

// Duration returns how long the import ran
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}
