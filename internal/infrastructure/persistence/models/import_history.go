package models

import (
	"encoding/json"
	"time"

	"github.com/crm/backend/internal/domain/bulk"
)

// ImportHistoryModel is the persistence model for bulk.ImportHistory
type ImportHistoryModel struct {
	TenantAggregateModel
	EntityType   bulk.EntityType   `gorm:"type:varchar(30);not null;index"`
	Format       bulk.FileFormat   `gorm:"type:varchar(10);not null"`
	FileName     string            `gorm:"type:varchar(255);not null"`
	FileSize     int64             `gorm:"not null;default:0"`
	StorageKey   string            `gorm:"type:varchar(500)"`
	TotalRows    int               `gorm:"not null;default:0"`
	SuccessRows  int               `gorm:"not null;default:0"`
	UpdatedRows  int               `gorm:"not null;default:0"`
	SkippedRows  int               `gorm:"not null;default:0"`
	ErrorRows    int               `gorm:"not null;default:0"`
	ConflictMode bulk.ConflictMode `gorm:"type:varchar(20);not null;default:'skip'"`
	Status       bulk.Status       `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorDetails string            `gorm:"type:text;not null;default:'[]'"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the model to a domain ImportHistory
func (m *ImportHistoryModel) ToDomain() *bulk.ImportHistory {
	details := make([]bulk.ErrorDetail, 0)
	if m.ErrorDetails != "" {
		_ = json.Unmarshal([]byte(m.ErrorDetails), &details)
	}
	return &bulk.ImportHistory{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		EntityType:          m.EntityType,
		Format:              m.Format,
		FileName:            m.FileName,
		FileSize:            m.FileSize,
		StorageKey:          m.StorageKey,
		TotalRows:           m.TotalRows,
		SuccessRows:         m.SuccessRows,
		UpdatedRows:         m.UpdatedRows,
		SkippedRows:         m.SkippedRows,
		ErrorRows:           m.ErrorRows,
		ConflictMode:        m.ConflictMode,
		Status:              m.Status,
		ErrorDetails:        details,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
	}
}

// ImportHistoryModelFromDomain builds a model from a domain ImportHistory
func ImportHistoryModelFromDomain(h *bulk.ImportHistory) *ImportHistoryModel {
	details := "[]"
	if len(h.ErrorDetails) > 0 {
		if b, err := json.Marshal(h.ErrorDetails); err == nil {
			details = string(b)
		}
	}
	m := &ImportHistoryModel{
		EntityType:   h.EntityType,
		Format:       h.Format,
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		StorageKey:   h.StorageKey,
		TotalRows:    h.TotalRows,
		SuccessRows:  h.SuccessRows,
		UpdatedRows:  h.UpdatedRows,
		SkippedRows:  h.SkippedRows,
		ErrorRows:    h.ErrorRows,
		ConflictMode: h.ConflictMode,
		Status:       h.Status,
		ErrorDetails: details,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
	}
	m.FromDomainTenantAggregateRoot(h.TenantAggregateRoot)
	return m
}
