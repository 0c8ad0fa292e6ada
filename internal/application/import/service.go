// Package importapp runs bulk imports: upload, column mapping, validation
// and execution against the CRM repositories.
package importapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults applied to zero Options fields
const (
	DefaultMaxFileSize = 10 << 20
	DefaultMaxRows     = 10000
	DefaultMaxErrors   = 100
)

// Repositories groups the stores an import reads and writes
type Repositories struct {
	Companies     partner.CompanyRepository
	Contacts      partner.ContactRepository
	Competitors   partner.CompetitorRepository
	Leads         sales.LeadRepository
	Opportunities sales.OpportunityRepository
	Expenses      finance.ExpenseRepository
	Settings      settings.Repository
	History       bulk.ImportHistoryRepository
}

// Options bounds uploads
type Options struct {
	MaxFileSize int64
	MaxRows     int
	MaxErrors   int
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.MaxErrors <= 0 {
		o.MaxErrors = DefaultMaxErrors
	}
	return o
}

// Service handles bulk import sessions
type Service struct {
	repos    Repositories
	sessions dataimport.SessionStore
	archive  storage.ObjectStorage
	events   *event.Dispatcher
	metrics  *telemetry.BusinessMetrics
	opts     Options

	// mu serialises session state transitions
	mu sync.Mutex
}

// NewService creates a new import Service. archive and metrics may be nil.
func NewService(
	repos Repositories,
	sessions dataimport.SessionStore,
	archive storage.ObjectStorage,
	events *event.Dispatcher,
	metrics *telemetry.BusinessMetrics,
	opts Options,
) *Service {
	return &Service{
		repos:    repos,
		sessions: sessions,
		archive:  archive,
		events:   events,
		metrics:  metrics,
		opts:     opts.withDefaults(),
	}
}

// Upload parses a file into a new session and suggests a column mapping
func (s *Service) Upload(ctx context.Context, tenantID, userID uuid.UUID, req UploadRequest) (*UploadResponse, error) {
	entity, err := parseEntity(req.Entity)
	if err != nil {
		return nil, err
	}
	format, err := dataimport.DetectFormat(req.FileName)
	if err != nil {
		return nil, fileError(err)
	}

	data, err := io.ReadAll(io.LimitReader(req.Content, s.opts.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.opts.MaxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", fmt.Sprintf("File exceeds the maximum size of %d bytes", s.opts.MaxFileSize))
	}
	if len(data) == 0 {
		return nil, fileError(dataimport.ErrEmptyFile)
	}

	table, err := dataimport.Parse(format, bytes.NewReader(data), dataimport.ParseOptions{
		MaxRows: s.opts.MaxRows,
		Sheet:   req.Sheet,
	})
	if err != nil {
		return nil, fileError(err)
	}

	sess := dataimport.NewSession(tenantID, userID, entity, format, req.FileName, int64(len(data)), table)
	s.archiveUpload(ctx, sess, data)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &UploadResponse{
		SessionID:        sess.ID,
		Entity:           string(entity),
		Format:           string(format),
		FileName:         sess.FileName,
		Headers:          table.Headers,
		SuggestedMapping: dataimport.SuggestMapping(dataimport.MustFields(entity), table.Headers),
		TotalRows:        len(table.Rows),
		Preview:          preview(table),
		ExpiresAt:        sess.ExpiresAt,
	}, nil
}

// archiveUpload keeps the raw file in object storage. Failures only cost the archive.
func (s *Service) archiveUpload(ctx context.Context, sess *dataimport.Session, data []byte) {
	if s.archive == nil {
		return
	}
	key := storage.ImportArchiveKey(sess.TenantID, sess.ID, sess.FileName, sess.CreatedAt)
	if err := s.archive.Upload(ctx, key, data, storage.ContentTypeFor(sess.FileName)); err != nil {
		logger.L(ctx).Warn("failed to archive import file",
			zap.String("session_id", sess.ID.String()),
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	sess.ArchiveKey = key
}

// Validate applies a mapping to the session and checks every row
func (s *Service) Validate(ctx context.Context, tenantID, sessionID uuid.UUID, req ValidateRequest) (*ValidateResponse, error) {
	sess, err := s.session(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}

	validator := dataimport.NewValidator(
		dataimport.MustFields(sess.Entity),
		referenceResolver{tenantID: tenantID, repos: s.repos},
		s.opts.MaxErrors,
	)
	result, err := validator.Validate(ctx, sess.Table, req.Mapping)
	if err != nil {
		if errors.Is(err, dataimport.ErrInvalidMapping) {
			return nil, shared.NewDomainErrorWithCause("INVALID_MAPPING", err.Error(), err)
		}
		return nil, err
	}

	s.mu.Lock()
	err = sess.SetValidated(req.Mapping, result)
	if err == nil {
		err = s.sessions.Save(ctx, sess)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, stateError(err)
	}

	return &ValidateResponse{
		SessionID:   sess.ID,
		State:       string(sess.State),
		TotalRows:   result.TotalRows,
		ValidRows:   result.ValidRows,
		ErrorRows:   result.ErrorRows,
		Errors:      result.Errors.Errors(),
		TotalErrors: result.Errors.TotalCount(),
		IsTruncated: result.Errors.IsTruncated(),
		Preview:     mappedPreview(sess.Table, req.Mapping),
	}, nil
}

// Execute imports the valid rows of a validated session and records an
// ImportHistory entry. Rows written before a failure are kept.
func (s *Service) Execute(ctx context.Context, tenantID, sessionID uuid.UUID, req ExecuteRequest) (*ExecuteResponse, error) {
	mode := bulk.ConflictModeSkip
	if req.ConflictMode != "" {
		mode = bulk.ConflictMode(req.ConflictMode)
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", fmt.Sprintf("Invalid conflict mode: %s", mode))
	}

	sess, err := s.session(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	err = sess.StartImport()
	if err == nil {
		err = s.sessions.Save(ctx, sess)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, stateError(err)
	}

	resp, err := s.execute(ctx, sess, mode)

	s.mu.Lock()
	failed := err != nil || resp.Status == string(bulk.StatusFailed)
	if finishErr := sess.Finish(failed); finishErr == nil {
		if saveErr := s.sessions.Save(context.WithoutCancel(ctx), sess); saveErr != nil {
			logger.L(ctx).Warn("failed to save import session", zap.Error(saveErr))
		}
	}
	s.mu.Unlock()

	return resp, err
}

func (s *Service) execute(ctx context.Context, sess *dataimport.Session, mode bulk.ConflictMode) (*ExecuteResponse, error) {
	prefs, err := settings.Load(ctx, s.repos.Settings, sess.TenantID)
	if err != nil {
		return nil, err
	}

	history, err := bulk.NewImportHistory(sess.TenantID, sess.Entity, sess.Format, sess.FileName, sess.FileSize, mode)
	if err != nil {
		return nil, err
	}
	history.StorageKey = sess.ArchiveKey
	if sess.UserID != uuid.Nil {
		history.SetCreatedBy(sess.UserID)
	}
	validation := sess.Result
	if err := history.StartProcessing(validation.TotalRows); err != nil {
		return nil, err
	}
	if err := s.repos.History.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save import history: %w", err)
	}

	r := &run{tenantID: sess.TenantID, userID: sess.UserID, entity: sess.Entity, mode: mode, prefs: prefs}
	rowErrs := dataimport.NewErrorCollection(s.opts.MaxErrors)
	rowErrs.AddAll(validation.Errors.Errors())
	dropped := validation.Errors.TotalCount() - len(validation.Errors.Errors())

	resp := &ExecuteResponse{
		SessionID: sess.ID,
		HistoryID: history.ID,
		TotalRows: validation.TotalRows,
		ErrorRows: validation.ErrorRows,
	}

	var (
		fatal   error
		stopped bool
	)
rows:
	for _, rec := range validation.Records {
		if err := ctx.Err(); err != nil {
			fatal = err
			break
		}
		o, err := s.importRecord(ctx, r, rec)
		if err != nil {
			var domainErr *shared.DomainError
			if !errors.As(err, &domainErr) {
				fatal = fmt.Errorf("import row %d: %w", rec.Line, err)
				break
			}
			rowErrs.Add(dataimport.RowError{Row: rec.Line, Code: dataimport.ErrCodeRowFailed, Message: domainErr.Message})
			resp.ErrorRows++
			continue
		}
		switch o {
		case outcomeCreated:
			resp.ImportedRows++
		case outcomeUpdated:
			resp.UpdatedRows++
		case outcomeSkipped:
			resp.SkippedRows++
		case outcomeConflict:
			rowErrs.Add(dataimport.RowError{Row: rec.Line, Code: dataimport.ErrCodeConflict, Message: "A matching record already exists"})
			resp.ErrorRows++
			stopped = true
			break rows
		}
	}

	details := toErrorDetails(rowErrs.Errors())
	switch {
	case fatal != nil:
		err = history.Fail(details)
	case stopped:
		err = history.Abort(resp.ImportedRows, resp.UpdatedRows, resp.SkippedRows, resp.ErrorRows, details)
	default:
		err = history.Complete(resp.ImportedRows, resp.UpdatedRows, resp.SkippedRows, resp.ErrorRows, details)
	}
	if err != nil {
		return nil, err
	}
	// the run outcome is recorded even when the request was cancelled
	if err := s.repos.History.Save(context.WithoutCancel(ctx), history); err != nil {
		logger.L(ctx).Error("failed to save import history", zap.String("history_id", history.ID.String()), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordImport(string(sess.Entity), string(history.Status), resp.ImportedRows, resp.UpdatedRows, resp.SkippedRows, resp.ErrorRows)
	}

	logger.L(ctx).Info("import finished",
		zap.String("session_id", sess.ID.String()),
		zap.String("entity", string(sess.Entity)),
		zap.String("status", string(history.Status)),
		zap.Int("imported", resp.ImportedRows),
		zap.Int("updated", resp.UpdatedRows),
		zap.Int("skipped", resp.SkippedRows),
		zap.Int("errors", resp.ErrorRows),
	)
	if fatal != nil {
		return nil, fatal
	}

	resp.Status = string(history.Status)
	resp.Errors = rowErrs.Errors()
	resp.TotalErrors = rowErrs.TotalCount() + dropped
	resp.IsTruncated = resp.TotalErrors > len(resp.Errors)
	return resp, nil
}

// Cancel abandons a session that has not started importing
func (s *Service) Cancel(ctx context.Context, tenantID, sessionID uuid.UUID) error {
	sess, err := s.session(ctx, tenantID, sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sess.Cancel(); err != nil {
		return stateError(err)
	}
	return s.sessions.Save(ctx, sess)
}

// Fields lists the target fields of an entity
func (s *Service) Fields(entity string) ([]dataimport.Field, error) {
	e, err := parseEntity(entity)
	if err != nil {
		return nil, err
	}
	return dataimport.MustFields(e), nil
}

// Template renders an empty import file with one example row
func (s *Service) Template(entity, format string) (*dataimport.TemplateFile, error) {
	e, err := parseEntity(entity)
	if err != nil {
		return nil, err
	}
	f := bulk.FileFormat(format)
	if f == "" {
		f = bulk.FormatXLSX
	}
	if !f.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unsupported file format: %s", format))
	}
	return dataimport.Template(e, f)
}

// ListHistory lists executed imports, newest first
func (s *Service) ListHistory(ctx context.Context, tenantID uuid.UUID, filter HistoryListFilter) ([]HistoryResponse, int64, error) {
	domainFilter := filter.toDomain()
	items, err := s.repos.History.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repos.History.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]HistoryResponse, len(items))
	for i := range items {
		out[i] = ToHistoryResponse(&items[i])
	}
	return out, total, nil
}

// GetHistory returns one import history entry
func (s *Service) GetHistory(ctx context.Context, tenantID, id uuid.UUID) (*HistoryResponse, error) {
	h, err := s.repos.History.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Import history")
	}
	resp := ToHistoryResponse(h)
	return &resp, nil
}

func (s *Service) session(ctx context.Context, tenantID, id uuid.UUID) (*dataimport.Session, error) {
	sess, err := s.sessions.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, dataimport.ErrSessionNotFound) {
			return nil, shared.NotFound("Import session")
		}
		return nil, err
	}
	return sess, nil
}

func parseEntity(raw string) (bulk.EntityType, error) {
	entity := bulk.EntityType(raw)
	if !entity.IsValid() {
		return "", shared.NewDomainError("INVALID_ENTITY_TYPE", fmt.Sprintf("Invalid import entity: %s", raw))
	}
	return entity, nil
}

// fileError turns parser failures into client errors
func fileError(err error) error {
	switch {
	case errors.Is(err, dataimport.ErrTooManyRows):
		return shared.NewDomainErrorWithCause("TOO_MANY_ROWS", err.Error(), err)
	case errors.Is(err, dataimport.ErrUnsupportedFormat):
		return shared.NewDomainErrorWithCause("INVALID_FORMAT", err.Error(), err)
	case errors.Is(err, dataimport.ErrEmptyFile),
		errors.Is(err, dataimport.ErrMissingHeader),
		errors.Is(err, dataimport.ErrNoDataRows),
		errors.Is(err, dataimport.ErrInvalidEncoding),
		errors.Is(err, dataimport.ErrSheetNotFound),
		errors.Is(err, dataimport.ErrInvalidJSON):
		return shared.NewDomainErrorWithCause("INVALID_FILE", err.Error(), err)
	}
	return shared.NewDomainErrorWithCause("INVALID_FILE", "The file could not be parsed", err)
}

func stateError(err error) error {
	if errors.Is(err, dataimport.ErrInvalidState) {
		return shared.NewDomainErrorWithCause("INVALID_STATE", err.Error(), err)
	}
	return err
}

func toErrorDetails(errs []dataimport.RowError) []bulk.ErrorDetail {
	out := make([]bulk.ErrorDetail, len(errs))
	for i, e := range errs {
		out[i] = bulk.ErrorDetail{Row: e.Row, Column: e.Column, Code: e.Code, Message: e.Message, Value: e.Value}
	}
	return out
}

// mappedPreview shows the first rows keyed by target field
func mappedPreview(table *dataimport.Table, mapping dataimport.Mapping) []map[string]string {
	rows := preview(table)
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		m := make(map[string]string, len(mapping))
		for source, target := range mapping {
			if target != "" {
				m[target] = row[source]
			}
		}
		out[i] = m
	}
	return out
}
