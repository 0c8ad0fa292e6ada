package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	identityapp "github.com/crm/backend/internal/application/identity"
	importapp "github.com/crm/backend/internal/application/import"
	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/domain/shared"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Service doubles embed the interface so unexercised methods stay unimplemented.

type leadServiceMock struct {
	LeadService
	mock.Mock
}

func (m *leadServiceMock) Move(ctx context.Context, tenantID, id uuid.UUID, req salesapp.MoveRequest) (*salesapp.LeadResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.LeadResponse), args.Error(1)
}

func (m *leadServiceMock) Convert(ctx context.Context, tenantID, id uuid.UUID, createdBy *uuid.UUID) (*salesapp.ConvertLeadResponse, error) {
	args := m.Called(ctx, tenantID, id, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salesapp.ConvertLeadResponse), args.Error(1)
}

type expenseServiceStub struct {
	ExpenseService
}

type importServiceMock struct {
	ImportService
	mock.Mock
	uploaded []byte
}

func (m *importServiceMock) Upload(ctx context.Context, tenantID, userID uuid.UUID, req importapp.UploadRequest) (*importapp.UploadResponse, error) {
	m.uploaded, _ = io.ReadAll(req.Content)
	args := m.Called(ctx, tenantID, userID, req.Entity, req.FileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.UploadResponse), args.Error(1)
}

func (m *importServiceMock) Execute(ctx context.Context, tenantID, sessionID uuid.UUID, req importapp.ExecuteRequest) (*importapp.ExecuteResponse, error) {
	args := m.Called(ctx, tenantID, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*importapp.ExecuteResponse), args.Error(1)
}

func (m *importServiceMock) Template(entity, format string) (*dataimport.TemplateFile, error) {
	args := m.Called(entity, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataimport.TemplateFile), args.Error(1)
}

type authServiceStub struct {
	AuthService
}

func TestLeadHandler_UpdateStatus(t *testing.T) {
	svc := new(leadServiceMock)
	h := NewLeadHandler(svc)
	id := uuid.New()
	position := 2
	svc.On("Move", mock.Anything, mock.Anything, id, salesapp.MoveRequest{Stage: "warm", Position: &position}).
		Return(&salesapp.LeadResponse{ID: id, Status: "warm", Position: 2}, nil)

	w := do(t, route(http.MethodPatch, "/leads/:id/status", h.UpdateStatus), http.MethodPatch,
		"/leads/"+id.String()+"/status", map[string]any{"status": "warm", "position": 2}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "warm", dataAs[salesapp.LeadResponse](t, w).Status)
	svc.AssertExpectations(t)
}

func TestLeadHandler_UpdateStatusRequiresStatus(t *testing.T) {
	h := NewLeadHandler(new(leadServiceMock))

	w := do(t, route(http.MethodPatch, "/leads/:id/status", h.UpdateStatus), http.MethodPatch,
		"/leads/"+uuid.NewString()+"/status", map[string]any{"position": 0}, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "status", resp.Error.Details[0].Field)
}

func TestLeadHandler_ConvertTwice(t *testing.T) {
	svc := new(leadServiceMock)
	h := NewLeadHandler(svc)
	id := uuid.New()
	svc.On("Convert", mock.Anything, mock.Anything, id, (*uuid.UUID)(nil)).
		Return(nil, shared.NewDomainError("ALREADY_CONVERTED", "Lead has already been converted"))

	w := do(t, route(http.MethodPost, "/leads/:id/convert", h.Convert), http.MethodPost, "/leads/"+id.String()+"/convert", nil, nil)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_CONVERTED", decode(t, w).Error.Code)
}

func TestExpenseHandler_ReviewRequiresUser(t *testing.T) {
	h := NewExpenseHandler(expenseServiceStub{})
	id := uuid.NewString()

	w := do(t, route(http.MethodPost, "/expenses/:id/approve", h.Approve), http.MethodPost, "/expenses/"+id+"/approve", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, route(http.MethodPost, "/expenses/:id/reject", h.Reject), http.MethodPost, "/expenses/"+id+"/reject",
		map[string]any{"reason": "duplicate"}, map[string]string{UserIDHeader: "not-a-uuid"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportHandler_Upload(t *testing.T) {
	svc := new(importServiceMock)
	h := NewImportHandler(svc)
	user := uuid.New()
	session := uuid.New()
	svc.On("Upload", mock.Anything, mock.Anything, user, "contacts", "people.csv").
		Return(&importapp.UploadResponse{SessionID: session, Entity: "contacts", TotalRows: 1}, nil)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile(UploadFormField, "people.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("first_name,last_name\nAda,Lovelace\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/contacts/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(UserIDHeader, user.String())
	w := httptest.NewRecorder()
	route(http.MethodPost, "/import/:entity/upload", h.Upload).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, session, dataAs[importapp.UploadResponse](t, w).SessionID)
	assert.Equal(t, "first_name,last_name\nAda,Lovelace\n", string(svc.uploaded))
	svc.AssertExpectations(t)
}

func TestImportHandler_UploadWithoutFile(t *testing.T) {
	h := NewImportHandler(new(importServiceMock))

	w := do(t, route(http.MethodPost, "/import/:entity/upload", h.Upload), http.MethodPost, "/import/contacts/upload", nil, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, UploadFormField)
}

func TestImportHandler_ExecuteWithoutBody(t *testing.T) {
	svc := new(importServiceMock)
	h := NewImportHandler(svc)
	id := uuid.New()
	svc.On("Execute", mock.Anything, mock.Anything, id, importapp.ExecuteRequest{}).
		Return(&importapp.ExecuteResponse{SessionID: id, Status: "completed"}, nil)

	w := do(t, route(http.MethodPost, "/import/sessions/:id/execute", h.Execute), http.MethodPost,
		"/import/sessions/"+id.String()+"/execute", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestImportHandler_Template(t *testing.T) {
	svc := new(importServiceMock)
	h := NewImportHandler(svc)
	svc.On("Template", "leads", "csv").Return(&dataimport.TemplateFile{
		FileName:    "leads_template.csv",
		ContentType: "text/csv",
		Content:     []byte("name,email\n"),
	}, nil)

	w := do(t, route(http.MethodGet, "/import/:entity/template", h.Template), http.MethodGet, "/import/leads/template?format=csv", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="leads_template.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "name,email\n", w.Body.String())

	w = do(t, route(http.MethodGet, "/import/:entity/template", h.Template), http.MethodGet, "/import/leads/template?format=pdf", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler(t *testing.T) {
	h := NewAuthHandler(authServiceStub{})

	t.Run("me requires a user", func(t *testing.T) {
		w := do(t, route(http.MethodGet, "/auth/me", h.Me), http.MethodGet, "/auth/me", nil, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decode(t, w).Error.Code)
	})

	t.Run("logout without a token is a no-op", func(t *testing.T) {
		w := do(t, route(http.MethodPost, "/auth/logout", h.Logout), http.MethodPost, "/auth/logout", nil, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("login validates the email", func(t *testing.T) {
		w := do(t, route(http.MethodPost, "/auth/login", h.Login), http.MethodPost, "/auth/login",
			LoginRequest{Email: "nobody", Password: "secret"}, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email", decode(t, w).Error.Details[0].Field)
	})
}

type loginService struct {
	AuthService
	err error
}

func (s loginService) Login(context.Context, identityapp.LoginInput) (*identityapp.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &identityapp.LoginResult{TokenResult: identityapp.TokenResult{AccessToken: "a", TokenType: "Bearer"}}, nil
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad credentials", shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password"), http.StatusUnauthorized},
		{"deactivated", shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is deactivated"), http.StatusForbidden},
		{"database down", errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(loginService{err: tt.err})
			w := do(t, route(http.MethodPost, "/auth/login", h.Login), http.MethodPost, "/auth/login",
				LoginRequest{Email: "ada@example.com", Password: "secret"}, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSystemHandler_Health(t *testing.T) {
	healthy := NewSystemHandler("crm", "test", map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	w := do(t, route(http.MethodGet, "/health", healthy.Health), http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", dataAs[HealthResponse](t, w).Status)

	failing := NewSystemHandler("crm", "test", map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis": func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return errors.New("connection refused")
		},
	})
	w = do(t, route(http.MethodGet, "/health", failing.Health), http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	health := dataAs[HealthResponse](t, w)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])
	assert.Equal(t, "connection refused", health.Checks["redis"])
}
