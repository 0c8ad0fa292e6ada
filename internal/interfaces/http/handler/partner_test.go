package handler

import (
	"errors"
	"net/http"
	"testing"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/tests/testutil/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCompanyHandler() (*CompanyHandler, *mocks.CompanyRepository) {
	companies := new(mocks.CompanyRepository)
	contacts := new(mocks.ContactRepository)
	service := partnerapp.NewCompanyService(companies, contacts, partnerapp.References{}, nil)
	return NewCompanyHandler(service), companies
}

func TestCompanyHandler_Create(t *testing.T) {
	t.Run("stamps the acting user", func(t *testing.T) {
		h, repo := newCompanyHandler()
		user := uuid.New()
		repo.On("Save", mock.Anything, mock.MatchedBy(func(c *partner.Company) bool {
			return c.Name == "Acme" && c.TenantID == middleware.DevelopmentTenantID &&
				c.CreatedBy != nil && *c.CreatedBy == user
		})).Return(nil)

		w := do(t, route(http.MethodPost, "/companies", h.Create), http.MethodPost, "/companies",
			map[string]any{"name": "Acme", "industry": "Retail"},
			map[string]string{UserIDHeader: user.String()})

		require.Equal(t, http.StatusCreated, w.Code)
		company := dataAs[partnerapp.CompanyResponse](t, w)
		assert.Equal(t, "Acme", company.Name)
		repo.AssertExpectations(t)
	})

	t.Run("validation details", func(t *testing.T) {
		h, repo := newCompanyHandler()

		w := do(t, route(http.MethodPost, "/companies", h.Create), http.MethodPost, "/companies",
			map[string]any{"name": "A", "email": "not-an-email"}, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"name", "email"}, fields)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("malformed json", func(t *testing.T) {
		h, _ := newCompanyHandler()
		engine := route(http.MethodPost, "/companies", h.Create)

		w := do(t, engine, http.MethodPost, "/companies", "{", nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
	})
}

func TestCompanyHandler_GetByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		h, repo := newCompanyHandler()
		id := uuid.New()
		repo.On("FindByIDForTenant", mock.Anything, middleware.DevelopmentTenantID, id).Return(nil, shared.ErrNotFound)

		w := do(t, route(http.MethodGet, "/companies/:id", h.GetByID), http.MethodGet, "/companies/"+id.String(), nil, nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error.Message, "Company")
	})

	t.Run("malformed id", func(t *testing.T) {
		h, _ := newCompanyHandler()

		w := do(t, route(http.MethodGet, "/companies/:id", h.GetByID), http.MethodGet, "/companies/nope", nil, nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w).Error.Code)
	})

	t.Run("unexpected error hides the cause", func(t *testing.T) {
		h, repo := newCompanyHandler()
		id := uuid.New()
		repo.On("FindByIDForTenant", mock.Anything, mock.Anything, id).Return(nil, errors.New("connection reset by peer"))

		w := do(t, route(http.MethodGet, "/companies/:id", h.GetByID), http.MethodGet, "/companies/"+id.String(), nil, nil)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "connection reset")
	})
}

func TestCompanyHandler_List(t *testing.T) {
	h, repo := newCompanyHandler()
	tenant := middleware.DevelopmentTenantID
	company, err := partner.NewCompany(tenant, partner.CompanyDetails{Name: "Acme"})
	require.NoError(t, err)
	repo.On("FindAllForTenant", mock.Anything, tenant, mock.Anything).Return([]partner.Company{*company}, nil)
	repo.On("CountForTenant", mock.Anything, tenant, mock.Anything).Return(int64(41), nil)

	w := do(t, route(http.MethodGet, "/companies", h.List), http.MethodGet, "/companies?search=ac", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, shared.DefaultPageSize, resp.Meta.PageSize)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestCompanyHandler_ListRejectsBadPageSize(t *testing.T) {
	h, _ := newCompanyHandler()

	w := do(t, route(http.MethodGet, "/companies", h.List), http.MethodGet, "/companies?page_size=1000", nil, nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
}

func TestCompanyHandler_Delete(t *testing.T) {
	h, repo := newCompanyHandler()
	id := uuid.New()
	repo.On("FindByIDForTenant", mock.Anything, mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := do(t, route(http.MethodDelete, "/companies/:id", h.Delete), http.MethodDelete, "/companies/"+id.String(), nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
