package partner

import (
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Company DTOs
// =============================================================================

// CreateCompanyRequest represents a request to create a company
type CreateCompanyRequest struct {
	Name          string           `json:"name" binding:"required,min=2,max=200"`
	Industry      string           `json:"industry" binding:"max=100"`
	Website       string           `json:"website" binding:"max=255"`
	Email         string           `json:"email" binding:"omitempty,email,max=200"`
	Phone         string           `json:"phone" binding:"max=50"`
	Address       string           `json:"address" binding:"max=500"`
	City          string           `json:"city" binding:"max=100"`
	Country       string           `json:"country" binding:"max=100"`
	EmployeeCount int              `json:"employee_count" binding:"min=0"`
	AnnualRevenue *decimal.Decimal `json:"annual_revenue"`
	Notes         string           `json:"notes"`
	CreatedBy     *uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateCompanyRequest is a partial update; nil fields are left unchanged
type UpdateCompanyRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=200"`
	Industry      *string          `json:"industry" binding:"omitempty,max=100"`
	Website       *string          `json:"website" binding:"omitempty,max=255"`
	Email         *string          `json:"email" binding:"omitempty,max=200"`
	Phone         *string          `json:"phone" binding:"omitempty,max=50"`
	Address       *string          `json:"address" binding:"omitempty,max=500"`
	City          *string          `json:"city" binding:"omitempty,max=100"`
	Country       *string          `json:"country" binding:"omitempty,max=100"`
	EmployeeCount *int             `json:"employee_count" binding:"omitempty,min=0"`
	AnnualRevenue *decimal.Decimal `json:"annual_revenue"`
	Notes         *string          `json:"notes"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	Name          string          `json:"name"`
	Industry      string          `json:"industry"`
	Website       string          `json:"website"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	Country       string          `json:"country"`
	EmployeeCount int             `json:"employee_count"`
	AnnualRevenue decimal.Decimal `json:"annual_revenue"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// CompanyListFilter represents filter options for the company list
type CompanyListFilter struct {
	Search   string `form:"search"`
	Industry string `form:"industry"`
	City     string `form:"city"`
	Country  string `form:"country"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCompanyResponse converts a company to its response
func ToCompanyResponse(c *partner.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		TenantID:      c.TenantID,
		Name:          c.Name,
		Industry:      c.Industry,
		Website:       c.Website,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		Country:       c.Country,
		EmployeeCount: c.EmployeeCount,
		AnnualRevenue: c.AnnualRevenue,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	}
}

func (r UpdateCompanyRequest) applyTo(d partner.CompanyDetails) partner.CompanyDetails {
	setIf(&d.Name, r.Name)
	setIf(&d.Industry, r.Industry)
	setIf(&d.Website, r.Website)
	setIf(&d.Email, r.Email)
	setIf(&d.Phone, r.Phone)
	setIf(&d.Address, r.Address)
	setIf(&d.City, r.City)
	setIf(&d.Country, r.Country)
	setIf(&d.EmployeeCount, r.EmployeeCount)
	setIf(&d.AnnualRevenue, r.AnnualRevenue)
	setIf(&d.Notes, r.Notes)
	return d
}

func (f CompanyListFilter) toDomain() shared.Filter {
	return listFilter(f.Search, f.Page, f.PageSize, f.OrderBy, f.OrderDir, map[string]any{
		"industry": f.Industry,
		"city":     f.City,
		"country":  f.Country,
	})
}

// =============================================================================
// Contact DTOs
// =============================================================================

// CreateContactRequest represents a request to create a contact
type CreateContactRequest struct {
	FirstName string     `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string     `json:"last_name" binding:"required,min=1,max=100"`
	Email     string     `json:"email" binding:"omitempty,email,max=200"`
	Phone     string     `json:"phone" binding:"max=50"`
	JobTitle  string     `json:"job_title" binding:"max=100"`
	CompanyID *uuid.UUID `json:"company_id"`
	Notes     string     `json:"notes"`
	CreatedBy *uuid.UUID `json:"-"`
}

// UpdateContactRequest is a partial update. A company_id of all zeros
// detaches the contact from its company.
type UpdateContactRequest struct {
	FirstName *string    `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string    `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email     *string    `json:"email" binding:"omitempty,max=200"`
	Phone     *string    `json:"phone" binding:"omitempty,max=50"`
	JobTitle  *string    `json:"job_title" binding:"omitempty,max=100"`
	CompanyID *uuid.UUID `json:"company_id"`
	Notes     *string    `json:"notes"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	JobTitle    string     `json:"job_title"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty"`
	CompanyName string     `json:"company_name,omitempty"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Version     int        `json:"version"`
}

// ContactListFilter represents filter options for the contact list
type ContactListFilter struct {
	Search    string `form:"search"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	JobTitle  string `form:"job_title"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToContactResponse converts a contact to its response
func ToContactResponse(c *partner.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		TenantID:  c.TenantID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		FullName:  c.FullName(),
		Email:     c.Email,
		Phone:     c.Phone,
		JobTitle:  c.JobTitle,
		CompanyID: c.CompanyID,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

func (r UpdateContactRequest) applyTo(d partner.ContactDetails) partner.ContactDetails {
	setIf(&d.FirstName, r.FirstName)
	setIf(&d.LastName, r.LastName)
	setIf(&d.Email, r.Email)
	setIf(&d.Phone, r.Phone)
	setIf(&d.JobTitle, r.JobTitle)
	if r.CompanyID != nil {
		d.CompanyID = r.CompanyID
	}
	setIf(&d.Notes, r.Notes)
	return d
}

func (f ContactListFilter) toDomain() shared.Filter {
	return listFilter(f.Search, f.Page, f.PageSize, f.OrderBy, f.OrderDir, map[string]any{
		"company_id": f.CompanyID,
		"job_title":  f.JobTitle,
	})
}

// =============================================================================
// Competitor DTOs
// =============================================================================

// CreateCompetitorRequest represents a request to create a competitor
type CreateCompetitorRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=200"`
	Website     string     `json:"website" binding:"max=255"`
	Strengths   string     `json:"strengths"`
	Weaknesses  string     `json:"weaknesses"`
	Notes       string     `json:"notes"`
	ThreatLevel string     `json:"threat_level" binding:"omitempty,oneof=low medium high"`
	CreatedBy   *uuid.UUID `json:"-"`
}

// UpdateCompetitorRequest is a partial update
type UpdateCompetitorRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=200"`
	Website     *string `json:"website" binding:"omitempty,max=255"`
	Strengths   *string `json:"strengths"`
	Weaknesses  *string `json:"weaknesses"`
	Notes       *string `json:"notes"`
	ThreatLevel *string `json:"threat_level" binding:"omitempty,oneof=low medium high"`
}

// CompetitorResponse represents a competitor in API responses
type CompetitorResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Website     string    `json:"website"`
	Strengths   string    `json:"strengths"`
	Weaknesses  string    `json:"weaknesses"`
	Notes       string    `json:"notes"`
	ThreatLevel string    `json:"threat_level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// CompetitorListFilter represents filter options for the competitor list
type CompetitorListFilter struct {
	Search      string `form:"search"`
	ThreatLevel string `form:"threat_level" binding:"omitempty,oneof=low medium high"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCompetitorResponse converts a competitor to its response
func ToCompetitorResponse(c *partner.Competitor) CompetitorResponse {
	return CompetitorResponse{
		ID:          c.ID,
		TenantID:    c.TenantID,
		Name:        c.Name,
		Website:     c.Website,
		Strengths:   c.Strengths,
		Weaknesses:  c.Weaknesses,
		Notes:       c.Notes,
		ThreatLevel: string(c.ThreatLevel),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

func (r UpdateCompetitorRequest) applyTo(d partner.CompetitorDetails) partner.CompetitorDetails {
	setIf(&d.Name, r.Name)
	setIf(&d.Website, r.Website)
	setIf(&d.Strengths, r.Strengths)
	setIf(&d.Weaknesses, r.Weaknesses)
	setIf(&d.Notes, r.Notes)
	if r.ThreatLevel != nil {
		d.ThreatLevel = partner.ThreatLevel(*r.ThreatLevel)
	}
	return d
}

func (f CompetitorListFilter) toDomain() shared.Filter {
	return listFilter(f.Search, f.Page, f.PageSize, f.OrderBy, f.OrderDir, map[string]any{
		"threat_level": f.ThreatLevel,
	})
}

// =============================================================================
// helpers
// =============================================================================

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func listFilter(search string, page, pageSize int, orderBy, orderDir string, filters map[string]any) shared.Filter {
	f := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
		Filters:  make(map[string]any, len(filters)),
	}
	for k, v := range filters {
		if v != "" {
			f.Filters[k] = v
		}
	}
	return f.Normalize()
}
