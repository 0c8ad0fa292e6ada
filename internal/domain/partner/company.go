package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company is an organisation the sales team works with
type Company struct {
	shared.TenantAggregateRoot
	Name          string
	Industry      string
	Website       string
	Email         string
	Phone         string
	Address       string
	City          string
	Country       string
	EmployeeCount int
	AnnualRevenue decimal.Decimal
	Notes         string
}

// CompanyDetails carries the editable company fields
type CompanyDetails struct {
	Name          string
	Industry      string
	Website       string
	Email         string
	Phone         string
	Address       string
	City          string
	Country       string
	EmployeeCount int
	AnnualRevenue decimal.Decimal
	Notes         string
}

// NewCompany creates a new company
func NewCompany(tenantID uuid.UUID, details CompanyDetails) (*Company, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	company := &Company{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	company.apply(details)
	company.AddDomainEvent(NewChangedEvent(EventTypeCompanyCreated, AggregateTypeCompany, company.ID, tenantID, company.Name))

	return company, nil
}

// Details returns the current editable fields
func (c *Company) Details() CompanyDetails {
	return CompanyDetails{
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
	}
}

// Update replaces the editable fields
func (c *Company) Update(details CompanyDetails) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	c.apply(details)
	c.Touch()
	c.AddDomainEvent(NewChangedEvent(EventTypeCompanyUpdated, AggregateTypeCompany, c.ID, c.TenantID, c.Name))

	return nil
}

func (c *Company) apply(d CompanyDetails) {
	c.Name = d.Name
	c.Industry = d.Industry
	c.Website = d.Website
	c.Email = d.Email
	c.Phone = d.Phone
	c.Address = d.Address
	c.City = d.City
	c.Country = d.Country
	c.EmployeeCount = d.EmployeeCount
	c.AnnualRevenue = d.AnnualRevenue
	c.Notes = d.Notes
}

func (d CompanyDetails) normalized() CompanyDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Website = strings.TrimSpace(d.Website)
	return d
}

func (d CompanyDetails) validate() error {
	if err := shared.ValidateRequiredLength("INVALID_NAME", "Company name", d.Name, 2, 200); err != nil {
		return err
	}
	if err := shared.ValidateEmail(d.Email); err != nil {
		return err
	}
	if err := shared.ValidateLength("INVALID_WEBSITE", "Website", d.Website, 0, 255); err != nil {
		return err
	}
	if err := shared.ValidateLength("INVALID_PHONE", "Phone", d.Phone, 0, 50); err != nil {
		return err
	}
	if d.EmployeeCount < 0 {
		return shared.NewDomainError("INVALID_EMPLOYEE_COUNT", "Employee count cannot be negative")
	}
	if d.AnnualRevenue.IsNegative() {
		return shared.NewDomainError("INVALID_ANNUAL_REVENUE", "Annual revenue cannot be negative")
	}
	return nil
}
