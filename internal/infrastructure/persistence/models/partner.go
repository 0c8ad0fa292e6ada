package models

import (
	"github.com/crm/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is the persistence model for partner.Company
type CompanyModel struct {
	TenantAggregateModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Industry      string          `gorm:"type:varchar(100)"`
	Website       string          `gorm:"type:varchar(255)"`
	Email         string          `gorm:"type:varchar(200)"`
	Phone         string          `gorm:"type:varchar(50)"`
	Address       string          `gorm:"type:varchar(500)"`
	City          string          `gorm:"type:varchar(100)"`
	Country       string          `gorm:"type:varchar(100)"`
	EmployeeCount int             `gorm:"not null;default:0"`
	AnnualRevenue decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the model to a domain Company
func (m *CompanyModel) ToDomain() *partner.Company {
	return &partner.Company{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Name:                m.Name,
		Industry:            m.Industry,
		Website:             m.Website,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
		City:                m.City,
		Country:             m.Country,
		EmployeeCount:       m.EmployeeCount,
		AnnualRevenue:       m.AnnualRevenue,
		Notes:               m.Notes,
	}
}

// CompanyModelFromDomain builds a model from a domain Company
func CompanyModelFromDomain(c *partner.Company) *CompanyModel {
	m := &CompanyModel{
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
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// ContactModel is the persistence model for partner.Contact
type ContactModel struct {
	TenantAggregateModel
	FirstName string     `gorm:"type:varchar(100);not null"`
	LastName  string     `gorm:"type:varchar(100);not null"`
	Email     string     `gorm:"type:varchar(200);index"`
	Phone     string     `gorm:"type:varchar(50)"`
	JobTitle  string     `gorm:"type:varchar(100)"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`
	Notes     string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the model to a domain Contact
func (m *ContactModel) ToDomain() *partner.Contact {
	return &partner.Contact{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		Email:               m.Email,
		Phone:               m.Phone,
		JobTitle:            m.JobTitle,
		CompanyID:           m.CompanyID,
		Notes:               m.Notes,
	}
}

// ContactModelFromDomain builds a model from a domain Contact
func ContactModelFromDomain(c *partner.Contact) *ContactModel {
	m := &ContactModel{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		JobTitle:  c.JobTitle,
		CompanyID: c.CompanyID,
		Notes:     c.Notes,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}

// CompetitorModel is the persistence model for partner.Competitor
type CompetitorModel struct {
	TenantAggregateModel
	Name        string              `gorm:"type:varchar(200);not null"`
	Website     string              `gorm:"type:varchar(255)"`
	Strengths   string              `gorm:"type:text"`
	Weaknesses  string              `gorm:"type:text"`
	Notes       string              `gorm:"type:text"`
	ThreatLevel partner.ThreatLevel `gorm:"type:varchar(20);not null;default:'medium'"`
}

// TableName returns the table name for GORM
func (CompetitorModel) TableName() string {
	return "competitors"
}

// ToDomain converts the model to a domain Competitor
func (m *CompetitorModel) ToDomain() *partner.Competitor {
	return &partner.Competitor{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Name:                m.Name,
		Website:             m.Website,
		Strengths:           m.Strengths,
		Weaknesses:          m.Weaknesses,
		Notes:               m.Notes,
		ThreatLevel:         m.ThreatLevel,
	}
}

// CompetitorModelFromDomain builds a model from a domain Competitor
func CompetitorModelFromDomain(c *partner.Competitor) *CompetitorModel {
	m := &CompetitorModel{
		Name:        c.Name,
		Website:     c.Website,
		Strengths:   c.Strengths,
		Weaknesses:  c.Weaknesses,
		Notes:       c.Notes,
		ThreatLevel: c.ThreatLevel,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}
