package dataimport

import (
	"fmt"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
)

// FieldType is the value type a target field accepts
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeEmail   FieldType = "email"
	FieldTypeInteger FieldType = "integer"
	FieldTypeDecimal FieldType = "decimal"
	FieldTypeDate    FieldType = "date"
	FieldTypeEnum    FieldType = "enum"
)

// RefKind names the entity a reference field points at
type RefKind string

const (
	RefCompany     RefKind = "company"
	RefContact     RefKind = "contact"
	RefOpportunity RefKind = "opportunity"
)

// Field describes one importable target field
type Field struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	MinLength int       `json:"min_length,omitempty"`
	MaxLength int       `json:"max_length,omitempty"`
	Min       *float64  `json:"min,omitempty"`
	Max       *float64  `json:"max,omitempty"`
	// Positive rejects zero even when Min is 0
	Positive bool     `json:"positive,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
	// Unique values may appear only once per file
	Unique bool `json:"unique,omitempty"`
	// Reference resolves the cell (a name or email) to an entity id
	Reference RefKind `json:"reference,omitempty"`
	Example   string  `json:"example"`
}

func bound(v float64) *float64 { return &v }

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var catalog = map[bulk.EntityType][]Field{
	bulk.EntityContacts: {
		{Name: "first_name", Label: "First Name", Type: FieldTypeString, Required: true, MinLength: 1, MaxLength: 100,
			Aliases: []string{"firstname", "first", "given name", "forename"}, Example: "Ada"},
		{Name: "last_name", Label: "Last Name", Type: FieldTypeString, Required: true, MinLength: 1, MaxLength: 100,
			Aliases: []string{"lastname", "last", "surname", "family name"}, Example: "Lovelace"},
		{Name: "email", Label: "Email", Type: FieldTypeEmail, Unique: true,
			Aliases: []string{"e-mail", "email address", "mail"}, Example: "ada@example.com"},
		{Name: "phone", Label: "Phone", Type: FieldTypeString, MaxLength: 50,
			Aliases: []string{"telephone", "phone number", "mobile", "tel"}, Example: "+44 20 7946 0000"},
		{Name: "job_title", Label: "Job Title", Type: FieldTypeString, MaxLength: 100,
			Aliases: []string{"title", "position", "role"}, Example: "CTO"},
		{Name: "company", Label: "Company", Type: FieldTypeString, Reference: RefCompany,
			Aliases: []string{"company name", "organization", "organisation", "account"}, Example: "Analytical Engines Ltd"},
		{Name: "notes", Label: "Notes", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"note", "comments", "remarks"}, Example: ""},
	},
	bulk.EntityCompanies: {
		{Name: "name", Label: "Name", Type: FieldTypeString, Required: true, MinLength: 2, MaxLength: 200, Unique: true,
			Aliases: []string{"company", "company name", "organization", "organisation", "account"}, Example: "Analytical Engines Ltd"},
		{Name: "industry", Label: "Industry", Type: FieldTypeString, MaxLength: 100,
			Aliases: []string{"sector", "vertical"}, Example: "Manufacturing"},
		{Name: "website", Label: "Website", Type: FieldTypeString, MaxLength: 200,
			Aliases: []string{"url", "web", "homepage", "site"}, Example: "https://example.com"},
		{Name: "email", Label: "Email", Type: FieldTypeEmail,
			Aliases: []string{"e-mail", "email address"}, Example: "info@example.com"},
		{Name: "phone", Label: "Phone", Type: FieldTypeString, MaxLength: 50,
			Aliases: []string{"telephone", "phone number", "tel"}, Example: "+44 20 7946 0001"},
		{Name: "address", Label: "Address", Type: FieldTypeString, MaxLength: 500,
			Aliases: []string{"street", "street address"}, Example: "1 Engine Way"},
		{Name: "city", Label: "City", Type: FieldTypeString, MaxLength: 100,
			Aliases: []string{"town"}, Example: "London"},
		{Name: "country", Label: "Country", Type: FieldTypeString, MaxLength: 100,
			Example: "United Kingdom"},
		{Name: "employee_count", Label: "Employees", Type: FieldTypeInteger, Min: bound(0),
			Aliases: []string{"employees", "headcount", "staff", "size"}, Example: "42"},
		{Name: "annual_revenue", Label: "Annual Revenue", Type: FieldTypeDecimal, Min: bound(0),
			Aliases: []string{"revenue", "turnover"}, Example: "1500000.00"},
		{Name: "notes", Label: "Notes", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"note", "comments", "remarks"}, Example: ""},
	},
	bulk.EntityCompetitors: {
		{Name: "name", Label: "Name", Type: FieldTypeString, Required: true, MinLength: 2, MaxLength: 200, Unique: true,
			Aliases: []string{"competitor", "competitor name", "company"}, Example: "Difference Engines Inc"},
		{Name: "website", Label: "Website", Type: FieldTypeString, MaxLength: 200,
			Aliases: []string{"url", "web", "site"}, Example: "https://rival.example.com"},
		{Name: "strengths", Label: "Strengths", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"pros"}, Example: "Lower price"},
		{Name: "weaknesses", Label: "Weaknesses", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"cons"}, Example: "Slow support"},
		{Name: "threat_level", Label: "Threat Level", Type: FieldTypeEnum,
			Enum: enumOf(partner.ThreatLevels), Aliases: []string{"threat", "risk"}, Example: "medium"},
		{Name: "notes", Label: "Notes", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"note", "comments"}, Example: ""},
	},
	bulk.EntityLeads: {
		{Name: "name", Label: "Name", Type: FieldTypeString, Required: true, MinLength: 2, MaxLength: 200,
			Aliases: []string{"lead", "lead name", "title"}, Example: "Website redesign enquiry"},
		{Name: "contact_name", Label: "Contact Name", Type: FieldTypeString, MaxLength: 200,
			Aliases: []string{"contact", "person", "full name"}, Example: "Charles Babbage"},
		{Name: "email", Label: "Email", Type: FieldTypeEmail, Unique: true,
			Aliases: []string{"e-mail", "email address", "mail"}, Example: "charles@example.com"},
		{Name: "phone", Label: "Phone", Type: FieldTypeString, MaxLength: 50,
			Aliases: []string{"telephone", "phone number", "mobile"}, Example: "+44 20 7946 0002"},
		{Name: "company_name", Label: "Company Name", Type: FieldTypeString, MaxLength: 200,
			Aliases: []string{"company", "organization", "organisation"}, Example: "Babbage & Co"},
		{Name: "source", Label: "Source", Type: FieldTypeEnum, Enum: enumOf(sales.LeadSources),
			Aliases: []string{"lead source", "channel", "origin"}, Example: "website"},
		{Name: "status", Label: "Status", Type: FieldTypeEnum, Enum: enumOf(sales.Stages),
			Aliases: []string{"stage", "temperature"}, Example: "WARM"},
		{Name: "estimated_value", Label: "Estimated Value", Type: FieldTypeDecimal, Min: bound(0),
			Aliases: []string{"value", "amount", "estimate", "deal value"}, Example: "12000.00"},
		{Name: "notes", Label: "Notes", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"note", "comments"}, Example: ""},
	},
	bulk.EntityOpportunities: {
		{Name: "name", Label: "Name", Type: FieldTypeString, Required: true, MinLength: 2, MaxLength: 200, Unique: true,
			Aliases: []string{"opportunity", "opportunity name", "deal", "deal name"}, Example: "Annual support contract"},
		{Name: "company", Label: "Company", Type: FieldTypeString, Reference: RefCompany,
			Aliases: []string{"company name", "account", "organization"}, Example: "Analytical Engines Ltd"},
		{Name: "contact", Label: "Contact Email", Type: FieldTypeEmail, Reference: RefContact,
			Aliases: []string{"contact email", "email"}, Example: "ada@example.com"},
		{Name: "stage", Label: "Stage", Type: FieldTypeEnum, Enum: enumOf(sales.Stages),
			Aliases: []string{"status", "pipeline stage"}, Example: "HOT"},
		{Name: "amount", Label: "Amount", Type: FieldTypeDecimal, Min: bound(0),
			Aliases: []string{"value", "deal value", "deal size"}, Example: "48000.00"},
		{Name: "probability", Label: "Probability", Type: FieldTypeInteger, Min: bound(0), Max: bound(100),
			Aliases: []string{"win probability", "chance", "likelihood"}, Example: "70"},
		{Name: "expected_close_date", Label: "Expected Close Date", Type: FieldTypeDate,
			Aliases: []string{"close date", "expected close", "closing date"}, Example: "2026-12-31"},
		{Name: "notes", Label: "Notes", Type: FieldTypeString, MaxLength: 2000,
			Aliases: []string{"note", "comments"}, Example: ""},
	},
	bulk.EntityExpenses: {
		{Name: "category", Label: "Category", Type: FieldTypeEnum, Required: true, Enum: enumOf(finance.ExpenseCategories),
			Aliases: []string{"type", "expense type", "kind"}, Example: "travel"},
		{Name: "amount", Label: "Amount", Type: FieldTypeDecimal, Required: true, Min: bound(0), Positive: true,
			Aliases: []string{"total", "cost", "value"}, Example: "249.90"},
		{Name: "currency", Label: "Currency", Type: FieldTypeString, MinLength: 3, MaxLength: 3,
			Aliases: []string{"ccy", "currency code"}, Example: "USD"},
		{Name: "description", Label: "Description", Type: FieldTypeString, Required: true, MinLength: 1, MaxLength: 500,
			Aliases: []string{"details", "memo", "purpose"}, Example: "Train to client site"},
		{Name: "vendor", Label: "Vendor", Type: FieldTypeString, MaxLength: 200,
			Aliases: []string{"supplier", "merchant", "payee"}, Example: "National Rail"},
		{Name: "incurred_at", Label: "Date", Type: FieldTypeDate, Required: true,
			Aliases: []string{"date", "incurred", "expense date", "spent on"}, Example: "2026-03-14"},
		{Name: "company", Label: "Company", Type: FieldTypeString, Reference: RefCompany,
			Aliases: []string{"company name", "client", "account"}, Example: ""},
		{Name: "opportunity", Label: "Opportunity", Type: FieldTypeString, Reference: RefOpportunity,
			Aliases: []string{"opportunity name", "deal"}, Example: ""},
	},
}

// Fields lists the target fields of an entity in display order
func Fields(entity bulk.EntityType) ([]Field, error) {
	fields, ok := catalog[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out, nil
}

// MustFields is Fields for entities known to be valid
func MustFields(entity bulk.EntityType) []Field {
	fields, err := Fields(entity)
	if err != nil {
		panic(err)
	}
	return fields
}

func fieldIndex(fields []Field) map[string]Field {
	idx := make(map[string]Field, len(fields))
	for _, f := range fields {
		idx[f.Name] = f
	}
	return idx
}
