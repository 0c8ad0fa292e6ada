package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, defaultField otherwise.
// Column names are never taken from user input unchecked.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withCommonFields(fields ...string) map[string]bool {
	m := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort fields per table
var (
	CompanySortFields       = withCommonFields("name", "industry", "city", "country", "employee_count", "annual_revenue")
	ContactSortFields       = withCommonFields("first_name", "last_name", "email", "job_title")
	CompetitorSortFields    = withCommonFields("name", "threat_level")
	LeadSortFields          = withCommonFields("name", "status", "position", "estimated_value", "source", "closed_at")
	OpportunitySortFields   = withCommonFields("name", "stage", "position", "amount", "probability", "expected_close_date", "closed_at")
	ActivitySortFields      = withCommonFields("type", "subject", "due_at", "completed_at")
	ExpenseSortFields       = withCommonFields("category", "amount", "incurred_at", "status", "vendor")
	ImportHistorySortFields = withCommonFields("entity_type", "file_name", "total_rows", "status", "started_at", "completed_at")
)
