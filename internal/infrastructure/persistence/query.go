package persistence

import (
	"fmt"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// listQuery describes how a shared.Filter maps onto one table
type listQuery struct {
	// searchColumns are matched with a case-insensitive LIKE; LOWER keeps it portable to SQLite
	searchColumns []string
	// filterColumns maps a filter key to an equality column
	filterColumns map[string]string
	sortFields    map[string]bool
	defaultOrder  string
}

// where applies search and equality filters
func (q listQuery) where(db *gorm.DB, f shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" && len(q.searchColumns) > 0 {
		pattern := "%" + strings.ToLower(s) + "%"
		clauses := make([]string, len(q.searchColumns))
		args := make([]any, len(q.searchColumns))
		for i, col := range q.searchColumns {
			clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
			args[i] = pattern
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	for key, value := range f.Filters {
		col, ok := q.filterColumns[key]
		if !ok || isEmptyFilterValue(value) {
			continue
		}
		db = db.Where(col+" = ?", value)
	}
	return db
}

// order applies the whitelisted sort, falling back to the table default
func (q listQuery) order(db *gorm.DB, f shared.Filter) *gorm.DB {
	if f.OrderBy != "" && q.sortFields[f.OrderBy] {
		return db.Order(f.OrderBy + " " + ValidateSortOrder(f.OrderDir)).Order("id")
	}
	return db.Order(q.defaultOrder)
}

// page applies where, order and pagination
func (q listQuery) page(db *gorm.DB, f shared.Filter) *gorm.DB {
	db = q.order(q.where(db, f), f)
	if f.Page > 0 && f.PageSize > 0 {
		db = db.Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize)
	}
	return db
}

func isEmptyFilterValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}
