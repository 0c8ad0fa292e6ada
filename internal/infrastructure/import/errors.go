// Package dataimport parses spreadsheet, CSV and JSON uploads into rows,
// maps their columns onto CRM fields and validates each row.
package dataimport

import (
	"errors"
	"fmt"
	"sort"
)

// Row-level error codes
const (
	ErrCodeRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidType       = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeInvalidLength     = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeInvalidRange      = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeInvalidEnum       = "ERR_IMPORT_INVALID_ENUM"
	ErrCodeInvalidEmail      = "ERR_IMPORT_INVALID_EMAIL"
	ErrCodeDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeConflict          = "ERR_IMPORT_CONFLICT"
	ErrCodeRowFailed         = "ERR_IMPORT_ROW_FAILED"
)

var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrMissingHeader     = errors.New("file has no header row")
	ErrNoDataRows        = errors.New("file contains no data rows")
	ErrInvalidEncoding   = errors.New("file is not valid UTF-8")
	ErrTooManyRows       = errors.New("file exceeds the maximum number of rows")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrInvalidJSON       = errors.New("JSON must be an array of objects or an object with a data array")
	ErrUnknownEntity     = errors.New("unknown import entity")
	ErrInvalidMapping    = errors.New("invalid column mapping")
)

// RowError is a problem found in one row. Row is the 1-based data row
// number as the user sees it in the file (the header is row 1).
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	rows       map[int]struct{}
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection capped at maxErrors entries
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors, rows: make(map[int]struct{})}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	ec.rows[err.Row] = struct{}{}
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddAll records several errors
func (ec *ErrorCollection) AddAll(errs []RowError) {
	for _, e := range errs {
		ec.Add(e)
	}
}

// Errors returns the kept errors ordered by row
func (ec *ErrorCollection) Errors() []RowError {
	out := make([]RowError, len(ec.errors))
	copy(out, ec.errors)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// TotalCount counts every error, kept or not
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// RowCount counts distinct rows with at least one error
func (ec *ErrorCollection) RowCount() int {
	return len(ec.rows)
}

// HasRow reports whether the row already has an error
func (ec *ErrorCollection) HasRow(row int) bool {
	_, ok := ec.rows[row]
	return ok
}

// IsTruncated reports whether errors were dropped because of the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > len(ec.errors)
}

// Summary counts errors by code
func (ec *ErrorCollection) Summary() map[string]int {
	out := make(map[string]int)
	for _, e := range ec.errors {
		out[e.Code]++
	}
	return out
}
