package dataimport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Resolver looks up the id of an existing record by its natural key:
// a company or opportunity name, or a contact email.
type Resolver interface {
	ResolveReference(ctx context.Context, kind RefKind, key string) (uuid.UUID, bool, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, kind RefKind, key string) (uuid.UUID, bool, error)

// ResolveReference calls f
func (f ResolverFunc) ResolveReference(ctx context.Context, kind RefKind, key string) (uuid.UUID, bool, error) {
	return f(ctx, kind, key)
}

// Record is a validated row with typed values for the non-empty mapped fields
type Record struct {
	Line   int
	values map[string]any
}

// Has reports whether the field carries a value
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// String returns a text, email or enum value
func (r Record) String(name string) string {
	s, _ := r.values[name].(string)
	return s
}

// Int returns an integer value
func (r Record) Int(name string) int {
	n, _ := r.values[name].(int)
	return n
}

// IntPtr returns an integer value or nil when absent
func (r Record) IntPtr(name string) *int {
	n, ok := r.values[name].(int)
	if !ok {
		return nil
	}
	return &n
}

// Decimal returns a decimal value, zero when absent
func (r Record) Decimal(name string) decimal.Decimal {
	d, _ := r.values[name].(decimal.Decimal)
	return d
}

// Time returns a date value
func (r Record) Time(name string) (time.Time, bool) {
	t, ok := r.values[name].(time.Time)
	return t, ok
}

// Ref returns the resolved id of a reference field
func (r Record) Ref(name string) *uuid.UUID {
	id, ok := r.values[name].(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// ValidationResult summarises a validation pass
type ValidationResult struct {
	TotalRows int
	ValidRows int
	ErrorRows int
	// Records holds only rows without errors, in file order
	Records []Record
	Errors  *ErrorCollection
}

// Validator checks mapped rows against an entity's field rules
type Validator struct {
	fields    []Field
	resolver  Resolver
	maxErrors int
	cache     map[RefKind]map[string]*uuid.UUID
}

// NewValidator creates a validator. A nil resolver leaves every reference
// unresolved, which is reported as a row error.
func NewValidator(fields []Field, resolver Resolver, maxErrors int) *Validator {
	return &Validator{
		fields:    fields,
		resolver:  resolver,
		maxErrors: maxErrors,
		cache:     make(map[RefKind]map[string]*uuid.UUID),
	}
}

// Validate applies the mapping and checks every row. The returned error is
// set only for an invalid mapping or a failing resolver.
func (v *Validator) Validate(ctx context.Context, table *Table, mapping Mapping) (*ValidationResult, error) {
	if err := ValidateMapping(v.fields, table.Headers, mapping); err != nil {
		return nil, err
	}
	sources := make(map[string]string)
	for source, target := range mapping {
		if target != "" {
			sources[target] = source
		}
	}

	result := &ValidationResult{
		TotalRows: len(table.Rows),
		Errors:    NewErrorCollection(v.maxErrors),
	}
	seen := make(map[string]map[string]int)

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := Record{Line: row.Line, values: make(map[string]any)}
		var rowErrs []RowError

		for _, f := range v.fields {
			source, mapped := sources[f.Name]
			raw := ""
			if mapped {
				raw = strings.TrimSpace(row.Values[source])
			}
			fail := func(code, msg string) {
				rowErrs = append(rowErrs, RowError{Row: row.Line, Column: source, Field: f.Name, Code: code, Message: msg, Value: raw})
			}

			if raw == "" {
				if f.Required {
					fail(ErrCodeRequiredField, fmt.Sprintf("%s is required", f.Label))
				}
				continue
			}

			value, code, msg := convert(f, raw)
			if code != "" {
				fail(code, msg)
				continue
			}

			if f.Unique {
				key := uniqueKey(f, value)
				if seen[f.Name] == nil {
					seen[f.Name] = make(map[string]int)
				}
				if first, dup := seen[f.Name][key]; dup {
					fail(ErrCodeDuplicateInFile, fmt.Sprintf("%s duplicates row %d", f.Label, first))
					continue
				}
				seen[f.Name][key] = row.Line
			}

			if f.Reference != "" {
				id, err := v.resolve(ctx, f.Reference, value.(string))
				if err != nil {
					return nil, err
				}
				if id == nil {
					fail(ErrCodeReferenceNotFound, fmt.Sprintf("%s %q not found", f.Reference, raw))
					continue
				}
				value = *id
			}
			rec.values[f.Name] = value
		}

		if len(rowErrs) > 0 {
			result.Errors.AddAll(rowErrs)
			result.ErrorRows++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	result.ValidRows = len(result.Records)
	return result, nil
}

func (v *Validator) resolve(ctx context.Context, kind RefKind, key string) (*uuid.UUID, error) {
	norm := strings.ToLower(key)
	if id, ok := v.cache[kind][norm]; ok {
		return id, nil
	}
	var found *uuid.UUID
	if v.resolver != nil {
		id, ok, err := v.resolver.ResolveReference(ctx, kind, key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %q: %w", kind, key, err)
		}
		if ok {
			found = &id
		}
	}
	if v.cache[kind] == nil {
		v.cache[kind] = make(map[string]*uuid.UUID)
	}
	v.cache[kind][norm] = found
	return found, nil
}

func uniqueKey(f Field, value any) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprint(value)
	}
	if f.Type == FieldTypeEmail {
		return shared.NormalizeEmail(s)
	}
	return strings.ToLower(s)
}

// convert turns a cell into its typed value or returns an error code and message
func convert(f Field, raw string) (any, string, string) {
	switch f.Type {
	case FieldTypeEmail:
		email := shared.NormalizeEmail(raw)
		if err := shared.ValidateEmail(email); err != nil {
			return nil, ErrCodeInvalidEmail, fmt.Sprintf("%s is not a valid email address", f.Label)
		}
		return email, "", ""

	case FieldTypeEnum:
		key := NormalizeHeader(raw)
		for _, opt := range f.Enum {
			if NormalizeHeader(opt) == key {
				return opt, "", ""
			}
		}
		return nil, ErrCodeInvalidEnum, fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Enum, ", "))

	case FieldTypeDecimal:
		d, err := ParseDecimal(raw)
		if err != nil {
			return nil, ErrCodeInvalidType, fmt.Sprintf("%s must be a number", f.Label)
		}
		if code, msg := checkRange(f, d); code != "" {
			return nil, code, msg
		}
		return d, "", ""

	case FieldTypeInteger:
		d, err := ParseDecimal(raw)
		if err != nil || !d.IsInteger() {
			return nil, ErrCodeInvalidType, fmt.Sprintf("%s must be a whole number", f.Label)
		}
		if code, msg := checkRange(f, d); code != "" {
			return nil, code, msg
		}
		return int(d.IntPart()), "", ""

	case FieldTypeDate:
		t, err := ParseDate(raw)
		if err != nil {
			return nil, ErrCodeInvalidType, fmt.Sprintf("%s must be a date (YYYY-MM-DD)", f.Label)
		}
		return t, "", ""
	}

	n := utf8.RuneCountInString(raw)
	if f.MinLength > 0 && n < f.MinLength {
		return nil, ErrCodeInvalidLength, fmt.Sprintf("%s must be at least %d characters", f.Label, f.MinLength)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return nil, ErrCodeInvalidLength, fmt.Sprintf("%s cannot exceed %d characters", f.Label, f.MaxLength)
	}
	return raw, "", ""
}

func checkRange(f Field, d decimal.Decimal) (string, string) {
	if f.Positive && !d.IsPositive() {
		return ErrCodeInvalidRange, fmt.Sprintf("%s must be greater than 0", f.Label)
	}
	if f.Min != nil && d.LessThan(decimal.NewFromFloat(*f.Min)) {
		return ErrCodeInvalidRange, fmt.Sprintf("%s must be at least %s", f.Label, strconv.FormatFloat(*f.Min, 'f', -1, 64))
	}
	if f.Max != nil && d.GreaterThan(decimal.NewFromFloat(*f.Max)) {
		return ErrCodeInvalidRange, fmt.Sprintf("%s cannot exceed %s", f.Label, strconv.FormatFloat(*f.Max, 'f', -1, 64))
	}
	return "", ""
}

var numberNoise = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "$", "", "€", "", "£", "")

// ParseDecimal reads a number, tolerating thousands separators and a
// leading currency symbol
func ParseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(numberNoise.Replace(strings.TrimSpace(raw)))
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"02.01.2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate reads a date in one of the common layouts, or an Excel serial
// day number as found in unformatted spreadsheet cells. Results are UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t.Round(time.Second).UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
