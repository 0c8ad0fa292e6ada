package dataimport

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/crm/backend/internal/domain/bulk"
)

// Table is a parsed upload: header names and rows keyed by header
type Table struct {
	Headers []string
	Rows    []Row
}

// Row is one data row. Line is the row number in the source file
// (header = 1) or the 1-based array index for JSON.
type Row struct {
	Line   int
	Values map[string]string
}

// IsEmpty reports whether every cell is blank
func (r Row) IsEmpty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseOptions bounds and steers parsing
type ParseOptions struct {
	// MaxRows rejects files with more data rows; 0 means unlimited
	MaxRows int
	// Sheet selects an xlsx worksheet; empty means the first one
	Sheet string
}

// DetectFormat infers the upload format from the file extension
func DetectFormat(fileName string) (bulk.FileFormat, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return bulk.FormatXLSX, nil
	case ".json":
		return bulk.FormatJSON, nil
	case ".csv":
		return bulk.FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
}

// Parse reads an upload of the given format into a Table
func Parse(format bulk.FileFormat, r io.Reader, opts ParseOptions) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch format {
	case bulk.FormatCSV:
		t, err = ParseCSV(r)
	case bulk.FormatXLSX:
		t, err = ParseXLSX(r, opts.Sheet)
	case bulk.FormatJSON:
		t, err = ParseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if len(t.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	if opts.MaxRows > 0 && len(t.Rows) > opts.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(t.Rows), opts.MaxRows)
	}
	return t, nil
}

// newTable builds a Table from a header record and positional records.
// Blank headers become "column_N" and repeated headers get a numeric suffix.
// Entirely blank rows are skipped.
func newTable(header []string, records [][]string, firstLine int) (*Table, error) {
	headers := uniqueHeaders(header)
	if len(headers) == 0 {
		return nil, ErrMissingHeader
	}
	t := &Table{Headers: headers, Rows: make([]Row, 0, len(records))}
	for i, rec := range records {
		t.appendRecord(rec, firstLine+i)
	}
	return t, nil
}

// appendRecord adds a positional record unless it is entirely blank
func (t *Table) appendRecord(rec []string, line int) {
	row := Row{Line: line, Values: make(map[string]string, len(t.Headers))}
	for j, h := range t.Headers {
		if j < len(rec) {
			row.Values[h] = strings.TrimSpace(rec[j])
		} else {
			row.Values[h] = ""
		}
	}
	if !row.IsEmpty() {
		t.Rows = append(t.Rows, row)
	}
}

func uniqueHeaders(raw []string) []string {
	// trailing blank header cells are spreadsheet noise
	end := len(raw)
	for end > 0 && strings.TrimSpace(raw[end-1]) == "" {
		end--
	}
	seen := make(map[string]int, end)
	out := make([]string, 0, end)
	for i, h := range raw[:end] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s (%d)", h, n+1)
		} else {
			seen[h] = 1
		}
		out = append(out, h)
	}
	return out
}
