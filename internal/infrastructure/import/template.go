package dataimport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/xuri/excelize/v2"
)

// TemplateFile is a downloadable import template
type TemplateFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Template renders an import template for the entity: one header row with
// the field names and one example row.
func Template(entity bulk.EntityType, format bulk.FileFormat) (*TemplateFile, error) {
	fields, err := Fields(entity)
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(fields))
	example := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
		example[i] = f.Example
	}

	name := fmt.Sprintf("%s_import_template.%s", entity, format)
	switch format {
	case bulk.FormatXLSX:
		content, err := xlsxTemplate(string(entity), headers, example)
		if err != nil {
			return nil, err
		}
		return &TemplateFile{FileName: name, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Content: content}, nil
	case bulk.FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write(headers)
		_ = w.Write(example)
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return &TemplateFile{FileName: name, ContentType: "text/csv; charset=utf-8", Content: buf.Bytes()}, nil
	case bulk.FormatJSON:
		content, err := jsonTemplate(headers, example)
		if err != nil {
			return nil, err
		}
		return &TemplateFile{FileName: name, ContentType: "application/json", Content: content}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func xlsxTemplate(sheet string, headers, example []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	for row, values := range [][]string{headers, example} {
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, row+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// jsonTemplate writes a one-object array keeping field order
func jsonTemplate(headers, example []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[\n  {")
	for i, h := range headers {
		k, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(example[i])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "\n    %s: %s", k, v)
	}
	buf.WriteString("\n  }\n]\n")
	return buf.Bytes(), nil
}
