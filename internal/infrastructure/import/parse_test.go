package dataimport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	t.Run("BOM is stripped", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("\xEF\xBB\xBFname,email\nAcme,info@acme.test\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "email"}, table.Headers)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Acme", table.Rows[0].Values["name"])
		assert.Equal(t, 2, table.Rows[0].Line)
	})

	t.Run("Blank rows are skipped and line numbers kept", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("name\nA\n,\nB\n"))
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, 2, table.Rows[0].Line)
		assert.Equal(t, 4, table.Rows[1].Line)
	})

	t.Run("Multi-line quoted field", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("name,notes\nA,\"line one\nline two\"\nB,x\n"))
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "line one\nline two", table.Rows[0].Values["notes"])
		assert.Equal(t, 4, table.Rows[1].Line)
	})

	t.Run("Short and long rows", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("a,b\n1\n2,3,4\n"))
		require.NoError(t, err)
		assert.Equal(t, "", table.Rows[0].Values["b"])
		assert.Equal(t, "3", table.Rows[1].Values["b"])
	})

	t.Run("Blank and duplicate headers", func(t *testing.T) {
		table, err := ParseCSV(strings.NewReader("email,,email,\nx,y,z\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"email", "column_2", "email (2)"}, table.Headers)
	})

	t.Run("Empty file", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("  \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid UTF-8", func(t *testing.T) {
		_, err := ParseCSV(bytes.NewReader([]byte("name\n\xff\xfe\n")))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestParseJSON(t *testing.T) {
	t.Run("Array of objects", func(t *testing.T) {
		src := `[{"name":"Acme","employees":12,"active":true,"tags":["a", "b"]},{"name":"Globex","city":null,"extra":"x"}]`
		table, err := ParseJSON(strings.NewReader(src))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "employees", "active", "tags", "city", "extra"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "12", table.Rows[0].Values["employees"])
		assert.Equal(t, "true", table.Rows[0].Values["active"])
		assert.Equal(t, `["a","b"]`, table.Rows[0].Values["tags"])
		assert.Equal(t, "", table.Rows[1].Values["city"])
		assert.Equal(t, "", table.Rows[1].Values["employees"])
		assert.Equal(t, 1, table.Rows[0].Line)
		assert.Equal(t, 2, table.Rows[1].Line)
	})

	t.Run("Data envelope", func(t *testing.T) {
		src := `{"meta":{"source":"crm"},"data":[{"name":"Acme"}]}`
		table, err := ParseJSON(strings.NewReader(src))
		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Acme", table.Rows[0].Values["name"])
	})

	t.Run("Decimal text preserved", func(t *testing.T) {
		table, err := ParseJSON(strings.NewReader(`[{"amount": 1234.50}]`))
		require.NoError(t, err)
		assert.Equal(t, "1234.50", table.Rows[0].Values["amount"])
	})

	for name, src := range map[string]string{
		"Scalar":              `42`,
		"Object with no data": `{"rows":[]}`,
		"Array of scalars":    `[1,2]`,
		"Truncated":           `[{"name":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrInvalidJSON)
		})
	}

	t.Run("Empty array", func(t *testing.T) {
		_, err := ParseJSON(strings.NewReader(`[]`))
		assert.ErrorIs(t, err, ErrNoDataRows)
	})
}

func TestParseXLSX(t *testing.T) {
	build := func(t *testing.T, sheet string, rows [][]any) []byte {
		t.Helper()
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		return buf.Bytes()
	}

	data := build(t, "Companies", [][]any{
		{"Name", "Employees"},
		{"Acme", 12},
		{"", ""},
		{"Globex", 40},
	})

	t.Run("First sheet", func(t *testing.T) {
		table, err := ParseXLSX(bytes.NewReader(data), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Name", "Employees"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "12", table.Rows[0].Values["Employees"])
		assert.Equal(t, 4, table.Rows[1].Line)
	})

	t.Run("Named sheet", func(t *testing.T) {
		table, err := ParseXLSX(bytes.NewReader(data), "Companies")
		require.NoError(t, err)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("Missing sheet", func(t *testing.T) {
		_, err := ParseXLSX(bytes.NewReader(data), "Nope")
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})

	t.Run("Not a workbook", func(t *testing.T) {
		_, err := ParseXLSX(strings.NewReader("name\nAcme"), "")
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	t.Run("Max rows", func(t *testing.T) {
		_, err := Parse(bulk.FormatCSV, strings.NewReader("name\na\nb\nc\n"), ParseOptions{MaxRows: 2})
		assert.ErrorIs(t, err, ErrTooManyRows)
	})

	t.Run("Header only", func(t *testing.T) {
		_, err := Parse(bulk.FormatCSV, strings.NewReader("name,email\n"), ParseOptions{})
		assert.ErrorIs(t, err, ErrNoDataRows)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		_, err := Parse(bulk.FileFormat("xml"), strings.NewReader("<a/>"), ParseOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]bulk.FileFormat{
		"contacts.xlsx": bulk.FormatXLSX,
		"LEADS.CSV":     bulk.FormatCSV,
		"dump.json":     bulk.FormatJSON,
	}
	for name, want := range tests {
		got, err := DetectFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := DetectFormat("contacts.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTemplate(t *testing.T) {
	for _, entity := range bulk.EntityTypes {
		for _, format := range []bulk.FileFormat{bulk.FormatXLSX, bulk.FormatCSV, bulk.FormatJSON} {
			t.Run(string(entity)+"/"+string(format), func(t *testing.T) {
				tpl, err := Template(entity, format)
				require.NoError(t, err)
				assert.Contains(t, tpl.FileName, string(format))

				// every template parses back into the catalog headers with one row
				table, err := Parse(format, bytes.NewReader(tpl.Content), ParseOptions{})
				require.NoError(t, err)
				fields := MustFields(entity)
				require.Len(t, table.Headers, len(fields))
				for i, f := range fields {
					assert.Equal(t, f.Name, table.Headers[i])
				}
				assert.Len(t, table.Rows, 1)

				mapping := SuggestMapping(fields, table.Headers)
				assert.NoError(t, ValidateMapping(fields, table.Headers, mapping))
			})
		}
	}

	_, err := Template(bulk.EntityContacts, bulk.FileFormat("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Template(bulk.EntityType("widgets"), bulk.FormatCSV)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}
