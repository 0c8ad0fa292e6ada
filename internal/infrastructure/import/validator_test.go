package dataimport

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCSV(t *testing.T, src string) *Table {
	t.Helper()
	table, err := ParseCSV(strings.NewReader(src))
	require.NoError(t, err)
	return table
}

func identity(headers ...string) Mapping {
	m := Mapping{}
	for _, h := range headers {
		m[h] = h
	}
	return m
}

func TestValidator_Companies(t *testing.T) {
	table := mustCSV(t, strings.Join([]string{
		"name,employee_count,annual_revenue,email",
		"Acme,12,\"$1,500,000.50\",info@acme.test",
		"A,5,10,",
		"Globex,-1,abc,not-an-email",
		"acme,3,0,",
		",,,",
		"Initech,2.5,,",
	}, "\n"))

	v := NewValidator(MustFields(bulk.EntityCompanies), nil, 100)
	res, err := v.Validate(context.Background(), table, identity(table.Headers...))
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalRows)
	assert.Equal(t, 1, res.ValidRows)
	assert.Equal(t, 4, res.ErrorRows)

	rec := res.Records[0]
	assert.Equal(t, 2, rec.Line)
	assert.Equal(t, "Acme", rec.String("name"))
	assert.Equal(t, 12, rec.Int("employee_count"))
	assert.True(t, decimal.RequireFromString("1500000.50").Equal(rec.Decimal("annual_revenue")))
	assert.Equal(t, "info@acme.test", rec.String("email"))
	assert.False(t, rec.Has("notes"))

	codes := map[int][]string{}
	for _, e := range res.Errors.Errors() {
		codes[e.Row] = append(codes[e.Row], e.Code)
	}
	assert.Equal(t, []string{ErrCodeInvalidLength}, codes[3])
	assert.ElementsMatch(t, []string{ErrCodeInvalidRange, ErrCodeInvalidType, ErrCodeInvalidEmail}, codes[4])
	assert.Equal(t, []string{ErrCodeDuplicateInFile}, codes[5])
	assert.Equal(t, []string{ErrCodeInvalidType}, codes[7])
}

func TestValidator_RequiredAndEnum(t *testing.T) {
	table := mustCSV(t, "Category,Amount,Description,Date\nTravel,10,Taxi,2026-03-01\nfood,0,,yesterday\n")
	mapping := Mapping{"Category": "category", "Amount": "amount", "Description": "description", "Date": "incurred_at"}

	res, err := NewValidator(MustFields(bulk.EntityExpenses), nil, 100).Validate(context.Background(), table, mapping)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "travel", rec.String("category"))
	when, ok := rec.Time("incurred_at")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), when)

	errs := res.Errors.Errors()
	got := map[string]string{}
	for _, e := range errs {
		assert.Equal(t, 3, e.Row)
		got[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{
		"category":    ErrCodeInvalidEnum,
		"amount":      ErrCodeInvalidRange,
		"description": ErrCodeRequiredField,
		"incurred_at": ErrCodeInvalidType,
	}, got)
	for _, e := range errs {
		if e.Field == "incurred_at" {
			assert.Equal(t, "Date", e.Column)
			assert.Equal(t, "yesterday", e.Value)
		}
	}
}

func TestValidator_EnumNormalisation(t *testing.T) {
	table := mustCSV(t, "name,source,status\nLead one,Cold Call,hot\n")
	res, err := NewValidator(MustFields(bulk.EntityLeads), nil, 10).Validate(context.Background(), table, identity(table.Headers...))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "cold_call", res.Records[0].String("source"))
	assert.Equal(t, "HOT", res.Records[0].String("status"))
}

func TestValidator_References(t *testing.T) {
	acme := uuid.New()
	calls := 0
	resolver := ResolverFunc(func(_ context.Context, kind RefKind, key string) (uuid.UUID, bool, error) {
		calls++
		if kind == RefCompany && strings.EqualFold(key, "acme") {
			return acme, true, nil
		}
		return uuid.Nil, false, nil
	})

	table := mustCSV(t, "first_name,last_name,company\nAda,L,Acme\nBob,B,ACME\nCy,C,Globex\nDi,D,\n")
	res, err := NewValidator(MustFields(bulk.EntityContacts), resolver, 10).Validate(context.Background(), table, identity(table.Headers...))
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, &acme, res.Records[0].Ref("company"))
	assert.Equal(t, &acme, res.Records[1].Ref("company"))
	assert.Nil(t, res.Records[2].Ref("company"))
	assert.Equal(t, 2, calls, "lookups are cached case-insensitively")

	errs := res.Errors.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeReferenceNotFound, errs[0].Code)
	assert.Equal(t, 4, errs[0].Row)
}

func TestValidator_ResolverFailure(t *testing.T) {
	boom := errors.New("db down")
	resolver := ResolverFunc(func(context.Context, RefKind, string) (uuid.UUID, bool, error) {
		return uuid.Nil, false, boom
	})
	table := mustCSV(t, "first_name,last_name,company\nAda,L,Acme\n")
	_, err := NewValidator(MustFields(bulk.EntityContacts), resolver, 10).Validate(context.Background(), table, identity(table.Headers...))
	assert.ErrorIs(t, err, boom)
}

func TestValidator_InvalidMapping(t *testing.T) {
	table := mustCSV(t, "first_name\nAda\n")
	_, err := NewValidator(MustFields(bulk.EntityContacts), nil, 10).Validate(context.Background(), table, identity("first_name"))
	assert.ErrorIs(t, err, ErrInvalidMapping)
}

func TestValidator_ErrorCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("name\n")
	for i := 0; i < 30; i++ {
		b.WriteString("x\n")
	}
	table := mustCSV(t, b.String())
	res, err := NewValidator(MustFields(bulk.EntityCompetitors), nil, 5).Validate(context.Background(), table, identity("name"))
	require.NoError(t, err)
	assert.Equal(t, 30, res.ErrorRows)
	assert.Len(t, res.Errors.Errors(), 5)
	assert.True(t, res.Errors.IsTruncated())
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-03-14", "2026/03/14", "03/14/2026", "3/14/2026", "03-14-26", "14.03.2026", "14-Mar-2026", "Mar 14, 2026", "46095"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	for in, want := range map[string]string{
		"1,234.50": "1234.5",
		"$ 99":     "99",
		"€1 000":   "1000",
		"-12.75":   "-12.75",
		"1000000":  "1000000",
	} {
		got, err := ParseDecimal(in)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), in)
	}
	_, err := ParseDecimal("twelve")
	assert.Error(t, err)
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	ec.Add(RowError{Row: 5, Code: ErrCodeInvalidType, Message: "bad"})
	ec.Add(RowError{Row: 2, Column: "email", Code: ErrCodeInvalidEmail, Message: "bad email"})
	ec.Add(RowError{Row: 2, Code: ErrCodeRequiredField, Message: "missing"})

	assert.Equal(t, 3, ec.TotalCount())
	assert.Equal(t, 2, ec.RowCount())
	assert.True(t, ec.HasRow(5))
	assert.True(t, ec.IsTruncated())

	errs := ec.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, "row 2, column 'email': bad email", errs[0].Error())
	assert.Equal(t, map[string]int{ErrCodeInvalidType: 1, ErrCodeInvalidEmail: 1}, ec.Summary())
}
