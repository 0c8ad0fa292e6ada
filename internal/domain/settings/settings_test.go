package settings

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Apply(t *testing.T) {
	base := Default(uuid.New())

	t.Run("valid update", func(t *testing.T) {
		s := Default(uuid.New())
		next := *base
		next.Currency = "eur"
		next.Timezone = "Europe/Lisbon"
		next.FiscalYearStartMonth = 4
		next.MonthlyExpenseBudget = decimal.NewFromInt(5000)
		next.StageLabels = map[string]string{"hot": "On fire"}

		require.NoError(t, s.Apply(next))
		assert.Equal(t, "EUR", s.Currency)
		assert.Equal(t, "On fire", s.StageLabels["HOT"])
		assert.Equal(t, 2, s.Version)
	})

	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"currency", func(s *Settings) { s.Currency = "EURO" }},
		{"fiscal month", func(s *Settings) { s.FiscalYearStartMonth = 13 }},
		{"budget", func(s *Settings) { s.MonthlyExpenseBudget = decimal.NewFromInt(-1) }},
		{"timezone", func(s *Settings) { s.Timezone = "Mars/Olympus" }},
		{"stage label key", func(s *Settings) { s.StageLabels = map[string]string{"DONE": "x"} }},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			next := *base
			next.StageLabels = nil
			tt.mutate(&next)
			assert.Error(t, Default(uuid.New()).Apply(next))
		})
	}
}

func TestSettings_FiscalYearRange(t *testing.T) {
	s := Default(uuid.New())
	start, end := s.FiscalYearRange(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), end)

	s.FiscalYearStartMonth = 4
	start, end = s.FiscalYearRange(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestSettings_FiscalYearRange_TenantZone(t *testing.T) {
	s := Default(uuid.New())
	s.Timezone = "America/New_York"
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// already 2027 in UTC, still 2026 in New York
	start, end := s.FiscalYearRange(time.Date(2027, 1, 1, 3, 0, 0, 0, time.UTC))
	assert.True(t, start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, ny)))
	assert.True(t, end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, ny)))
	assert.Equal(t, "America/New_York", start.Location().String())
}

func TestSettings_Location(t *testing.T) {
	s := Default(uuid.New())
	assert.Equal(t, time.UTC, s.Location())

	s.Timezone = "Europe/Berlin"
	assert.Equal(t, "Europe/Berlin", s.Location().String())

	s.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, s.Location())
}
