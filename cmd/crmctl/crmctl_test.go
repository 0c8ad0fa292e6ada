package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	partnerapp "github.com/crm/backend/internal/application/partner"
	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/bootstrap"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) *bootstrap.Services {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := cache.NewMemoryStore(0)
	services := bootstrap.NewServices(bootstrap.NewRepositories(db.DB), bootstrap.Options{Cache: store})
	t.Cleanup(func() {
		services.Close()
		_ = store.Close()
	})
	return services
}

func TestSeeder_Seed(t *testing.T) {
	ctx := context.Background()
	services := newTestServices(t)
	tenant := uuid.New()

	seeder := NewSeeder(services, 42)
	seeder.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	res, err := seeder.Seed(ctx, tenant, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Companies)
	assert.Equal(t, 12, res.Contacts)
	assert.Equal(t, 6, res.Leads)
	assert.Equal(t, 6, res.Opportunities)
	assert.Equal(t, 12, res.Activities)
	assert.Equal(t, 3, res.Expenses)
	assert.LessOrEqual(t, res.Competitors, 3)

	_, total, err := services.Companies.List(ctx, tenant, partnerapp.CompanyListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	board, err := services.Leads.Board(ctx, tenant, salesapp.LeadListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 6, board.Total)

	_, total, err = services.Companies.List(ctx, uuid.New(), partnerapp.CompanyListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total, "seeding stays inside its tenant")
}

func TestSeeder_RejectsNonPositiveCount(t *testing.T) {
	_, err := NewSeeder(newTestServices(t), 1).Seed(context.Background(), uuid.New(), 0)
	assert.Error(t, err)
}

func TestRunImport(t *testing.T) {
	ctx := context.Background()
	services := newTestServices(t)
	tenant := uuid.New()

	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, os.WriteFile(path, []byte("Company Name,Sector\nAcme Corp,Manufacturing\nGlobex,Energy\n"), 0o600))

	report, err := runImport(ctx, services.Import, tenant, importOptions{
		entity:   "companies",
		file:     path,
		conflict: "skip",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Validate.ValidRows)
	require.NotNil(t, report.Execute)
	assert.Equal(t, 2, report.Execute.ImportedRows)

	companies, _, err := services.Companies.List(ctx, tenant, partnerapp.CompanyListFilter{Search: "Acme"})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Manufacturing", companies[0].Industry)

	t.Run("second run skips existing rows", func(t *testing.T) {
		report, err := runImport(ctx, services.Import, tenant, importOptions{entity: "companies", file: path, conflict: "skip"})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Execute.SkippedRows)
	})

	t.Run("dry run leaves data alone", func(t *testing.T) {
		report, err := runImport(ctx, services.Import, uuid.New(), importOptions{entity: "companies", file: path, dryRun: true})
		require.NoError(t, err)
		assert.Nil(t, report.Execute)
	})

	t.Run("explicit mapping", func(t *testing.T) {
		report, err := runImport(ctx, services.Import, uuid.New(), importOptions{
			entity:  "companies",
			file:    path,
			mapping: []string{"Company Name=name"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Execute.ImportedRows)
	})
}

func TestParseMapping(t *testing.T) {
	m, err := parseMapping([]string{"E-mail = email", "Full Name=name"})
	require.NoError(t, err)
	assert.Equal(t, "email", m["E-mail"])
	assert.Equal(t, "name", m["Full Name"])

	m, err = parseMapping(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = parseMapping([]string{"email"})
	assert.Error(t, err)
	_, err = parseMapping([]string{"=email"})
	assert.Error(t, err)
}

func TestParseTenant(t *testing.T) {
	id, err := parseTenant("")
	require.NoError(t, err)
	assert.Equal(t, middleware.DevelopmentTenantID, id)

	want := uuid.New()
	id, err = parseTenant(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, id)

	_, err = parseTenant("acme")
	assert.Error(t, err)
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())
	for _, sub := range []string{"seed", "import", "user"} {
		assert.Contains(t, out.String(), sub)
	}

	root = newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import", "--entity", "companies"})
	assert.Error(t, root.Execute(), "--file is required")
}
