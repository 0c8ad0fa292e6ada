package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tenantA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	tenantB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func defaultFilter() shared.Filter {
	return shared.DefaultFilter()
}

func filterWith(key string, value any) shared.Filter {
	f := shared.DefaultFilter()
	f.Filters = map[string]interface{}{key: value}
	return f
}

func mustCompany(t *testing.T, repo *GormCompanyRepository, tenantID uuid.UUID, name, industry string) *partner.Company {
	t.Helper()
	c, err := partner.NewCompany(tenantID, partner.CompanyDetails{Name: name, Industry: industry})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestCompanyRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormCompanyRepository(db.DB)

	acme := mustCompany(t, repo, tenantA, "Acme Corp", "Manufacturing")
	mustCompany(t, repo, tenantA, "Globex", "Software")
	mustCompany(t, repo, tenantB, "Acme Corp", "Manufacturing")

	t.Run("find by id is tenant scoped", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantA, acme.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", found.Name)

		_, err = repo.FindByIDForTenant(ctx, tenantB, acme.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by name ignores case", func(t *testing.T) {
		found, err := repo.FindByName(ctx, tenantA, "  acme corp ")
		require.NoError(t, err)
		assert.Equal(t, acme.ID, found.ID)
	})

	t.Run("search and filters", func(t *testing.T) {
		f := defaultFilter()
		f.Search = "GLOB"
		list, err := repo.FindAllForTenant(ctx, tenantA, f)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Globex", list[0].Name)

		count, err := repo.CountForTenant(ctx, tenantA, filterWith("industry", "Manufacturing"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("default order is by name", func(t *testing.T) {
		list, err := repo.FindAllForTenant(ctx, tenantA, defaultFilter())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Acme Corp", list[0].Name)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		list, err := repo.FindByIDs(ctx, tenantA, []uuid.UUID{acme.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantA, acme.ID))
		assert.ErrorIs(t, repo.DeleteForTenant(ctx, tenantA, acme.ID), shared.ErrNotFound)
	})
}

func TestContactRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	companies := NewGormCompanyRepository(db.DB)
	repo := NewGormContactRepository(db.DB)

	acme := mustCompany(t, companies, tenantA, "Acme Corp", "")
	jane, err := partner.NewContact(tenantA, partner.ContactDetails{
		FirstName: "Jane", LastName: "Doe", Email: "Jane@Example.com", CompanyID: &acme.ID,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, jane))
	john, err := partner.NewContact(tenantA, partner.ContactDetails{FirstName: "John", LastName: "Smith"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, john))

	found, err := repo.FindByEmail(ctx, tenantA, "JANE@example.com")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, found.ID)

	_, err = repo.FindByEmail(ctx, tenantA, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	byCompany, err := repo.FindByCompany(ctx, tenantA, acme.ID, defaultFilter())
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, "Jane", byCompany[0].FirstName)

	require.NoError(t, repo.DetachCompany(ctx, tenantA, acme.ID))
	reloaded, err := repo.FindByIDForTenant(ctx, tenantA, jane.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CompanyID)
}

func TestCompetitorRepository_DeleteRemovesLinks(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormCompetitorRepository(db.DB)
	opps := NewGormOpportunityRepository(db.DB)

	rival, err := partner.NewCompetitor(tenantA, partner.CompetitorDetails{Name: "Rival Inc"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rival))

	opp, err := sales.NewOpportunity(tenantA, sales.OpportunityDetails{
		Name: "Big deal", Amount: decimal.NewFromInt(1000), CompetitorIDs: []uuid.UUID{rival.ID},
	}, sales.StageWarm)
	require.NoError(t, err)
	require.NoError(t, opps.Save(ctx, opp))

	linked, err := opps.FindByCompetitor(ctx, tenantA, rival.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, []uuid.UUID{rival.ID}, linked[0].CompetitorIDs)

	require.NoError(t, repo.DeleteForTenant(ctx, tenantA, rival.ID))

	reloaded, err := opps.FindByIDForTenant(ctx, tenantA, opp.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.CompetitorIDs)
}

func TestLeadRepository_Kanban(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormLeadRepository(db.DB)

	pos, err := repo.NextPosition(ctx, tenantA, sales.StageWarm)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	newLead := func(name string, stage sales.Stage) *sales.Lead {
		l, err := sales.NewLead(tenantA, sales.LeadDetails{Name: name, Email: name + "@example.com"}, stage)
		require.NoError(t, err)
		next, err := repo.NextPosition(ctx, tenantA, stage)
		require.NoError(t, err)
		l.SetPosition(next)
		require.NoError(t, repo.Save(ctx, l))
		return l
	}

	a := newLead("alpha", sales.StageWarm)
	b := newLead("bravo", sales.StageWarm)
	c := newLead("charlie", sales.StageCold)

	pos, err = repo.NextPosition(ctx, tenantA, sales.StageWarm)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	// drop charlie at the top of the WARM column
	require.NoError(t, c.MoveTo(sales.StageWarm, 0, ""))
	require.NoError(t, repo.SaveMove(ctx, c))

	warm, err := repo.FindAllUnpaged(ctx, tenantA, filterWith("status", string(sales.StageWarm)))
	require.NoError(t, err)
	require.Len(t, warm, 3)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, []uuid.UUID{warm[0].ID, warm[1].ID, warm[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{warm[0].Position, warm[1].Position, warm[2].Position})

	found, err := repo.FindByEmail(ctx, tenantA, "BRAVO@example.com")
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)

	found, err = repo.FindByName(ctx, tenantA, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestLeadRepository_Detach(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormLeadRepository(db.DB)

	companyID, contactID := uuid.New(), uuid.New()
	l, err := sales.NewLead(tenantA, sales.LeadDetails{Name: "Linked", CompanyID: &companyID, ContactID: &contactID}, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, l))

	require.NoError(t, repo.DetachCompany(ctx, tenantA, companyID))
	require.NoError(t, repo.DetachContact(ctx, tenantA, contactID))

	reloaded, err := repo.FindByIDForTenant(ctx, tenantA, l.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CompanyID)
	assert.Nil(t, reloaded.ContactID)
	assert.Equal(t, sales.StageCold, reloaded.Stage)
}

func TestOpportunityRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormOpportunityRepository(db.DB)

	first, second := uuid.New(), uuid.New()
	opp, err := sales.NewOpportunity(tenantA, sales.OpportunityDetails{
		Name: "Renewal", Amount: decimal.RequireFromString("2500.50"), CompetitorIDs: []uuid.UUID{first, second},
	}, sales.StageHot)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, opp))

	found, err := repo.FindByIDForTenant(ctx, tenantA, opp.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2500.50").Equal(found.Amount))
	assert.Equal(t, 70, found.Probability)
	assert.ElementsMatch(t, []uuid.UUID{first, second}, found.CompetitorIDs)

	t.Run("save replaces competitor links", func(t *testing.T) {
		found.RemoveCompetitor(first)
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByIDForTenant(ctx, tenantA, opp.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{second}, reloaded.CompetitorIDs)
	})

	t.Run("stage filter and count", func(t *testing.T) {
		count, err := repo.CountForTenant(ctx, tenantA, filterWith("stage", "HOT"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		list, err := repo.FindAllForTenant(ctx, tenantA, filterWith("stage", "COLD"))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete removes links", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantA, opp.ID))
		linked, err := repo.FindByCompetitor(ctx, tenantA, second)
		require.NoError(t, err)
		assert.Empty(t, linked)
	})
}

func TestActivityRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormActivityRepository(db.DB)
	now := time.Now().UTC()
	leadID := uuid.New()

	save := func(subject string, due *time.Time) *activity.Activity {
		a, err := activity.NewActivity(tenantA, activity.Details{Type: activity.TypeTask, Subject: subject, DueAt: due, LeadID: &leadID})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, a))
		return a
	}
	past := now.Add(-2 * time.Hour)
	soon := now.Add(time.Hour)
	later := now.Add(48 * time.Hour)

	overdue := save("Overdue call", &past)
	upcomingLater := save("Later meeting", &later)
	upcomingSoon := save("Soon meeting", &soon)
	done := save("Finished", &past)
	require.NoError(t, done.Complete())
	require.NoError(t, repo.Save(ctx, done))

	upcoming, err := repo.FindUpcoming(ctx, tenantA, now, 5)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, upcomingSoon.ID, upcoming[0].ID)
	assert.Equal(t, upcomingLater.ID, upcoming[1].ID)

	overdueList, err := repo.FindOverdue(ctx, tenantA, now, defaultFilter())
	require.NoError(t, err)
	require.Len(t, overdueList, 1)
	assert.Equal(t, overdue.ID, overdueList[0].ID)

	n, err := repo.CountOverdue(ctx, tenantA, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	open, err := repo.CountForTenant(ctx, tenantA, filterWith("completed", false))
	require.NoError(t, err)
	assert.Equal(t, int64(3), open)

	related, err := repo.FindByRelated(ctx, tenantA, activity.RelatedLead, leadID, defaultFilter())
	require.NoError(t, err)
	assert.Len(t, related, 4)

	recent, err := repo.FindRecent(ctx, tenantA, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	require.NoError(t, repo.DetachRelated(ctx, tenantA, activity.RelatedLead, leadID))
	related, err = repo.FindByRelated(ctx, tenantA, activity.RelatedLead, leadID, defaultFilter())
	require.NoError(t, err)
	assert.Empty(t, related)

	_, err = repo.FindByRelated(ctx, tenantA, activity.RelatedKind("ticket"), leadID, defaultFilter())
	assert.Error(t, err)
}

func TestExpenseRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormExpenseRepository(db.DB)

	save := func(category finance.ExpenseCategory, amount string, at time.Time) *finance.Expense {
		e, err := finance.NewExpense(tenantA, finance.ExpenseDetails{
			Category: category, Amount: decimal.RequireFromString(amount), Description: "expense", IncurredAt: at,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, e))
		return e
	}
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	save(finance.ExpenseCategoryTravel, "120.00", jan)
	software := save(finance.ExpenseCategorySoftware, "49.99", feb)

	inJan, err := repo.FindIncurredBetween(ctx, tenantA, jan.AddDate(0, 0, -14), feb.AddDate(0, 0, -9))
	require.NoError(t, err)
	require.Len(t, inJan, 1)
	assert.Equal(t, finance.ExpenseCategoryTravel, inJan[0].Category)

	list, err := repo.FindAllForTenant(ctx, tenantA, filterWith("category", string(finance.ExpenseCategorySoftware)))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.RequireFromString("49.99").Equal(list[0].Amount))

	count, err := repo.CountForTenant(ctx, tenantA, filterWith("from", feb))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, software.Submit())
	require.NoError(t, repo.Save(ctx, software))
	reloaded, err := repo.FindByIDForTenant(ctx, tenantA, software.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseStatusSubmitted, reloaded.Status)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormSettingsRepository(db.DB)

	_, err := repo.FindByTenant(ctx, tenantA)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	s := settings.Default(tenantA)
	next := *s
	next.Currency = "eur"
	next.StageLabels = map[string]string{"hot": "On fire"}
	require.NoError(t, s.Apply(next))
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByTenant(ctx, tenantA)
	require.NoError(t, err)
	assert.Equal(t, "EUR", loaded.Currency)
	assert.Equal(t, "On fire", loaded.StageLabels["HOT"])

	_, err = repo.FindByTenant(ctx, tenantB)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormUserRepository(db.DB)

	u, err := identity.NewUser(tenantA, "Admin@Example.com", "Admin", "correct-horse", identity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "admin@example.COM")
	require.NoError(t, err)
	assert.Equal(t, tenantA, found.TenantID)
	assert.True(t, found.VerifyPassword("correct-horse"))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleAdmin, byID.Role)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestImportHistoryRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)
	repo := NewGormImportHistoryRepository(db.DB)

	h, err := bulk.NewImportHistory(tenantA, bulk.EntityContacts, bulk.FormatCSV, "contacts.csv", 512, bulk.ConflictModeSkip)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(3))
	require.NoError(t, h.Complete(2, 0, 0, 1, []bulk.ErrorDetail{{Row: 3, Column: "email", Code: "INVALID_EMAIL", Message: "bad email"}}))
	require.NoError(t, repo.Save(ctx, h))

	found, err := repo.FindByIDForTenant(ctx, tenantA, h.ID)
	require.NoError(t, err)
	assert.Equal(t, bulk.StatusCompleted, found.Status)
	require.Len(t, found.ErrorDetails, 1)
	assert.Equal(t, "email", found.ErrorDetails[0].Column)

	list, err := repo.FindAllForTenant(ctx, tenantA, filterWith("entity_type", string(bulk.EntityContacts)))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := repo.CountForTenant(ctx, tenantA, filterWith("status", string(bulk.StatusFailed)))
	require.NoError(t, err)
	assert.Zero(t, count)
}
