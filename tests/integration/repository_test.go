//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusFilter(stage sales.Stage) shared.Filter {
	f := shared.DefaultFilter()
	f.Filters = map[string]interface{}{"status": string(stage)}
	return f
}

func TestLeadKanbanOnPostgres(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	repo := persistence.NewGormLeadRepository(db.DB)
	tenant := uuid.New()

	add := func(name string, stage sales.Stage) *sales.Lead {
		l, err := sales.NewLead(tenant, sales.LeadDetails{Name: name}, stage)
		require.NoError(t, err)
		pos, err := repo.NextPosition(ctx, tenant, stage)
		require.NoError(t, err)
		l.SetPosition(pos)
		require.NoError(t, repo.Save(ctx, l))
		return l
	}
	a := add("alpha", sales.StageWarm)
	b := add("bravo", sales.StageWarm)
	c := add("charlie", sales.StageCold)

	require.NoError(t, c.MoveTo(sales.StageWarm, 1, ""))
	require.NoError(t, repo.SaveMove(ctx, c))

	warm, err := repo.FindAllUnpaged(ctx, tenant, statusFilter(sales.StageWarm))
	require.NoError(t, err)
	require.Len(t, warm, 3)
	assert.Equal(t, []uuid.UUID{a.ID, c.ID, b.ID}, []uuid.UUID{warm[0].ID, warm[1].ID, warm[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{warm[0].Position, warm[1].Position, warm[2].Position})

	next, err := repo.NextPosition(ctx, tenant, sales.StageCold)
	require.NoError(t, err)
	assert.Zero(t, next)
}

func TestOpportunityCompetitorsOnPostgres(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	competitors := persistence.NewGormCompetitorRepository(db.DB)
	opps := persistence.NewGormOpportunityRepository(db.DB)
	tenant := uuid.New()

	ids := make([]uuid.UUID, 0, 2)
	for _, name := range []string{"Globex", "Umbrella"} {
		c, err := partner.NewCompetitor(tenant, partner.CompetitorDetails{Name: name})
		require.NoError(t, err)
		require.NoError(t, competitors.Save(ctx, c))
		ids = append(ids, c.ID)
	}

	opp, err := sales.NewOpportunity(tenant, sales.OpportunityDetails{
		Name: "Platform renewal", Amount: decimal.RequireFromString("48000.00"), CompetitorIDs: ids,
	}, sales.StageHot)
	require.NoError(t, err)
	require.NoError(t, opps.Save(ctx, opp))

	linked, err := opps.FindByCompetitor(ctx, tenant, ids[1])
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.True(t, decimal.RequireFromString("48000").Equal(linked[0].Amount))

	require.NoError(t, competitors.DeleteForTenant(ctx, tenant, ids[0]))
	reloaded, err := opps.FindByIDForTenant(ctx, tenant, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1]}, reloaded.CompetitorIDs)

	_, err = opps.FindByIDForTenant(ctx, uuid.New(), opp.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSettingsUpsertOnPostgres(t *testing.T) {
	ctx := context.Background()
	db := NewTestDB(t)
	repo := persistence.NewGormSettingsRepository(db.DB)
	tenant := uuid.New()

	s := settings.Default(tenant)
	require.NoError(t, repo.Save(ctx, s))

	next := *s
	next.Currency = "gbp"
	require.NoError(t, s.Apply(next))
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByTenant(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, "GBP", loaded.Currency)
}
