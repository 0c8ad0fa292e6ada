package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLead(t *testing.T, stage Stage) *Lead {
	t.Helper()
	lead, err := NewLead(uuid.New(), LeadDetails{Name: "Acme rollout", EstimatedValue: decimal.NewFromInt(500)}, stage)
	require.NoError(t, err)
	lead.ClearDomainEvents()
	return lead
}

func TestParseStage(t *testing.T) {
	stage, err := ParseStage(" warm ")
	require.NoError(t, err)
	assert.Equal(t, StageWarm, stage)

	_, err = ParseStage("frozen")
	assert.Error(t, err)
}

func TestStage_Properties(t *testing.T) {
	assert.True(t, StageHot.IsOpen())
	assert.False(t, StageWon.IsOpen())
	assert.True(t, StageLost.IsClosed())
	assert.Equal(t, 70, StageHot.DefaultProbability())
	assert.Equal(t, 0, StageLost.DefaultProbability())
	assert.Equal(t, 0, StageCold.Order())
	assert.Equal(t, 4, StageLost.Order())
	assert.Equal(t, len(Stages), Stage("X").Order())
}

func TestNewLead(t *testing.T) {
	t.Run("defaults to cold and other source", func(t *testing.T) {
		lead, err := NewLead(uuid.New(), LeadDetails{Name: "Lead A"}, "")
		require.NoError(t, err)
		assert.Equal(t, StageCold, lead.Stage)
		assert.Equal(t, LeadSourceOther, lead.Source)
		assert.Nil(t, lead.ClosedAt)
	})

	t.Run("closed stage is stamped", func(t *testing.T) {
		lead, err := NewLead(uuid.New(), LeadDetails{Name: "Lead A"}, StageWon)
		require.NoError(t, err)
		assert.NotNil(t, lead.ClosedAt)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := NewLead(uuid.New(), LeadDetails{Name: "L"}, "")
		assert.Error(t, err)
		_, err = NewLead(uuid.New(), LeadDetails{Name: "Lead", Source: "carrier-pigeon"}, "")
		assert.Error(t, err)
		_, err = NewLead(uuid.New(), LeadDetails{Name: "Lead", EstimatedValue: decimal.NewFromInt(-1)}, "")
		assert.Error(t, err)
		_, err = NewLead(uuid.New(), LeadDetails{Name: "Lead"}, Stage("NOPE"))
		assert.Error(t, err)
	})
}

func TestLead_MoveTo(t *testing.T) {
	t.Run("stage change raises event", func(t *testing.T) {
		lead := newTestLead(t, StageCold)
		require.NoError(t, lead.MoveTo(StageHot, 2, ""))
		assert.Equal(t, StageHot, lead.Stage)
		assert.Equal(t, 2, lead.Position)

		events := lead.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*StageChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StageCold, evt.From)
		assert.Equal(t, StageHot, evt.To)
	})

	t.Run("same stage only reorders", func(t *testing.T) {
		lead := newTestLead(t, StageWarm)
		require.NoError(t, lead.MoveTo(StageWarm, 5, ""))
		assert.Equal(t, 5, lead.Position)
		assert.Empty(t, lead.GetDomainEvents())
	})

	t.Run("lost records reason and close date", func(t *testing.T) {
		lead := newTestLead(t, StageHot)
		require.NoError(t, lead.MoveTo(StageLost, 0, "budget cut"))
		assert.Equal(t, "budget cut", lead.LostReason)
		assert.NotNil(t, lead.ClosedAt)
	})

	t.Run("reopening clears close data", func(t *testing.T) {
		lead := newTestLead(t, StageHot)
		require.NoError(t, lead.MoveTo(StageLost, 0, "budget cut"))
		require.NoError(t, lead.MoveTo(StageWarm, 0, ""))
		assert.Nil(t, lead.ClosedAt)
		assert.Empty(t, lead.LostReason)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		lead := newTestLead(t, StageCold)
		assert.Error(t, lead.MoveTo(Stage("DONE"), 0, ""))
		assert.Error(t, lead.MoveTo(StageWarm, -1, ""))
		assert.Equal(t, StageCold, lead.Stage)
	})
}

func TestLead_MarkConverted(t *testing.T) {
	lead := newTestLead(t, StageHot)
	oppID := uuid.New()

	require.NoError(t, lead.MarkConverted(oppID))
	assert.True(t, lead.IsConverted())
	assert.Equal(t, StageWon, lead.Stage)
	assert.Len(t, lead.GetDomainEvents(), 2)

	err := lead.MarkConverted(uuid.New())
	assert.Error(t, err)
}

func TestOpportunity(t *testing.T) {
	competitor := uuid.New()

	t.Run("probability follows stage default", func(t *testing.T) {
		opp, err := NewOpportunity(uuid.New(), OpportunityDetails{
			Name:          "Big deal",
			Amount:        decimal.NewFromInt(1000),
			CompetitorIDs: []uuid.UUID{competitor, competitor, uuid.Nil},
		}, StageWarm)
		require.NoError(t, err)
		assert.Equal(t, 40, opp.Probability)
		assert.Len(t, opp.CompetitorIDs, 1)
		assert.True(t, decimal.NewFromInt(400).Equal(opp.WeightedAmount()))

		require.NoError(t, opp.MoveTo(StageHot, 0, ""))
		assert.Equal(t, 70, opp.Probability)
	})

	t.Run("explicit probability wins on create", func(t *testing.T) {
		p := 55
		opp, err := NewOpportunity(uuid.New(), OpportunityDetails{Name: "Deal", Probability: &p}, StageCold)
		require.NoError(t, err)
		assert.Equal(t, 55, opp.Probability)

		p = 101
		_, err = NewOpportunity(uuid.New(), OpportunityDetails{Name: "Deal", Probability: &p}, StageCold)
		assert.Error(t, err)
	})

	t.Run("remove competitor", func(t *testing.T) {
		opp, err := NewOpportunity(uuid.New(), OpportunityDetails{Name: "Deal", CompetitorIDs: []uuid.UUID{competitor}}, "")
		require.NoError(t, err)
		assert.True(t, opp.RemoveCompetitor(competitor))
		assert.Empty(t, opp.CompetitorIDs)
		assert.False(t, opp.RemoveCompetitor(competitor))
	})
}

func TestBuildBoard(t *testing.T) {
	tenant := uuid.New()
	mk := func(name string, stage Stage, pos int, value int64) Lead {
		l, err := NewLead(tenant, LeadDetails{Name: name, EstimatedValue: decimal.NewFromInt(value)}, stage)
		require.NoError(t, err)
		l.Position = pos
		return *l
	}

	leads := []Lead{
		mk("b-warm", StageWarm, 1, 10),
		mk("a-warm", StageWarm, 0, 20),
		mk("hot", StageHot, 0, 5),
	}

	board := BuildBoard(leads, LeadCard, LeadValue)
	require.Len(t, board, 5)
	assert.Equal(t, StageCold, board[0].Stage)
	assert.Equal(t, 0, board[0].Count)
	assert.NotNil(t, board[0].Cards)

	warm := board[1]
	assert.Equal(t, 2, warm.Count)
	assert.True(t, decimal.NewFromInt(30).Equal(warm.Value))
	assert.Equal(t, "a-warm", warm.Cards[0].Name)
	assert.Equal(t, "b-warm", warm.Cards[1].Name)
	assert.Equal(t, 1, board[2].Count)
}
