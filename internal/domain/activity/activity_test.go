package activity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivity(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid", func(t *testing.T) {
		nilID := uuid.Nil
		a, err := NewActivity(tenantID, Details{Type: "CALL", Subject: "Intro call", ContactID: &nilID})
		require.NoError(t, err)
		assert.Equal(t, TypeCall, a.Type)
		assert.Nil(t, a.ContactID)
		assert.False(t, a.IsCompleted())
		assert.Len(t, a.GetDomainEvents(), 1)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := NewActivity(tenantID, Details{Type: "fax", Subject: "Old school"})
		assert.Error(t, err)
	})

	t.Run("subject required", func(t *testing.T) {
		_, err := NewActivity(tenantID, Details{Type: TypeTask})
		assert.Error(t, err)
	})
}

func TestActivity_CompleteReopen(t *testing.T) {
	a, err := NewActivity(uuid.New(), Details{Type: TypeTask, Subject: "Send quote"})
	require.NoError(t, err)

	require.NoError(t, a.Complete())
	assert.True(t, a.IsCompleted())
	assert.Error(t, a.Complete())

	require.NoError(t, a.Reopen())
	assert.False(t, a.IsCompleted())
	assert.Error(t, a.Reopen())
}

func TestActivity_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	a, err := NewActivity(uuid.New(), Details{Type: TypeTask, Subject: "Follow up", DueAt: &past})
	require.NoError(t, err)
	assert.True(t, a.IsOverdue(now))

	require.NoError(t, a.Complete())
	assert.False(t, a.IsOverdue(now))

	b, err := NewActivity(uuid.New(), Details{Type: TypeTask, Subject: "Follow up", DueAt: &future})
	require.NoError(t, err)
	assert.False(t, b.IsOverdue(now))
}

func TestNewStageChangeNote(t *testing.T) {
	leadID := uuid.New()
	note, err := NewStageChangeNote(uuid.New(), RelatedLead, leadID, "Acme", "COLD", "HOT")
	require.NoError(t, err)
	assert.Equal(t, TypeNote, note.Type)
	assert.Equal(t, "Stage changed from COLD to HOT", note.Subject)
	require.NotNil(t, note.LeadID)
	assert.Equal(t, leadID, *note.LeadID)
	assert.True(t, note.IsCompleted())
}

func TestParseRelatedKind(t *testing.T) {
	kind, err := ParseRelatedKind("Opportunity")
	require.NoError(t, err)
	assert.Equal(t, RelatedOpportunity, kind)

	_, err = ParseRelatedKind("invoice")
	assert.Error(t, err)
}
