package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ThreatLevel rates how dangerous a competitor is to open deals
type ThreatLevel string

const (
	ThreatLevelLow    ThreatLevel = "low"
	ThreatLevelMedium ThreatLevel = "medium"
	ThreatLevelHigh   ThreatLevel = "high"
)

// ThreatLevels lists the accepted threat levels, lowest first
var ThreatLevels = []ThreatLevel{ThreatLevelLow, ThreatLevelMedium, ThreatLevelHigh}

// IsValid checks if the threat level is known
func (t ThreatLevel) IsValid() bool {
	switch t {
	case ThreatLevelLow, ThreatLevelMedium, ThreatLevelHigh:
		return true
	}
	return false
}

// Competitor is a rival vendor tracked against opportunities
type Competitor struct {
	shared.TenantAggregateRoot
	Name        string
	Website     string
	Strengths   string
	Weaknesses  string
	Notes       string
	ThreatLevel ThreatLevel
}

// CompetitorDetails carries the editable competitor fields
type CompetitorDetails struct {
	Name        string
	Website     string
	Strengths   string
	Weaknesses  string
	Notes       string
	ThreatLevel ThreatLevel
}

// NewCompetitor creates a new competitor
func NewCompetitor(tenantID uuid.UUID, details CompetitorDetails) (*Competitor, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	competitor := &Competitor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	competitor.apply(details)
	competitor.AddDomainEvent(NewChangedEvent(EventTypeCompetitorCreated, AggregateTypeCompetitor, competitor.ID, tenantID, competitor.Name))

	return competitor, nil
}

// Details returns the current editable fields
func (c *Competitor) Details() CompetitorDetails {
	return CompetitorDetails{
		Name:        c.Name,
		Website:     c.Website,
		Strengths:   c.Strengths,
		Weaknesses:  c.Weaknesses,
		Notes:       c.Notes,
		ThreatLevel: c.ThreatLevel,
	}
}

// Update replaces the editable fields
func (c *Competitor) Update(details CompetitorDetails) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	c.apply(details)
	c.Touch()
	c.AddDomainEvent(NewChangedEvent(EventTypeCompetitorUpdated, AggregateTypeCompetitor, c.ID, c.TenantID, c.Name))

	return nil
}

func (c *Competitor) apply(d CompetitorDetails) {
	c.Name = d.Name
	c.Website = d.Website
	c.Strengths = d.Strengths
	c.Weaknesses = d.Weaknesses
	c.Notes = d.Notes
	c.ThreatLevel = d.ThreatLevel
}

func (d CompetitorDetails) normalized() CompetitorDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.ThreatLevel = ThreatLevel(strings.ToLower(strings.TrimSpace(string(d.ThreatLevel))))
	if d.ThreatLevel == "" {
		d.ThreatLevel = ThreatLevelMedium
	}
	return d
}

func (d CompetitorDetails) validate() error {
	if err := shared.ValidateRequiredLength("INVALID_NAME", "Competitor name", d.Name, 2, 200); err != nil {
		return err
	}
	if !d.ThreatLevel.IsValid() {
		return shared.NewDomainError("INVALID_THREAT_LEVEL", "Threat level must be low, medium or high")
	}
	return shared.ValidateLength("INVALID_WEBSITE", "Website", d.Website, 0, 255)
}
