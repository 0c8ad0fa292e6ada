package sales

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
)

// Card is the kanban placement of a pipeline record
type Card struct {
	Stage      Stage
	Position   int
	ClosedAt   *time.Time
	LostReason string
}

// newCard places a record in a stage; closed stages are stamped immediately
func newCard(stage Stage, now time.Time) (Card, error) {
	if stage == "" {
		stage = StageCold
	}
	if !stage.IsValid() {
		return Card{}, shared.NewDomainError("INVALID_STAGE", "Stage must be one of COLD, WARM, HOT, WON, LOST")
	}
	card := Card{Stage: stage}
	if stage.IsClosed() {
		closed := now
		card.ClosedAt = &closed
	}
	return card, nil
}

// move relocates the card. It returns the previous stage and whether the
// stage changed; a same-stage move only updates the position.
func (c *Card) move(to Stage, position int, lostReason string, now time.Time) (Stage, bool, error) {
	if !to.IsValid() {
		return "", false, shared.NewDomainError("INVALID_STAGE", "Stage must be one of COLD, WARM, HOT, WON, LOST")
	}
	if position < 0 {
		return "", false, shared.NewDomainError("INVALID_POSITION", "Position cannot be negative")
	}

	from := c.Stage
	c.Position = position
	if from == to {
		if to == StageLost && lostReason != "" {
			c.LostReason = lostReason
		}
		return from, false, nil
	}

	c.Stage = to
	if to.IsClosed() {
		closed := now
		c.ClosedAt = &closed
	} else {
		c.ClosedAt = nil
	}

	if to == StageLost {
		c.LostReason = lostReason
	} else {
		c.LostReason = ""
	}

	return from, true, nil
}

// SetPosition places the card at a column index
func (c *Card) SetPosition(position int) {
	if position < 0 {
		position = 0
	}
	c.Position = position
}
