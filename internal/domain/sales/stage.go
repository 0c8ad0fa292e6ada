package sales

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// Stage is a pipeline column shared by leads and opportunities
type Stage string

const (
	StageCold Stage = "COLD"
	StageWarm Stage = "WARM"
	StageHot  Stage = "HOT"
	StageWon  Stage = "WON"
	StageLost Stage = "LOST"
)

// Stages lists every stage in board display order
var Stages = []Stage{StageCold, StageWarm, StageHot, StageWon, StageLost}

// ParseStage accepts a stage name in any letter case
func ParseStage(s string) (Stage, error) {
	stage := Stage(strings.ToUpper(strings.TrimSpace(s)))
	if !stage.IsValid() {
		return "", shared.NewDomainError("INVALID_STAGE", "Stage must be one of COLD, WARM, HOT, WON, LOST")
	}
	return stage, nil
}

// IsValid checks if the stage is known
func (s Stage) IsValid() bool {
	switch s {
	case StageCold, StageWarm, StageHot, StageWon, StageLost:
		return true
	}
	return false
}

// IsOpen reports whether deals in this stage are still being worked
func (s Stage) IsOpen() bool {
	return s == StageCold || s == StageWarm || s == StageHot
}

// IsClosed reports whether the stage ends the pipeline
func (s Stage) IsClosed() bool {
	return s == StageWon || s == StageLost
}

// DefaultProbability is the win probability (percent) assumed for the stage
func (s Stage) DefaultProbability() int {
	switch s {
	case StageCold:
		return 10
	case StageWarm:
		return 40
	case StageHot:
		return 70
	case StageWon:
		return 100
	default:
		return 0
	}
}

// Order returns the column index of the stage on the board
func (s Stage) Order() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return len(Stages)
}

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}
