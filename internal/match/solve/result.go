package solve

import (
	"time"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// MatchCandidate is one mentor/mentee pair chosen by a solver, before it
// has been checked for ambiguity or persisted as a models.Match.
type MatchCandidate struct {
	MentorID        uuid.UUID
	MenteeID        uuid.UUID
	ScorePercent    int
	ExceptionFlag   bool
	ExceptionType   models.ExceptionKind
	ExceptionReason string
}

// Result is the tagged variant a solver returns: either a Success with its
// matches and totals, or a Failure with a structured diagnostic report.
// The orchestrator branches on Result.Success, never on the mode string,
// per SPEC_FULL.md's "dynamic dispatch on solver mode" design note.
type Result struct {
	Success          bool
	Matches          []MatchCandidate
	TotalScore       float64
	AvgScore         float64
	SolveTime        time.Duration
	ExceptionSummary models.ExceptionSummary
	Failure          *models.FailureReport
}
