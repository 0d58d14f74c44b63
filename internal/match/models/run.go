package models

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects which solver an Orchestrator run dispatches to.
type Mode string

const (
	ModeStrict    Mode = "STRICT"
	ModeException Mode = "EXCEPTION"
)

// Status is the terminal outcome of a MatchRun.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// ExceptionKind is the severity label the Classifier assigns to a
// policy-violating pair. Ascending severity: E1 < E2 < E3.
type ExceptionKind string

const (
	ExceptionNone      ExceptionKind = ""
	ExceptionOneSided  ExceptionKind = "E1"
	ExceptionNeither   ExceptionKind = "E2"
	ExceptionSameOrg   ExceptionKind = "E3"
)

// FailureReason enumerates the structured reasons a MatchRun can fail,
// one schema per reason as specified in SPEC_FULL.md §6.
type FailureReason string

const (
	ReasonCountMismatch  FailureReason = "COUNT_MISMATCH"
	ReasonNoParticipants FailureReason = "NO_PARTICIPANTS"
	ReasonInfeasible     FailureReason = "INFEASIBLE"
	ReasonTimeout        FailureReason = "TIMEOUT"
	ReasonInternalError  FailureReason = "INTERNAL_ERROR"
)

// FailureReport is the structured diagnostic attached to a FAILED MatchRun.
// Fields are populated according to Reason; unused fields are left zero.
type FailureReport struct {
	Reason             FailureReason
	Message            string
	MentorsCount       int
	MenteesCount       int
	FeasiblePairsCount int
	SolveTime          time.Duration
	ZeroMentorOptions  []uuid.UUID
	ZeroMenteeOptions  []uuid.UUID
}

// ExceptionSummary counts the exceptions present in a successful exception
// run, keyed by severity.
type ExceptionSummary struct {
	E1 int
	E2 int
	E3 int
}

// ObjectiveSummary is attached to a SUCCESS MatchRun.
type ObjectiveSummary struct {
	TotalScore      float64
	AvgScore        float64
	MatchCount      int
	AmbiguityCount  int
	SolveTime       time.Duration
	TotalDuration   time.Duration
	ExceptionCount  int
	ExceptionSummary ExceptionSummary
}

// MatchRun is one matching attempt against a cohort.
type MatchRun struct {
	ID              uuid.UUID
	CohortID        uuid.UUID
	Mode            Mode
	Status          Status
	InputSignature  string
	CreatedBy       string
	CreatedAt       time.Time
	Objective       *ObjectiveSummary // set only when Status == SUCCESS
	Failure         *FailureReport    // set only when Status == FAILED
	Matches         []*Match          // loaded alongside the run for SUCCESS runs
}

// Match is one row of a successful MatchRun.
type Match struct {
	ID               uuid.UUID
	RunID            uuid.UUID
	MentorID         uuid.UUID
	MenteeID         uuid.UUID
	ScorePercent     int
	AmbiguityFlag    bool
	AmbiguityReason  string
	ExceptionFlag    bool
	ExceptionType    ExceptionKind
	ExceptionReason  string
	IsManualOverride bool
	OverrideReason   string
}

// ActiveMatchRun points to the single MatchRun currently considered
// authoritative for a cohort. At most one exists per cohort.
type ActiveMatchRun struct {
	CohortID uuid.UUID
	RunID    uuid.UUID
	SetBy    string
	SetAt    time.Time
}
