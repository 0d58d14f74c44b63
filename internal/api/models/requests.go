// Package models declares the request and response DTOs the HTTP layer
// binds and renders, kept separate from the domain models they wrap.
package models

// CreateRunRequest is the body of POST /cohorts/:id/runs.
type CreateRunRequest struct {
	Mode string `json:"mode" binding:"required,oneof=STRICT EXCEPTION"`
}

// RunResponse renders a MatchRun's outcome, omitting the full match list
// (fetched separately) to keep the run-creation response small.
type RunResponse struct {
	ID             string `json:"id"`
	CohortID       string `json:"cohortId"`
	Mode           string `json:"mode"`
	Status         string `json:"status"`
	CreatedBy      string `json:"createdBy"`
	MatchCount     int    `json:"matchCount,omitempty"`
	AmbiguityCount int    `json:"ambiguityCount,omitempty"`
	ExceptionCount int    `json:"exceptionCount,omitempty"`
	FailureReason  string `json:"failureReason,omitempty"`
	FailureMessage string `json:"failureMessage,omitempty"`
}

// OverrideRequest is the body of POST /cohorts/:id/runs/:runID/overrides.
type OverrideRequest struct {
	MentorID string `json:"mentorId" binding:"required,uuid"`
	MenteeID string `json:"menteeId" binding:"required,uuid"`
	Reason   string `json:"reason"`
}

// OverrideResponse renders the rewritten Match.
type OverrideResponse struct {
	MatchID         string `json:"matchId"`
	MentorID        string `json:"mentorId"`
	MenteeID        string `json:"menteeId"`
	ExceptionFlag   bool   `json:"exceptionFlag"`
	ExceptionType   string `json:"exceptionType,omitempty"`
	ExceptionReason string `json:"exceptionReason,omitempty"`
}

// SetActiveRunRequest is the body of POST /cohorts/:id/active-run.
type SetActiveRunRequest struct {
	RunID string `json:"runId" binding:"required,uuid"`
}

// ActiveRunResponse renders a cohort's ActiveMatchRun.
type ActiveRunResponse struct {
	CohortID string `json:"cohortId"`
	RunID    string `json:"runId"`
	SetBy    string `json:"setBy"`
}

// MatchResponse renders the Match found for a participant's active run.
type MatchResponse struct {
	MentorID     string `json:"mentorId"`
	MenteeID     string `json:"menteeId"`
	ScorePercent int    `json:"scorePercent"`
}

// RecomputeScoresResponse reports how many pair scores were rebuilt.
type RecomputeScoresResponse struct {
	ScoredPairs int `json:"scoredPairs"`
}
