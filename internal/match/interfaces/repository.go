// Package interfaces declares the repository contracts the Orchestrator
// and arbiter depend on for persisting runs, matches, and the active-run
// pointer.
package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// MatchRunRepository persists MatchRun headers and their objective/failure
// summaries.
type MatchRunRepository interface {
	Create(ctx context.Context, run *models.MatchRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MatchRun, error)
	UpdateResult(ctx context.Context, run *models.MatchRun) error
}

// MatchRepository persists the individual Match rows belonging to a run.
// GetByMentorInRun and GetByMenteeInRun return (nil, nil), not an error,
// when no such row exists — the arbiter treats absence as a normal case.
type MatchRepository interface {
	CreateBatch(ctx context.Context, runID uuid.UUID, matches []*models.Match) error
	ListForRun(ctx context.Context, runID uuid.UUID) ([]*models.Match, error)
	GetByMentorInRun(ctx context.Context, runID, mentorID uuid.UUID) (*models.Match, error)
	GetByMenteeInRun(ctx context.Context, runID, menteeID uuid.UUID) (*models.Match, error)
	Upsert(ctx context.Context, match *models.Match) error
	DeleteByMenteeInRun(ctx context.Context, runID, menteeID uuid.UUID) error
}

// ActiveMatchRunRepository persists the singleton active run per cohort.
// GetForCohort returns (nil, nil) when the cohort has no active run set.
type ActiveMatchRunRepository interface {
	GetForCohort(ctx context.Context, cohortID uuid.UUID) (*models.ActiveMatchRun, error)
	Set(ctx context.Context, active *models.ActiveMatchRun) error
}
