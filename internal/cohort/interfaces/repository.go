// Package interfaces declares the repository contracts that
// internal/match's Preparer and Orchestrator depend on, so the pure
// matching logic can be exercised against fakes with no database at all.
package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/cohort/models"
)

// CohortRepository persists and retrieves cohorts.
type CohortRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cohort, error)
}

// ParticipantRepository persists and retrieves cohort participants.
type ParticipantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	ListSubmitted(ctx context.Context, cohortID uuid.UUID, role models.Role) ([]*models.Participant, error)
	Create(ctx context.Context, p *models.Participant) error
}

// PreferenceRepository persists and retrieves ranked preferences.
type PreferenceRepository interface {
	ListForParticipants(ctx context.Context, participantIDs []uuid.UUID) ([]*models.Preference, error)
	Create(ctx context.Context, p *models.Preference) error
}

// ProfileRepository retrieves the profile data the Scorer reads.
type ProfileRepository interface {
	GetMentorProfile(ctx context.Context, participantID uuid.UUID) (*models.MentorProfile, error)
	GetMenteeProfile(ctx context.Context, participantID uuid.UUID) (*models.MenteeProfile, error)
}

// PairScoreRepository persists and retrieves precomputed pair scores.
type PairScoreRepository interface {
	ListForCohort(ctx context.Context, cohortID uuid.UUID) ([]*models.PairScore, error)
	ReplaceAll(ctx context.Context, cohortID uuid.UUID, scores []*models.PairScore) error
}
