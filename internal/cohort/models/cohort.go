// Package models defines the persisted entities of a matching cohort:
// the cohort itself, its participants, their stated preferences, and the
// profile data the scorer reads.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies which side of the matching problem a participant sits on.
type Role string

const (
	RoleMentor Role = "MENTOR"
	RoleMentee Role = "MENTEE"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleMentor || r == RoleMentee
}

// Cohort is the matching universe: a fixed set of submitted mentors and
// mentees and their preferences at a point in time, plus the engine
// configuration overrides for that cohort.
type Cohort struct {
	ID        uuid.UUID
	Name      string
	Config    map[string]any // raw cohort_config overrides, merged onto defaults
	CreatedAt time.Time
}

// Participant belongs to exactly one cohort and one role.
type Participant struct {
	ID             uuid.UUID
	CohortID       uuid.UUID
	ExternalUserID string // (cohort, external-user) is unique
	Role           Role
	DisplayName    string
	Email          string
	Organization   string // empty blocks readiness
	Submitted      bool
	CreatedAt      time.Time
}

// Preference is a directed ranked edge from one participant to another in
// the same cohort. (from, to) is unique; rank is a positive integer.
type Preference struct {
	ID       uuid.UUID
	CohortID uuid.UUID
	FromID   uuid.UUID
	ToID     uuid.UUID
	Rank     int
}
