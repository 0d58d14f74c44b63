package models

import "github.com/google/uuid"

// Acceptability classifies whether each side of a pair ranked the other.
type Acceptability string

const (
	Mutual              Acceptability = "MUTUAL"
	OneSidedMentorOnly  Acceptability = "ONE_SIDED_MENTOR_ONLY"
	OneSidedMenteeOnly  Acceptability = "ONE_SIDED_MENTEE_ONLY"
	Neither             Acceptability = "NEITHER"
)

// PairKey identifies one mentor/mentee pair within a cohort's prepared
// inputs. Always keyed (mentor, mentee) in that order.
type PairKey struct {
	MentorID uuid.UUID
	MenteeID uuid.UUID
}

// PreparedInputs is the solver's entire universe: ordered participant id
// sequences plus three matrices and the resolved engine configuration.
// It holds no references to persistence and is fully reproducible from a
// cohort snapshot via internal/match/prepare.Prepare.
type PreparedInputs struct {
	MentorIDs []uuid.UUID
	MenteeIDs []uuid.UUID

	SameOrg       map[PairKey]bool
	Acceptability map[PairKey]Acceptability
	Score         map[PairKey]int // quality percentage scaled by Config.ScoreScale

	MentorOrg map[uuid.UUID]string // for exception reasons; not used in scoring

	Config EngineConfig
}
