package match

import (
	cohortinterfaces "github.com/benidevo/mentormatch/internal/cohort/interfaces"
	matchinterfaces "github.com/benidevo/mentormatch/internal/match/interfaces"
)

// Dependencies bundles every repository the Orchestrator and arbiter touch.
// Every other matching component is a pure function and takes none of
// these.
type Dependencies struct {
	Cohorts      cohortinterfaces.CohortRepository
	Participants cohortinterfaces.ParticipantRepository
	Preferences  cohortinterfaces.PreferenceRepository
	Profiles     cohortinterfaces.ProfileRepository
	PairScores   cohortinterfaces.PairScoreRepository

	Runs       matchinterfaces.MatchRunRepository
	Matches    matchinterfaces.MatchRepository
	ActiveRuns matchinterfaces.ActiveMatchRunRepository
}
