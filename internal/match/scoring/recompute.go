package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	cohortinterfaces "github.com/benidevo/mentormatch/internal/cohort/interfaces"
	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/models"
)

// Repositories bundles the collaborators RecomputeAll reads from and
// writes back to. It mirrors internal/match/prepare.Repositories, since
// recomputation reads the same submitted-participant and preference data
// the Preparer does, plus every profile.
type Repositories struct {
	Participants cohortinterfaces.ParticipantRepository
	Preferences  cohortinterfaces.PreferenceRepository
	Profiles     cohortinterfaces.ProfileRepository
	PairScores   cohortinterfaces.PairScoreRepository
}

// RecomputeAll rebuilds a cohort's entire pair-score matrix from current
// profiles and preferences, and replaces the stored scores atomically.
// This is the operation a cohort admin runs after participants update
// their profiles, so the next run reads fresh scores instead of ones
// computed against stale attribute data.
func RecomputeAll(ctx context.Context, cohort *cohortmodels.Cohort, repos Repositories) (int, error) {
	mentors, err := repos.Participants.ListSubmitted(ctx, cohort.ID, cohortmodels.RoleMentor)
	if err != nil {
		return 0, fmt.Errorf("list submitted mentors: %w", err)
	}
	mentees, err := repos.Participants.ListSubmitted(ctx, cohort.ID, cohortmodels.RoleMentee)
	if err != nil {
		return 0, fmt.Errorf("list submitted mentees: %w", err)
	}

	allIDs := make([]uuid.UUID, 0, len(mentors)+len(mentees))
	for _, p := range mentors {
		allIDs = append(allIDs, p.ID)
	}
	for _, p := range mentees {
		allIDs = append(allIDs, p.ID)
	}

	preferences, err := repos.Preferences.ListForParticipants(ctx, allIDs)
	if err != nil {
		return 0, fmt.Errorf("list preferences: %w", err)
	}

	ranks, maxRanks := rankLookups(preferences)

	cfg := models.MergeOverrides(cohort.Config)

	mentorProfiles := map[uuid.UUID]cohortmodels.MentorProfile{}
	for _, mentor := range mentors {
		profile, err := repos.Profiles.GetMentorProfile(ctx, mentor.ID)
		if err != nil {
			return 0, fmt.Errorf("get mentor profile %s: %w", mentor.ID, err)
		}
		if profile != nil {
			mentorProfiles[mentor.ID] = *profile
		}
	}

	menteeProfiles := map[uuid.UUID]cohortmodels.MenteeProfile{}
	for _, mentee := range mentees {
		profile, err := repos.Profiles.GetMenteeProfile(ctx, mentee.ID)
		if err != nil {
			return 0, fmt.Errorf("get mentee profile %s: %w", mentee.ID, err)
		}
		if profile != nil {
			menteeProfiles[mentee.ID] = *profile
		}
	}

	scores := make([]*cohortmodels.PairScore, 0, len(mentors)*len(mentees))
	for _, mentor := range mentors {
		for _, mentee := range mentees {
			mentorRank, mentorHasPref := ranks[mentor.ID][mentee.ID]
			menteeRank, menteeHasPref := ranks[mentee.ID][mentor.ID]

			overall, breakdown := ScorePair(
				mentorRank, maxRanks[mentor.ID], mentorHasPref,
				menteeRank, maxRanks[mentee.ID], menteeHasPref,
				mentorProfiles[mentor.ID], menteeProfiles[mentee.ID],
				cfg,
			)

			scores = append(scores, &cohortmodels.PairScore{
				CohortID: cohort.ID,
				MentorID: mentor.ID,
				MenteeID: mentee.ID,
				Score:    overall,
				Breakdown: map[string]float64{
					"rank":      breakdown.RankComponent,
					"tags":      breakdown.TagComponent,
					"attribute": breakdown.AttributeComponent,
				},
			})
		}
	}

	if err := repos.PairScores.ReplaceAll(ctx, cohort.ID, scores); err != nil {
		return 0, fmt.Errorf("replace pair scores: %w", err)
	}

	return len(scores), nil
}

// rankLookups returns, for each participant, the rank they assigned each
// of their own preferences, plus their own maximum assigned rank (the
// denominator RankScore normalizes against).
func rankLookups(preferences []*cohortmodels.Preference) (ranks map[uuid.UUID]map[uuid.UUID]int, maxRanks map[uuid.UUID]int) {
	ranks = make(map[uuid.UUID]map[uuid.UUID]int)
	maxRanks = make(map[uuid.UUID]int)

	byFrom := make(map[uuid.UUID][]*cohortmodels.Preference)
	for _, pref := range preferences {
		byFrom[pref.FromID] = append(byFrom[pref.FromID], pref)
	}

	for from, prefs := range byFrom {
		sort.Slice(prefs, func(i, j int) bool { return prefs[i].Rank < prefs[j].Rank })
		inner := make(map[uuid.UUID]int, len(prefs))
		max := 0
		for _, pref := range prefs {
			inner[pref.ToID] = pref.Rank
			if pref.Rank > max {
				max = pref.Rank
			}
		}
		ranks[from] = inner
		maxRanks[from] = max
	}

	return ranks, maxRanks
}
