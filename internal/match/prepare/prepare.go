// Package prepare implements the Preparer: reading a cohort snapshot once
// and producing a pure, in-memory models.PreparedInputs value. It is the
// only component, besides the Orchestrator and Override arbiter, that
// touches the repositories; every other matching component is a pure
// function of PreparedInputs.
package prepare

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	cohortinterfaces "github.com/benidevo/mentormatch/internal/cohort/interfaces"
	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/models"
	"github.com/benidevo/mentormatch/internal/match/scoring"
)

// Repositories bundles the read-only collaborators the Preparer performs
// its bounded number of bulk queries against.
type Repositories struct {
	Participants cohortinterfaces.ParticipantRepository
	Preferences  cohortinterfaces.PreferenceRepository
	Profiles     cohortinterfaces.ProfileRepository
	PairScores   cohortinterfaces.PairScoreRepository
}

// Prepare reads, in a bounded number of bulk queries, all submitted
// participants in the cohort, all their preferences, all stored pair
// scores, and the cohort configuration, then builds the matrices the
// solvers operate on.
func Prepare(ctx context.Context, cohort *cohortmodels.Cohort, repos Repositories) (models.PreparedInputs, error) {
	mentors, err := repos.Participants.ListSubmitted(ctx, cohort.ID, cohortmodels.RoleMentor)
	if err != nil {
		return models.PreparedInputs{}, fmt.Errorf("list submitted mentors: %w", err)
	}
	mentees, err := repos.Participants.ListSubmitted(ctx, cohort.ID, cohortmodels.RoleMentee)
	if err != nil {
		return models.PreparedInputs{}, fmt.Errorf("list submitted mentees: %w", err)
	}

	sortByID(mentors)
	sortByID(mentees)

	mentorIDs := idsOf(mentors)
	menteeIDs := idsOf(mentees)

	if overlap := intersect(mentorIDs, menteeIDs); len(overlap) > 0 {
		return models.PreparedInputs{}, fmt.Errorf("participant %s is both a submitted mentor and mentee", overlap[0])
	}

	allParticipants := append(append([]*cohortmodels.Participant{}, mentors...), mentees...)
	allIDs := idsOf(allParticipants)

	preferences, err := repos.Preferences.ListForParticipants(ctx, allIDs)
	if err != nil {
		return models.PreparedInputs{}, fmt.Errorf("list preferences: %w", err)
	}

	scores, err := repos.PairScores.ListForCohort(ctx, cohort.ID)
	if err != nil {
		return models.PreparedInputs{}, fmt.Errorf("list pair scores: %w", err)
	}

	cfg := models.MergeOverrides(cohort.Config)

	sameOrg := buildSameOrgMatrix(mentors, mentees)
	acceptability := buildAcceptabilityMatrix(mentors, mentees, preferences)
	score := buildScoreMatrix(mentorIDs, menteeIDs, scores, cfg)

	return models.PreparedInputs{
		MentorIDs:     mentorIDs,
		MenteeIDs:     menteeIDs,
		SameOrg:       sameOrg,
		Acceptability: acceptability,
		Score:         score,
		MentorOrg:     mentorOrgByID(mentors),
		Config:        cfg,
	}, nil
}

func mentorOrgByID(mentors []*cohortmodels.Participant) map[uuid.UUID]string {
	result := make(map[uuid.UUID]string, len(mentors))
	for _, mentor := range mentors {
		result[mentor.ID] = mentor.Organization
	}
	return result
}

func sortByID(participants []*cohortmodels.Participant) {
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ID.String() < participants[j].ID.String()
	})
}

func idsOf(participants []*cohortmodels.Participant) []uuid.UUID {
	ids := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}

func intersect(a, b []uuid.UUID) []uuid.UUID {
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var out []uuid.UUID
	for _, id := range b {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func buildSameOrgMatrix(mentors, mentees []*cohortmodels.Participant) map[models.PairKey]bool {
	result := make(map[models.PairKey]bool, len(mentors)*len(mentees))
	for _, mentor := range mentors {
		for _, mentee := range mentees {
			key := models.PairKey{MentorID: mentor.ID, MenteeID: mentee.ID}
			result[key] = mentor.Organization == mentee.Organization
		}
	}
	return result
}

func buildAcceptabilityMatrix(mentors, mentees []*cohortmodels.Participant, preferences []*cohortmodels.Preference) map[models.PairKey]models.Acceptability {
	gives := make(map[uuid.UUID]map[uuid.UUID]struct{}, len(preferences))
	for _, pref := range preferences {
		set, ok := gives[pref.FromID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			gives[pref.FromID] = set
		}
		set[pref.ToID] = struct{}{}
	}

	result := make(map[models.PairKey]models.Acceptability, len(mentors)*len(mentees))
	for _, mentor := range mentors {
		for _, mentee := range mentees {
			_, mentorGives := gives[mentor.ID][mentee.ID]
			_, menteeGives := gives[mentee.ID][mentor.ID]

			key := models.PairKey{MentorID: mentor.ID, MenteeID: mentee.ID}
			switch {
			case mentorGives && menteeGives:
				result[key] = models.Mutual
			case mentorGives && !menteeGives:
				result[key] = models.OneSidedMentorOnly
			case !mentorGives && menteeGives:
				result[key] = models.OneSidedMenteeOnly
			default:
				result[key] = models.Neither
			}
		}
	}
	return result
}

func buildScoreMatrix(mentorIDs, menteeIDs []uuid.UUID, pairScores []*cohortmodels.PairScore, cfg models.EngineConfig) map[models.PairKey]int {
	lookup := make(map[models.PairKey]float64, len(pairScores))
	for _, ps := range pairScores {
		lookup[models.PairKey{MentorID: ps.MentorID, MenteeID: ps.MenteeID}] = ps.Score
	}

	result := make(map[models.PairKey]int, len(mentorIDs)*len(menteeIDs))
	for _, m := range mentorIDs {
		for _, t := range menteeIDs {
			key := models.PairKey{MentorID: m, MenteeID: t}
			result[key] = scoring.ScaledScore(lookup[key], cfg.ScoreScale)
		}
	}
	return result
}
