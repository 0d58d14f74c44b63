// Package ambiguity flags matches whose best alternative for either
// participant is within a configured score gap — a pure function of the
// chosen matches and the prepared score matrix.
package ambiguity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// Flag describes why one match was marked ambiguous.
type Flag struct {
	MentorID uuid.UUID
	MenteeID uuid.UUID
	Reason   string
}

// MatchedPair is the minimal shape Detect needs about a chosen match: the
// pair and its realized score percent.
type MatchedPair struct {
	MentorID     uuid.UUID
	MenteeID     uuid.UUID
	ScorePercent int
}

// Detect finds, for each side of every match, the best-scoring alternative
// partner and flags the match if the gap to that alternative is within
// inputs.Config.AmbiguityGapThreshold percent. A match ambiguous from
// either side is flagged once; duplicates are suppressed by canonicalizing
// on (mentor_id, mentee_id).
func Detect(matches []MatchedPair, inputs models.PreparedInputs) []Flag {
	matchedMentee := make(map[uuid.UUID]uuid.UUID, len(matches)) // mentor -> mentee
	matchedMentor := make(map[uuid.UUID]uuid.UUID, len(matches)) // mentee -> mentor
	for _, m := range matches {
		matchedMentee[m.MentorID] = m.MenteeID
		matchedMentor[m.MenteeID] = m.MentorID
	}

	scoreOf := func(mentor, mentee uuid.UUID) float64 {
		key := models.PairKey{MentorID: mentor, MenteeID: mentee}
		scaled, ok := inputs.Score[key]
		if !ok {
			return 0
		}
		if inputs.Config.ScoreScale <= 0 {
			return 0
		}
		return float64(scaled) / float64(inputs.Config.ScoreScale)
	}

	threshold := inputs.Config.AmbiguityGapThreshold
	seen := make(map[models.PairKey]struct{}, len(matches))
	var flags []Flag

	for _, m := range matches {
		key := models.PairKey{MentorID: m.MentorID, MenteeID: m.MenteeID}
		if _, ok := seen[key]; ok {
			continue
		}

		matchedScore := scoreOf(m.MentorID, m.MenteeID)

		mentorBestAlt := bestAlternative(inputs.MenteeIDs, m.MenteeID, func(alt uuid.UUID) float64 {
			return scoreOf(m.MentorID, alt)
		})
		menteeBestAlt := bestAlternative(inputs.MentorIDs, m.MentorID, func(alt uuid.UUID) float64 {
			return scoreOf(alt, m.MenteeID)
		})

		ambiguous := false
		var reasons []string

		if mentorBestAlt.found {
			gap := matchedScore - mentorBestAlt.score
			if gap <= threshold {
				ambiguous = true
				reasons = append(reasons, fmt.Sprintf(
					"mentor's alternative scores %.2f vs matched %.2f (gap %.2f)",
					mentorBestAlt.score, matchedScore, gap))
			}
		}
		if menteeBestAlt.found {
			gap := matchedScore - menteeBestAlt.score
			if gap <= threshold {
				ambiguous = true
				reasons = append(reasons, fmt.Sprintf(
					"mentee's alternative scores %.2f vs matched %.2f (gap %.2f)",
					menteeBestAlt.score, matchedScore, gap))
			}
		}

		if ambiguous {
			seen[key] = struct{}{}
			flags = append(flags, Flag{
				MentorID: m.MentorID,
				MenteeID: m.MenteeID,
				Reason:   joinReasons(reasons),
			})
		}
	}

	return flags
}

type bestAltResult struct {
	score float64
	found bool
}

func bestAlternative(candidates []uuid.UUID, exclude uuid.UUID, score func(uuid.UUID) float64) bestAltResult {
	best := bestAltResult{}
	for _, c := range candidates {
		if c == exclude {
			continue
		}
		s := score(c)
		if !best.found || s > best.score {
			best = bestAltResult{score: s, found: true}
		}
	}
	return best
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return ""
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out
}
