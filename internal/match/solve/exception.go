package solve

import (
	"context"
	"time"

	"github.com/benidevo/mentormatch/internal/match/classify"
	"github.com/benidevo/mentormatch/internal/match/models"
)

// SolveException finds a complete one-to-one matching over all pairs,
// tolerating policy violations but subtracting the classifier's
// lexicographically-ordered penalties from the objective. Because the
// penalty magnitudes dominate the score range, minimizing
// penalty-minus-score as a single weighted objective first minimizes E3
// usage, then E2, then E1, then maximizes score, as a side effect.
//
// Succeeds for any balanced, non-empty input; the same COUNT_MISMATCH /
// NO_PARTICIPANTS failures as the strict solver apply to malformed input.
func SolveException(ctx context.Context, inputs models.PreparedInputs) Result {
	start := time.Now()

	if failure := basicFailure(inputs); failure != nil {
		return Result{Success: false, Failure: failure}
	}

	n := len(inputs.MentorIDs)
	cost := make([][]int64, n)
	for i, mentorID := range inputs.MentorIDs {
		cost[i] = make([]int64, n)
		for j, menteeID := range inputs.MenteeIDs {
			key := models.PairKey{MentorID: mentorID, MenteeID: menteeID}
			sameOrg := inputs.SameOrg[key]
			acceptability := inputs.Acceptability[key]
			_, penalty := classify.ClassifyPair(sameOrg, acceptability, inputs.MentorOrg[mentorID], inputs.Config)
			cost[i][j] = penalty - int64(inputs.Score[key])
		}
	}

	timeout := time.Duration(inputs.Config.ExceptionTimeLimitSec) * time.Second
	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rowToCol, _, err := MinCostAssignment(solveCtx, cost)
	solveTime := time.Since(start)

	if err != nil {
		return Result{
			Success: false,
			Failure: &models.FailureReport{
				Reason:       models.ReasonTimeout,
				MentorsCount: n,
				MenteesCount: n,
				SolveTime:    solveTime,
			},
		}
	}

	matches := make([]MatchCandidate, 0, n)
	var total float64
	var summary models.ExceptionSummary

	for i, j := range rowToCol {
		mentorID := inputs.MentorIDs[i]
		menteeID := inputs.MenteeIDs[j]
		key := models.PairKey{MentorID: mentorID, MenteeID: menteeID}

		classification := classify.Classify(inputs.SameOrg[key], inputs.Acceptability[key], inputs.MentorOrg[mentorID])
		scorePercent := scorePercentFromScaled(inputs.Score[key], inputs.Config.ScoreScale)

		candidate := MatchCandidate{
			MentorID:     mentorID,
			MenteeID:     menteeID,
			ScorePercent: scorePercent,
		}
		if classification.Kind != models.ExceptionNone {
			candidate.ExceptionFlag = true
			candidate.ExceptionType = classification.Kind
			candidate.ExceptionReason = classification.Reason
			switch classification.Kind {
			case models.ExceptionOneSided:
				summary.E1++
			case models.ExceptionNeither:
				summary.E2++
			case models.ExceptionSameOrg:
				summary.E3++
			}
		}

		matches = append(matches, candidate)
		total += float64(scorePercent)
	}

	avg := 0.0
	if len(matches) > 0 {
		avg = total / float64(len(matches))
	}

	return Result{
		Success:          true,
		Matches:          matches,
		TotalScore:       total,
		AvgScore:         avg,
		SolveTime:        solveTime,
		ExceptionSummary: summary,
	}
}
