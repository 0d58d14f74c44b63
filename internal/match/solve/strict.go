// Package solve implements the strict and exception-mode matching
// solvers over a models.PreparedInputs instance. Both are pure functions
// of their inputs and an assignment-problem engine (internal/match/solve's
// own Hungarian-algorithm implementation, since the spec explicitly
// permits "Hungarian-on-a-padded-cost-matrix" as an engine and no
// CP-SAT/ILP binding is available in the example pack).
package solve

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// SolveStrict maximizes total score subject to mutuality, cross-org, and
// one-to-one constraints. Variables exist only for pairs with
// same_org=false and acceptability=MUTUAL; every mentor and every mentee
// must be matched among their feasible neighbors or the instance is
// reported infeasible.
func SolveStrict(ctx context.Context, inputs models.PreparedInputs) Result {
	start := time.Now()

	if failure := basicFailure(inputs); failure != nil {
		return Result{Success: false, Failure: failure}
	}

	n := len(inputs.MentorIDs)
	feasible := make([][]bool, n)
	cost := make([][]int64, n)
	for i, mentorID := range inputs.MentorIDs {
		feasible[i] = make([]bool, n)
		cost[i] = make([]int64, n)
		for j, menteeID := range inputs.MenteeIDs {
			key := models.PairKey{MentorID: mentorID, MenteeID: menteeID}
			isFeasible := !inputs.SameOrg[key] && inputs.Acceptability[key] == models.Mutual
			feasible[i][j] = isFeasible
			if isFeasible {
				cost[i][j] = -int64(inputs.Score[key])
			} else {
				cost[i][j] = infCost
			}
		}
	}

	feasiblePairsCount := 0
	for i := range feasible {
		for j := range feasible[i] {
			if feasible[i][j] {
				feasiblePairsCount++
			}
		}
	}

	timeout := time.Duration(inputs.Config.StrictTimeLimitSec) * time.Second
	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rowToCol, _, err := MinCostAssignment(solveCtx, cost)
	solveTime := time.Since(start)

	if err != nil {
		return Result{
			Success: false,
			Failure: diagnosticFailure(models.ReasonTimeout, inputs, feasible, feasiblePairsCount, solveTime),
		}
	}

	for i, j := range rowToCol {
		if !feasible[i][j] {
			return Result{
				Success: false,
				Failure: diagnosticFailure(models.ReasonInfeasible, inputs, feasible, feasiblePairsCount, solveTime),
			}
		}
	}

	matches := make([]MatchCandidate, 0, n)
	var total float64
	for i, j := range rowToCol {
		key := models.PairKey{MentorID: inputs.MentorIDs[i], MenteeID: inputs.MenteeIDs[j]}
		scorePercent := scorePercentFromScaled(inputs.Score[key], inputs.Config.ScoreScale)
		matches = append(matches, MatchCandidate{
			MentorID:     inputs.MentorIDs[i],
			MenteeID:     inputs.MenteeIDs[j],
			ScorePercent: scorePercent,
		})
		total += float64(scorePercent)
	}

	avg := 0.0
	if len(matches) > 0 {
		avg = total / float64(len(matches))
	}

	return Result{
		Success:    true,
		Matches:    matches,
		TotalScore: total,
		AvgScore:   avg,
		SolveTime:  solveTime,
	}
}

// scorePercentFromScaled inverts scoring.ScaledScore (percentage*scale)
// back to an integer match percentage.
func scorePercentFromScaled(scaled, scale int) int {
	if scale <= 0 {
		return 0
	}
	return int(float64(scaled)/float64(scale) + 0.5)
}

func basicFailure(inputs models.PreparedInputs) *models.FailureReport {
	mentors, mentees := len(inputs.MentorIDs), len(inputs.MenteeIDs)
	if mentors != mentees {
		return &models.FailureReport{
			Reason:       models.ReasonCountMismatch,
			MentorsCount: mentors,
			MenteesCount: mentees,
			Message:      "unequal mentor and mentee counts",
		}
	}
	if mentors == 0 {
		return &models.FailureReport{
			Reason:  models.ReasonNoParticipants,
			Message: "no submitted participants found",
		}
	}
	return nil
}

func diagnosticFailure(reason models.FailureReason, inputs models.PreparedInputs, feasible [][]bool, feasiblePairsCount int, solveTime time.Duration) *models.FailureReport {
	var zeroMentors, zeroMentees []uuid.UUID

	for i, mentorID := range inputs.MentorIDs {
		has := false
		for j := range inputs.MenteeIDs {
			if feasible[i][j] {
				has = true
				break
			}
		}
		if !has {
			zeroMentors = append(zeroMentors, mentorID)
		}
	}

	for j, menteeID := range inputs.MenteeIDs {
		has := false
		for i := range inputs.MentorIDs {
			if feasible[i][j] {
				has = true
				break
			}
		}
		if !has {
			zeroMentees = append(zeroMentees, menteeID)
		}
	}

	return &models.FailureReport{
		Reason:             reason,
		MentorsCount:       len(inputs.MentorIDs),
		MenteesCount:       len(inputs.MenteeIDs),
		FeasiblePairsCount: feasiblePairsCount,
		SolveTime:          solveTime,
		ZeroMentorOptions:  zeroMentors,
		ZeroMenteeOptions:  zeroMentees,
	}
}
