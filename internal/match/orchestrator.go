// Package match implements the Orchestrator and the override/active-run
// arbiter: the only two components of the matching engine that touch
// repositories. Every other component under internal/match/... is a pure
// function of a models.PreparedInputs value.
package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/benidevo/mentormatch/internal/common/logger"
	"github.com/benidevo/mentormatch/internal/config"
	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/ambiguity"
	"github.com/benidevo/mentormatch/internal/match/models"
	"github.com/benidevo/mentormatch/internal/match/prepare"
	"github.com/benidevo/mentormatch/internal/match/solve"
)

// Orchestrator drives a single matching attempt end to end: snapshot,
// solve, ambiguity detection, and atomic persistence of the result.
type Orchestrator struct {
	deps Dependencies
	cfg  config.Settings
	log  zerolog.Logger

	locks cohortLocks
	sem   *semaphore.Weighted
}

// NewOrchestrator wires an Orchestrator against its repositories and the
// engine-wide concurrency cap from cfg.MaxConcurrentRuns.
func NewOrchestrator(deps Dependencies, cfg config.Settings) *Orchestrator {
	maxConcurrent := cfg.MaxConcurrentRuns
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		deps: deps,
		cfg:  cfg,
		log:  logger.GetLogger("match.orchestrator"),
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Locks exposes the Orchestrator's per-cohort lock table so an Arbiter
// constructed alongside it can serialize overrides against runs.
func (o *Orchestrator) Locks() *cohortLocks {
	return &o.locks
}

// Run executes one matching attempt for a cohort. It never returns an
// error from solver or persistence failures — those become a FAILED
// MatchRun with a structured failure_report, per the engine's contract
// that Run always yields a MatchRun. A non-nil error here means the run
// could not even be attempted (e.g. the caller's context was cancelled
// before a slot was acquired).
func (o *Orchestrator) Run(ctx context.Context, cohortID uuid.UUID, initiator string, mode models.Mode) (run *models.MatchRun, err error) {
	lock := o.locks.forCohort(cohortID)
	lock.Lock()
	defer lock.Unlock()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire run slot: %w", err)
	}
	defer o.sem.Release(1)

	log := o.log.With().Str("cohort_id", cohortID.String()).Str("mode", string(mode)).Logger()
	log.Info().Str("initiator", initiator).Msg("starting match run")

	run = &models.MatchRun{
		ID:        uuid.New(),
		CohortID:  cohortID,
		Mode:      mode,
		Status:    models.StatusFailed,
		CreatedBy: initiator,
		CreatedAt: time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic during match run")
			run.Status = models.StatusFailed
			run.Failure = &models.FailureReport{
				Reason:  models.ReasonInternalError,
				Message: fmt.Sprintf("internal error: %v", r),
			}
			if updateErr := o.deps.Runs.UpdateResult(ctx, run); updateErr != nil {
				log.Error().Err(updateErr).Msg("failed to persist panic-recovery run result")
			}
		}
	}()

	started := time.Now()

	cohort, sigErr := o.snapshot(ctx, cohortID, run)
	if sigErr != nil {
		run.Status = models.StatusFailed
		run.Failure = &models.FailureReport{Reason: models.ReasonInternalError, Message: sigErr.Error()}
		if createErr := o.deps.Runs.Create(ctx, run); createErr != nil {
			log.Error().Err(createErr).Msg("failed to persist pre-snapshot failure")
		}
		return run, nil
	}

	if createErr := o.deps.Runs.Create(ctx, run); createErr != nil {
		log.Error().Err(createErr).Msg("failed to create provisional match run")
		run.Failure = &models.FailureReport{Reason: models.ReasonInternalError, Message: fmt.Sprintf("create match run: %v", createErr)}
		return run, nil
	}

	inputs, prepErr := prepare.Prepare(ctx, cohort, prepare.Repositories{
		Participants: o.deps.Participants,
		Preferences:  o.deps.Preferences,
		Profiles:     o.deps.Profiles,
		PairScores:   o.deps.PairScores,
	})
	if prepErr != nil {
		o.fail(ctx, run, models.ReasonInternalError, prepErr.Error(), &log)
		return run, nil
	}

	var result solve.Result
	switch mode {
	case models.ModeStrict:
		result = solve.SolveStrict(ctx, inputs)
	case models.ModeException:
		result = solve.SolveException(ctx, inputs)
	default:
		o.fail(ctx, run, models.ReasonInternalError, fmt.Sprintf("unknown mode %q", mode), &log)
		return run, nil
	}

	totalDuration := time.Since(started)

	if !result.Success {
		run.Status = models.StatusFailed
		run.Failure = result.Failure
		if persistErr := o.deps.Runs.UpdateResult(ctx, run); persistErr != nil {
			log.Error().Err(persistErr).Msg("failed to persist failed run result")
		}
		log.Info().Str("reason", string(result.Failure.Reason)).Msg("match run failed")
		return run, nil
	}

	matched := make([]ambiguity.MatchedPair, 0, len(result.Matches))
	for _, m := range result.Matches {
		matched = append(matched, ambiguity.MatchedPair{MentorID: m.MentorID, MenteeID: m.MenteeID, ScorePercent: m.ScorePercent})
	}
	flags := ambiguity.Detect(matched, inputs)
	ambiguousBy := make(map[models.PairKey]string, len(flags))
	for _, f := range flags {
		ambiguousBy[models.PairKey{MentorID: f.MentorID, MenteeID: f.MenteeID}] = f.Reason
	}

	matches := make([]*models.Match, 0, len(result.Matches))
	for _, m := range result.Matches {
		key := models.PairKey{MentorID: m.MentorID, MenteeID: m.MenteeID}
		reason, ambiguous := ambiguousBy[key]
		matches = append(matches, &models.Match{
			ID:              uuid.New(),
			RunID:           run.ID,
			MentorID:        m.MentorID,
			MenteeID:        m.MenteeID,
			ScorePercent:    m.ScorePercent,
			AmbiguityFlag:   ambiguous,
			AmbiguityReason: reason,
			ExceptionFlag:   m.ExceptionFlag,
			ExceptionType:   m.ExceptionType,
			ExceptionReason: m.ExceptionReason,
		})
	}

	run.Status = models.StatusSuccess
	run.Matches = matches
	run.Objective = &models.ObjectiveSummary{
		TotalScore:       result.TotalScore,
		AvgScore:         result.AvgScore,
		MatchCount:       len(matches),
		AmbiguityCount:   len(flags),
		SolveTime:        result.SolveTime,
		TotalDuration:    totalDuration,
		ExceptionCount:   result.ExceptionSummary.E1 + result.ExceptionSummary.E2 + result.ExceptionSummary.E3,
		ExceptionSummary: result.ExceptionSummary,
	}

	if persistErr := o.deps.Runs.UpdateResult(ctx, run); persistErr != nil {
		log.Error().Err(persistErr).Msg("failed to persist successful run result")
		run.Objective, run.Matches = nil, nil
		o.fail(ctx, run, models.ReasonInternalError, fmt.Sprintf("persist run result: %v", persistErr), &log)
		return run, nil
	}
	if persistErr := o.deps.Matches.CreateBatch(ctx, run.ID, matches); persistErr != nil {
		log.Error().Err(persistErr).Msg("failed to persist matches")
		run.Objective, run.Matches = nil, nil
		o.fail(ctx, run, models.ReasonInternalError, fmt.Sprintf("persist matches: %v", persistErr), &log)
		return run, nil
	}

	log.Info().
		Int("match_count", len(matches)).
		Int("ambiguity_count", len(flags)).
		Dur("solve_time", result.SolveTime).
		Msg("match run succeeded")

	return run, nil
}

// snapshot resolves the cohort and computes the run's input signature
// from the same submitted-participant and preference data the Preparer
// will read moments later.
func (o *Orchestrator) snapshot(ctx context.Context, cohortID uuid.UUID, run *models.MatchRun) (*cohortmodels.Cohort, error) {
	cohort, err := o.deps.Cohorts.GetByID(ctx, cohortID)
	if err != nil {
		return nil, fmt.Errorf("get cohort: %w", err)
	}
	if cohort == nil {
		return nil, fmt.Errorf("cohort %s not found", cohortID)
	}

	mentors, err := o.deps.Participants.ListSubmitted(ctx, cohortID, cohortmodels.RoleMentor)
	if err != nil {
		return nil, fmt.Errorf("list submitted mentors: %w", err)
	}
	mentees, err := o.deps.Participants.ListSubmitted(ctx, cohortID, cohortmodels.RoleMentee)
	if err != nil {
		return nil, fmt.Errorf("list submitted mentees: %w", err)
	}
	all := append(append([]*cohortmodels.Participant{}, mentors...), mentees...)

	ids := make([]uuid.UUID, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	preferences, err := o.deps.Preferences.ListForParticipants(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}

	sig, err := inputSignature(all, preferences, cohort.Config)
	if err != nil {
		return nil, fmt.Errorf("compute input signature: %w", err)
	}
	run.InputSignature = sig

	return cohort, nil
}

func (o *Orchestrator) fail(ctx context.Context, run *models.MatchRun, reason models.FailureReason, message string, log *zerolog.Logger) {
	run.Status = models.StatusFailed
	run.Failure = &models.FailureReport{Reason: reason, Message: message}
	if err := o.deps.Runs.UpdateResult(ctx, run); err != nil {
		log.Error().Err(err).Msg("failed to persist failure report")
	}
}
