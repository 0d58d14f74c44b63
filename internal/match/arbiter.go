package match

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/benidevo/mentormatch/internal/common/logger"
	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/classify"
	"github.com/benidevo/mentormatch/internal/match/models"
)

// SwapProposal is the pair of partners a manual override would displace,
// surfaced by SuggestSwap so a caller can confirm before committing.
type SwapProposal struct {
	OtherMentorID uuid.UUID
	OtherMenteeID uuid.UUID
}

// Arbiter validates and applies manual overrides to an existing MatchRun,
// and manages the singleton ActiveMatchRun per cohort. It shares the
// Orchestrator's per-cohort locks so an override can never race a run.
type Arbiter struct {
	deps  Dependencies
	locks *cohortLocks
	log   zerolog.Logger

	activeReads singleflight.Group
}

// NewArbiter wires an Arbiter against the same Dependencies and
// per-cohort lock table an Orchestrator uses, so overrides and active-run
// changes can never race a Run for the same cohort. Pass the Locks() of
// the Orchestrator constructed alongside this Arbiter.
func NewArbiter(deps Dependencies, locks *cohortLocks) *Arbiter {
	return &Arbiter{
		deps:  deps,
		locks: locks,
		log:   logger.GetLogger("match.arbiter"),
	}
}

// ValidateOverride checks that mentor and mentee both belong to cohort,
// are submitted, and sit on the expected side of the role split.
func (a *Arbiter) ValidateOverride(ctx context.Context, mentor, mentee *cohortmodels.Participant, cohort *cohortmodels.Cohort) (bool, string) {
	if mentor.CohortID != cohort.ID || mentee.CohortID != cohort.ID {
		return false, ErrCohortMismatch.Error()
	}
	if mentor.Role != cohortmodels.RoleMentor || mentee.Role != cohortmodels.RoleMentee {
		return false, ErrRoleMismatch.Error()
	}
	if !mentor.Submitted || !mentee.Submitted {
		return false, "both participants must be submitted"
	}
	return true, ""
}

// SuggestSwap proposes the displaced partners when both mentor and mentee
// already have a match elsewhere in run. If only one side has a match, or
// the pair already exists together, it returns false and no proposal —
// the caller still proceeds, but nothing needs confirming.
func (a *Arbiter) SuggestSwap(ctx context.Context, mentorID, menteeID uuid.UUID, run *models.MatchRun) (SwapProposal, bool, error) {
	mentorMatch, err := a.deps.Matches.GetByMentorInRun(ctx, run.ID, mentorID)
	if err != nil {
		return SwapProposal{}, false, fmt.Errorf("lookup mentor's current match: %w", err)
	}
	menteeMatch, err := a.deps.Matches.GetByMenteeInRun(ctx, run.ID, menteeID)
	if err != nil {
		return SwapProposal{}, false, fmt.Errorf("lookup mentee's current match: %w", err)
	}

	if mentorMatch == nil || menteeMatch == nil {
		return SwapProposal{}, false, nil
	}
	if mentorMatch.MenteeID == menteeID {
		return SwapProposal{}, false, nil
	}

	return SwapProposal{OtherMentorID: menteeMatch.MentorID, OtherMenteeID: mentorMatch.MenteeID}, true, nil
}

// CreateManualOverride atomically rewrites run so mentor is matched to
// mentee: validating the pair, classifying it (requiring a non-empty
// reason if the pair becomes an exception), rewriting or creating the
// mentor's Match row, and displacing any other Match in run whose mentee
// is this mentee. If both mentor and mentee already had other partners,
// the displaced mentor is re-seated onto the mentee the override frees up
// rather than left unmatched, completing the swap SuggestSwap proposes.
func (a *Arbiter) CreateManualOverride(ctx context.Context, run *models.MatchRun, mentor, mentee *cohortmodels.Participant, cohort *cohortmodels.Cohort, reason, initiator string) (*models.Match, error) {
	lock := a.locks.forCohort(cohort.ID)
	lock.Lock()
	defer lock.Unlock()

	if ok, msg := a.ValidateOverride(ctx, mentor, mentee, cohort); !ok {
		switch msg {
		case ErrCohortMismatch.Error():
			return nil, ErrCohortMismatch
		case ErrRoleMismatch.Error():
			return nil, ErrRoleMismatch
		}
		return nil, fmt.Errorf("%w: %s", ErrRoleMismatch, msg)
	}

	proposal, swap, err := a.SuggestSwap(ctx, mentor.ID, mentee.ID, run)
	if err != nil {
		return nil, fmt.Errorf("check swap suggestion: %w", err)
	}
	var displaced *models.Match
	if swap {
		displaced, err = a.deps.Matches.GetByMentorInRun(ctx, run.ID, proposal.OtherMentorID)
		if err != nil {
			return nil, fmt.Errorf("lookup displaced mentor's match: %w", err)
		}
	}

	sameOrg := mentor.Organization == mentee.Organization
	acceptability, err := a.acceptabilityOf(ctx, mentor.ID, mentee.ID)
	if err != nil {
		return nil, fmt.Errorf("determine acceptability: %w", err)
	}
	classification := classify.Classify(sameOrg, acceptability, mentor.Organization)

	if classification.Kind != models.ExceptionNone && reason == "" {
		return nil, ErrReasonRequired
	}

	existing, err := a.deps.Matches.GetByMentorInRun(ctx, run.ID, mentor.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup mentor's current match: %w", err)
	}

	match := existing
	if match == nil {
		match = &models.Match{ID: uuid.New(), RunID: run.ID, MentorID: mentor.ID}
	}
	match.MenteeID = mentee.ID

	match.IsManualOverride = true
	match.OverrideReason = reason
	match.ExceptionFlag = classification.Kind != models.ExceptionNone
	match.ExceptionType = classification.Kind
	match.ExceptionReason = classification.Reason

	if err := a.deps.Matches.DeleteByMenteeInRun(ctx, run.ID, mentee.ID); err != nil {
		return nil, fmt.Errorf("displace existing match for mentee: %w", err)
	}
	if err := a.deps.Matches.Upsert(ctx, match); err != nil {
		return nil, fmt.Errorf("persist override: %w", err)
	}

	if swap && displaced != nil {
		displaced.MenteeID = proposal.OtherMenteeID
		if err := a.deps.Matches.Upsert(ctx, displaced); err != nil {
			return nil, fmt.Errorf("complete swap for displaced mentor: %w", err)
		}
		a.log.Info().
			Str("run_id", run.ID.String()).
			Str("mentor_id", proposal.OtherMentorID.String()).
			Str("mentee_id", proposal.OtherMenteeID.String()).
			Msg("override swap completed")
	}

	a.log.Info().
		Str("run_id", run.ID.String()).
		Str("mentor_id", mentor.ID.String()).
		Str("mentee_id", mentee.ID.String()).
		Str("initiator", initiator).
		Msg("manual override applied")

	return match, nil
}

// acceptabilityOf consults stored preferences to classify a pair the same
// way the Preparer does, for the single pair an override touches.
func (a *Arbiter) acceptabilityOf(ctx context.Context, mentorID, menteeID uuid.UUID) (models.Acceptability, error) {
	preferences, err := a.deps.Preferences.ListForParticipants(ctx, []uuid.UUID{mentorID, menteeID})
	if err != nil {
		return models.Neither, err
	}
	mentorGives, menteeGives := false, false
	for _, p := range preferences {
		if p.FromID == mentorID && p.ToID == menteeID {
			mentorGives = true
		}
		if p.FromID == menteeID && p.ToID == mentorID {
			menteeGives = true
		}
	}
	switch {
	case mentorGives && menteeGives:
		return models.Mutual, nil
	case mentorGives:
		return models.OneSidedMentorOnly, nil
	case menteeGives:
		return models.OneSidedMenteeOnly, nil
	default:
		return models.Neither, nil
	}
}

// SetActiveMatchRun upserts the cohort's singleton ActiveMatchRun,
// rejecting a run from a different cohort or one that is not SUCCESS.
func (a *Arbiter) SetActiveMatchRun(ctx context.Context, cohort *cohortmodels.Cohort, run *models.MatchRun, initiator string) (*models.ActiveMatchRun, error) {
	lock := a.locks.forCohort(cohort.ID)
	lock.Lock()
	defer lock.Unlock()

	if run.CohortID != cohort.ID {
		return nil, ErrCohortMismatch
	}
	if run.Status != models.StatusSuccess {
		return nil, ErrRunNotSuccess
	}

	active := &models.ActiveMatchRun{
		CohortID: cohort.ID,
		RunID:    run.ID,
		SetBy:    initiator,
		SetAt:    time.Now().UTC(),
	}
	if err := a.deps.ActiveRuns.Set(ctx, active); err != nil {
		return nil, fmt.Errorf("set active match run: %w", err)
	}

	a.log.Info().
		Str("cohort_id", cohort.ID.String()).
		Str("run_id", run.ID.String()).
		Str("initiator", initiator).
		Msg("active match run updated")

	return active, nil
}

// GetActiveMatchFor returns the Match in participant's cohort's active
// run where participant sits on its role's side. It returns ErrNoActiveRun
// if the cohort has no active run, and nil with no error if the active run
// has no match for them. Concurrent lookups for the same
// cohort during a run collapse onto a single repository read.
func (a *Arbiter) GetActiveMatchFor(ctx context.Context, participant *cohortmodels.Participant) (*models.Match, error) {
	v, err, _ := a.activeReads.Do(participant.CohortID.String(), func() (any, error) {
		return a.deps.ActiveRuns.GetForCohort(ctx, participant.CohortID)
	})
	if err != nil {
		return nil, fmt.Errorf("get active match run: %w", err)
	}
	active, _ := v.(*models.ActiveMatchRun)
	if active == nil {
		return nil, ErrNoActiveRun
	}

	switch participant.Role {
	case cohortmodels.RoleMentor:
		return a.deps.Matches.GetByMentorInRun(ctx, active.RunID, participant.ID)
	case cohortmodels.RoleMentee:
		return a.deps.Matches.GetByMenteeInRun(ctx, active.RunID, participant.ID)
	default:
		return nil, ErrRoleMismatch
	}
}
