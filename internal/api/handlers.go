// Package api exposes the matching engine's run, override, active-run,
// readiness and match-lookup operations as a thin JSON surface. It
// performs no authorization beyond verifying a caller's identity token;
// policy and session management are an external collaborator's concern.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/benidevo/mentormatch/internal/cache"
	cohortinterfaces "github.com/benidevo/mentormatch/internal/cohort/interfaces"
	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/common/logger"
	"github.com/benidevo/mentormatch/internal/config"
	"github.com/benidevo/mentormatch/internal/match"
	apimodels "github.com/benidevo/mentormatch/internal/api/models"
	matchinterfaces "github.com/benidevo/mentormatch/internal/match/interfaces"
	"github.com/benidevo/mentormatch/internal/match/models"
	"github.com/benidevo/mentormatch/internal/match/prepare"
	"github.com/benidevo/mentormatch/internal/match/readiness"
	"github.com/benidevo/mentormatch/internal/match/scoring"
	"github.com/benidevo/mentormatch/internal/monitoring"
)

// Dependencies bundles the collaborators Handler reads from and writes
// to. It mirrors match.Dependencies with the addition of the readiness
// cache and the orchestrator/arbiter pair built on top of it.
type Dependencies struct {
	Cohorts      cohortinterfaces.CohortRepository
	Participants cohortinterfaces.ParticipantRepository
	Preferences  cohortinterfaces.PreferenceRepository
	Profiles     cohortinterfaces.ProfileRepository
	PairScores   cohortinterfaces.PairScoreRepository

	Runs       matchinterfaces.MatchRunRepository
	Matches    matchinterfaces.MatchRepository
	ActiveRuns matchinterfaces.ActiveMatchRunRepository

	Orchestrator *match.Orchestrator
	Arbiter      *match.Arbiter

	Cache cache.Cache
}

// Handler serves the matching engine's HTTP surface.
type Handler struct {
	deps    Dependencies
	cfg     *config.Settings
	monitor *monitoring.Monitor
	log     zerolog.Logger
}

// NewHandler wires a Handler against its dependencies and settings.
func NewHandler(deps Dependencies, cfg *config.Settings, monitor *monitoring.Monitor) *Handler {
	return &Handler{
		deps:    deps,
		cfg:     cfg,
		monitor: monitor,
		log:     logger.GetLogger("api"),
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CreateRun handles POST /cohorts/:id/runs.
func (h *Handler) CreateRun(c *gin.Context) {
	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cohort id"})
		return
	}

	var req apimodels.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	initiator := initiatorFrom(c)
	started := time.Now()

	run, err := h.deps.Orchestrator.Run(c.Request.Context(), cohortID, initiator, models.Mode(req.Mode))
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.recordRunMetrics(c.Request.Context(), run, time.Since(started))

	c.JSON(http.StatusOK, runResponse(run))
}

func (h *Handler) recordRunMetrics(ctx context.Context, run *models.MatchRun, elapsed time.Duration) {
	if h.monitor == nil || run == nil {
		return
	}
	h.monitor.RecordRun(ctx, string(run.Mode), string(run.Status), elapsed)
	if run.Status == models.StatusSuccess && run.Objective != nil {
		h.monitor.RecordAmbiguity(ctx, run.CohortID.String(), run.Objective.AmbiguityCount)
		h.monitor.RecordException(ctx, run.CohortID.String(), run.Objective.ExceptionCount)
	}
}

func runResponse(run *models.MatchRun) apimodels.RunResponse {
	resp := apimodels.RunResponse{
		ID:        run.ID.String(),
		CohortID:  run.CohortID.String(),
		Mode:      string(run.Mode),
		Status:    string(run.Status),
		CreatedBy: run.CreatedBy,
	}
	if run.Objective != nil {
		resp.MatchCount = run.Objective.MatchCount
		resp.AmbiguityCount = run.Objective.AmbiguityCount
		resp.ExceptionCount = run.Objective.ExceptionCount
	}
	if run.Failure != nil {
		resp.FailureReason = string(run.Failure.Reason)
		resp.FailureMessage = run.Failure.Message
	}
	return resp
}

// CreateOverride handles POST /cohorts/:id/runs/:runID/overrides.
func (h *Handler) CreateOverride(c *gin.Context) {
	ctx := c.Request.Context()

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cohort id"})
		return
	}
	runID, err := uuid.Parse(c.Param("runID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	var req apimodels.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	cohort, err := h.deps.Cohorts.GetByID(ctx, cohortID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	run, err := h.deps.Runs.GetByID(ctx, runID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if run == nil {
		h.respondError(c, match.ErrRunNotFound)
		return
	}
	if run.CohortID != cohortID {
		h.respondError(c, match.ErrCohortMismatch)
		return
	}

	mentorID, err := uuid.Parse(req.MentorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentor id"})
		return
	}
	menteeID, err := uuid.Parse(req.MenteeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mentee id"})
		return
	}

	mentor, err := h.deps.Participants.GetByID(ctx, mentorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	mentee, err := h.deps.Participants.GetByID(ctx, menteeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if mentor == nil || mentee == nil {
		h.respondError(c, match.ErrRoleMismatch)
		return
	}

	initiator := initiatorFrom(c)

	result, err := h.deps.Arbiter.CreateManualOverride(ctx, run, mentor, mentee, cohort, req.Reason, initiator)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apimodels.OverrideResponse{
		MatchID:         result.ID.String(),
		MentorID:        result.MentorID.String(),
		MenteeID:        result.MenteeID.String(),
		ExceptionFlag:   result.ExceptionFlag,
		ExceptionType:   string(result.ExceptionType),
		ExceptionReason: result.ExceptionReason,
	})
}

// SetActiveRun handles POST /cohorts/:id/active-run.
func (h *Handler) SetActiveRun(c *gin.Context) {
	ctx := c.Request.Context()

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cohort id"})
		return
	}

	var req apimodels.SetActiveRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	cohort, err := h.deps.Cohorts.GetByID(ctx, cohortID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	run, err := h.deps.Runs.GetByID(ctx, runID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if run == nil {
		h.respondError(c, match.ErrRunNotFound)
		return
	}

	initiator := initiatorFrom(c)

	active, err := h.deps.Arbiter.SetActiveMatchRun(ctx, cohort, run, initiator)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apimodels.ActiveRunResponse{
		CohortID: active.CohortID.String(),
		RunID:    active.RunID.String(),
		SetBy:    active.SetBy,
	})
}

// GetReadiness handles GET /cohorts/:id/readiness, memoizing the
// generated report for the configured TTL so repeated dashboard polling
// does not re-walk every submitted participant on each request.
func (h *Handler) GetReadiness(c *gin.Context) {
	ctx := c.Request.Context()

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cohort id"})
		return
	}

	cacheKey := fmt.Sprintf("readiness:%s", cohortID)
	var cached readiness.Report
	if h.deps.Cache != nil {
		if err := h.deps.Cache.Get(ctx, cacheKey, &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.log.Warn().Err(err).Msg("readiness cache read failed")
		}
	}

	cohort, err := h.deps.Cohorts.GetByID(ctx, cohortID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	mentors, err := h.deps.Participants.ListSubmitted(ctx, cohortID, cohortmodels.RoleMentor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	mentees, err := h.deps.Participants.ListSubmitted(ctx, cohortID, cohortmodels.RoleMentee)
	if err != nil {
		h.respondError(c, err)
		return
	}
	all := append(append([]*cohortmodels.Participant{}, mentors...), mentees...)

	inputs, err := prepare.Prepare(ctx, cohort, prepare.Repositories{
		Participants: h.deps.Participants,
		Preferences:  h.deps.Preferences,
		Profiles:     h.deps.Profiles,
		PairScores:   h.deps.PairScores,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	report := readiness.Generate(all, inputs)

	if h.deps.Cache != nil {
		ttl := h.cfg.ReadinessCacheTTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		if err := h.deps.Cache.Set(ctx, cacheKey, report, ttl); err != nil {
			h.log.Warn().Err(err).Msg("readiness cache write failed")
		}
	}

	c.JSON(http.StatusOK, report)
}

// GetParticipantMatch handles GET /participants/:id/match.
func (h *Handler) GetParticipantMatch(c *gin.Context) {
	ctx := c.Request.Context()

	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	participant, err := h.deps.Participants.GetByID(ctx, participantID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if participant == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
		return
	}

	matched, err := h.deps.Arbiter.GetActiveMatchFor(ctx, participant)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if matched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no match found for participant"})
		return
	}

	c.JSON(http.StatusOK, apimodels.MatchResponse{
		MentorID:     matched.MentorID.String(),
		MenteeID:     matched.MenteeID.String(),
		ScorePercent: matched.ScorePercent,
	})
}

// RecomputeScores handles POST /cohorts/:id/scores/recompute.
func (h *Handler) RecomputeScores(c *gin.Context) {
	ctx := c.Request.Context()

	cohortID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cohort id"})
		return
	}

	cohort, err := h.deps.Cohorts.GetByID(ctx, cohortID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	count, err := scoring.RecomputeAll(ctx, cohort, scoring.Repositories{
		Participants: h.deps.Participants,
		Preferences:  h.deps.Preferences,
		Profiles:     h.deps.Profiles,
		PairScores:   h.deps.PairScores,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Delete(ctx, fmt.Sprintf("readiness:%s", cohortID)); err != nil {
			h.log.Warn().Err(err).Msg("failed to invalidate readiness cache after recompute")
		}
	}

	c.JSON(http.StatusOK, apimodels.RecomputeScoresResponse{ScoredPairs: count})
}
