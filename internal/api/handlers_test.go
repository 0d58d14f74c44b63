package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/api"
	"github.com/benidevo/mentormatch/internal/cache"
	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/config"
	"github.com/benidevo/mentormatch/internal/match"
	"github.com/benidevo/mentormatch/internal/match/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCohorts struct {
	byID map[uuid.UUID]*cohortmodels.Cohort
}

func (f *fakeCohorts) GetByID(ctx context.Context, id uuid.UUID) (*cohortmodels.Cohort, error) {
	return f.byID[id], nil
}

type fakeParticipants struct {
	byID   map[uuid.UUID]*cohortmodels.Participant
	byRole map[cohortmodels.Role][]*cohortmodels.Participant
}

func newFakeParticipants(participants ...*cohortmodels.Participant) *fakeParticipants {
	f := &fakeParticipants{byID: map[uuid.UUID]*cohortmodels.Participant{}, byRole: map[cohortmodels.Role][]*cohortmodels.Participant{}}
	for _, p := range participants {
		f.byID[p.ID] = p
		if p.Submitted {
			f.byRole[p.Role] = append(f.byRole[p.Role], p)
		}
	}
	return f
}

func (f *fakeParticipants) GetByID(ctx context.Context, id uuid.UUID) (*cohortmodels.Participant, error) {
	return f.byID[id], nil
}

func (f *fakeParticipants) ListSubmitted(ctx context.Context, cohortID uuid.UUID, role cohortmodels.Role) ([]*cohortmodels.Participant, error) {
	return f.byRole[role], nil
}

func (f *fakeParticipants) Create(ctx context.Context, p *cohortmodels.Participant) error {
	f.byID[p.ID] = p
	return nil
}

type fakePreferences struct {
	all []*cohortmodels.Preference
}

func (f *fakePreferences) ListForParticipants(ctx context.Context, ids []uuid.UUID) ([]*cohortmodels.Preference, error) {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	var out []*cohortmodels.Preference
	for _, p := range f.all {
		if _, ok := set[p.FromID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePreferences) Create(ctx context.Context, p *cohortmodels.Preference) error {
	f.all = append(f.all, p)
	return nil
}

type fakeProfiles struct{}

func (fakeProfiles) GetMentorProfile(ctx context.Context, id uuid.UUID) (*cohortmodels.MentorProfile, error) {
	return &cohortmodels.MentorProfile{}, nil
}
func (fakeProfiles) GetMenteeProfile(ctx context.Context, id uuid.UUID) (*cohortmodels.MenteeProfile, error) {
	return &cohortmodels.MenteeProfile{}, nil
}

type fakePairScores struct {
	scores []*cohortmodels.PairScore
}

func (f *fakePairScores) ListForCohort(ctx context.Context, cohortID uuid.UUID) ([]*cohortmodels.PairScore, error) {
	return f.scores, nil
}
func (f *fakePairScores) ReplaceAll(ctx context.Context, cohortID uuid.UUID, scores []*cohortmodels.PairScore) error {
	f.scores = scores
	return nil
}

type fakeRuns struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*models.MatchRun
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{byID: map[uuid.UUID]*models.MatchRun{}}
}

func (f *fakeRuns) Create(ctx context.Context, run *models.MatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[run.ID] = run
	return nil
}

func (f *fakeRuns) GetByID(ctx context.Context, id uuid.UUID) (*models.MatchRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id], nil
}

func (f *fakeRuns) UpdateResult(ctx context.Context, run *models.MatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[run.ID] = run
	return nil
}

type fakeMatches struct {
	mu  sync.Mutex
	all []*models.Match
}

func newFakeMatches() *fakeMatches {
	return &fakeMatches{}
}

func (f *fakeMatches) CreateBatch(ctx context.Context, runID uuid.UUID, matches []*models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all = append(f.all, matches...)
	return nil
}

func (f *fakeMatches) ListForRun(ctx context.Context, runID uuid.UUID) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.all {
		if m.RunID == runID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatches) GetByMentorInRun(ctx context.Context, runID, mentorID uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.all {
		if m.RunID == runID && m.MentorID == mentorID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMatches) GetByMenteeInRun(ctx context.Context, runID, menteeID uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.all {
		if m.RunID == runID && m.MenteeID == menteeID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMatches) Upsert(ctx context.Context, match *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.all {
		if m.ID == match.ID {
			f.all[i] = match
			return nil
		}
	}
	f.all = append(f.all, match)
	return nil
}

func (f *fakeMatches) DeleteByMenteeInRun(ctx context.Context, runID, menteeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.all[:0]
	for _, m := range f.all {
		if m.RunID == runID && m.MenteeID == menteeID {
			continue
		}
		kept = append(kept, m)
	}
	f.all = kept
	return nil
}

type fakeActiveRuns struct {
	mu       sync.Mutex
	byCohort map[uuid.UUID]*models.ActiveMatchRun
}

func newFakeActiveRuns() *fakeActiveRuns {
	return &fakeActiveRuns{byCohort: map[uuid.UUID]*models.ActiveMatchRun{}}
}

func (f *fakeActiveRuns) GetForCohort(ctx context.Context, cohortID uuid.UUID) (*models.ActiveMatchRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byCohort[cohortID], nil
}

func (f *fakeActiveRuns) Set(ctx context.Context, active *models.ActiveMatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byCohort[active.CohortID] = active
	return nil
}

// fakeCache is a minimal in-memory stand-in for cache.Cache, exercising
// the hit/miss branches GetReadiness and RecomputeScores depend on
// without pulling in a real Badger store.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, value)
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = raw
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.store, k)
	}
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (f *fakeCache) Close() error                                           { return nil }

type testFixture struct {
	router      *gin.Engine
	cohortID    uuid.UUID
	mentorA     *cohortmodels.Participant
	mentorB     *cohortmodels.Participant
	menteeA     *cohortmodels.Participant
	menteeB     *cohortmodels.Participant
	runs        *fakeRuns
	matches     *fakeMatches
	activeRuns  *fakeActiveRuns
	cacheStore  *fakeCache
	tokenSecret string
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	cohortID := uuid.New()
	cohort := &cohortmodels.Cohort{ID: cohortID, Config: map[string]any{}}

	mentorA := &cohortmodels.Participant{ID: uuid.New(), CohortID: cohortID, Role: cohortmodels.RoleMentor, Organization: "OrgA", Submitted: true}
	mentorB := &cohortmodels.Participant{ID: uuid.New(), CohortID: cohortID, Role: cohortmodels.RoleMentor, Organization: "OrgA", Submitted: true}
	menteeA := &cohortmodels.Participant{ID: uuid.New(), CohortID: cohortID, Role: cohortmodels.RoleMentee, Organization: "OrgB", Submitted: true}
	menteeB := &cohortmodels.Participant{ID: uuid.New(), CohortID: cohortID, Role: cohortmodels.RoleMentee, Organization: "OrgB", Submitted: true}

	preferences := []*cohortmodels.Preference{
		{FromID: mentorA.ID, ToID: menteeA.ID, Rank: 1},
		{FromID: menteeA.ID, ToID: mentorA.ID, Rank: 1},
		{FromID: mentorB.ID, ToID: menteeB.ID, Rank: 1},
		{FromID: menteeB.ID, ToID: mentorB.ID, Rank: 1},
	}
	scores := []*cohortmodels.PairScore{
		{CohortID: cohortID, MentorID: mentorA.ID, MenteeID: menteeA.ID, Score: 90},
		{CohortID: cohortID, MentorID: mentorB.ID, MenteeID: menteeB.ID, Score: 85},
	}

	participants := newFakeParticipants(mentorA, mentorB, menteeA, menteeB)
	runs := newFakeRuns()
	matches := newFakeMatches()
	activeRuns := newFakeActiveRuns()

	engineDeps := match.Dependencies{
		Cohorts:      &fakeCohorts{byID: map[uuid.UUID]*cohortmodels.Cohort{cohortID: cohort}},
		Participants: participants,
		Preferences:  &fakePreferences{all: preferences},
		Profiles:     fakeProfiles{},
		PairScores:   &fakePairScores{scores: scores},
		Runs:         runs,
		Matches:      matches,
		ActiveRuns:   activeRuns,
	}

	cfg := config.NewTestSettings()
	cfg.TokenSecret = "test-secret"
	cfg.RateLimitRunsPerMinute = 1000

	orchestrator := match.NewOrchestrator(engineDeps, cfg)
	arbiter := match.NewArbiter(engineDeps, orchestrator.Locks())

	cacheStore := newFakeCache()

	deps := api.Dependencies{
		Cohorts:      engineDeps.Cohorts,
		Participants: engineDeps.Participants,
		Preferences:  engineDeps.Preferences,
		Profiles:     engineDeps.Profiles,
		PairScores:   engineDeps.PairScores,
		Runs:         runs,
		Matches:      matches,
		ActiveRuns:   activeRuns,
		Orchestrator: orchestrator,
		Arbiter:      arbiter,
		Cache:        cacheStore,
	}

	handler := api.NewHandler(deps, &cfg, nil)

	router := gin.New()
	api.RegisterRoutes(router.Group(""), handler, cfg.TokenSecret, "1000-M")

	return &testFixture{
		router:      router,
		cohortID:    cohortID,
		mentorA:     mentorA,
		mentorB:     mentorB,
		menteeA:     menteeA,
		menteeB:     menteeB,
		runs:        runs,
		matches:     matches,
		activeRuns:  activeRuns,
		cacheStore:  cacheStore,
		tokenSecret: cfg.TokenSecret,
	}
}

func (f *testFixture) bearerToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(f.tokenSecret))
	require.NoError(t, err)
	return signed
}

func (f *testFixture) doJSON(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRunSucceeds(t *testing.T) {
	f := newTestFixture(t)
	token := f.bearerToken(t, "admin-1")

	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs", f.cohortID), map[string]string{"mode": "STRICT"}, token)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		CreatedBy  string `json:"createdBy"`
		MatchCount int    `json:"matchCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SUCCESS", resp.Status)
	assert.Equal(t, "admin-1", resp.CreatedBy)
	assert.Equal(t, 2, resp.MatchCount)
}

func TestCreateRunRejectsInvalidMode(t *testing.T) {
	f := newTestFixture(t)
	token := f.bearerToken(t, "admin-1")

	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs", f.cohortID), map[string]string{"mode": "BOGUS"}, token)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRunRequiresAuthorization(t *testing.T) {
	f := newTestFixture(t)

	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs", f.cohortID), map[string]string{"mode": "STRICT"}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRunRejectsTokenSignedWithWrongSecret(t *testing.T) {
	f := newTestFixture(t)
	claims := jwt.RegisteredClaims{Subject: "intruder"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs", f.cohortID), map[string]string{"mode": "STRICT"}, signed)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func runSuccessfully(t *testing.T, f *testFixture, token string) string {
	t.Helper()
	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs", f.cohortID), map[string]string{"mode": "STRICT"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func TestSetActiveRunAndGetParticipantMatch(t *testing.T) {
	f := newTestFixture(t)
	token := f.bearerToken(t, "admin-1")
	runID := runSuccessfully(t, f, token)

	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/active-run", f.cohortID), map[string]string{"runId": runID}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var activeResp struct {
		RunID string `json:"runId"`
		SetBy string `json:"setBy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activeResp))
	assert.Equal(t, runID, activeResp.RunID)
	assert.Equal(t, "admin-1", activeResp.SetBy)

	matchRec := f.doJSON(t, http.MethodGet, fmt.Sprintf("/participants/%s/match", f.mentorA.ID), nil, "")
	require.Equal(t, http.StatusOK, matchRec.Code)

	var matchResp struct {
		MentorID string `json:"mentorId"`
		MenteeID string `json:"menteeId"`
	}
	require.NoError(t, json.Unmarshal(matchRec.Body.Bytes(), &matchResp))
	assert.Equal(t, f.mentorA.ID.String(), matchResp.MentorID)
	assert.Equal(t, f.menteeA.ID.String(), matchResp.MenteeID)
}

func TestGetParticipantMatchWithoutActiveRunIs404(t *testing.T) {
	f := newTestFixture(t)

	rec := f.doJSON(t, http.MethodGet, fmt.Sprintf("/participants/%s/match", f.mentorA.ID), nil, "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOverrideRequiresReasonForException(t *testing.T) {
	f := newTestFixture(t)
	token := f.bearerToken(t, "admin-1")
	runID := runSuccessfully(t, f, token)

	// mentorA and menteeB never expressed mutual interest and sit in
	// different organizations, so rewriting them together is an
	// exception pair that demands a reason.
	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs/%s/overrides", f.cohortID, runID), map[string]string{
		"mentorId": f.mentorA.ID.String(),
		"menteeId": f.menteeB.ID.String(),
	}, token)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateOverrideWithReasonSucceeds(t *testing.T) {
	f := newTestFixture(t)
	token := f.bearerToken(t, "admin-1")
	runID := runSuccessfully(t, f, token)

	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs/%s/overrides", f.cohortID, runID), map[string]string{
		"mentorId": f.mentorA.ID.String(),
		"menteeId": f.menteeB.ID.String(),
		"reason":   "capacity change",
	}, token)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		MentorID      string `json:"mentorId"`
		MenteeID      string `json:"menteeId"`
		ExceptionFlag bool   `json:"exceptionFlag"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, f.mentorA.ID.String(), resp.MentorID)
	assert.Equal(t, f.menteeB.ID.String(), resp.MenteeID)
	assert.True(t, resp.ExceptionFlag)
}

func TestGetReadinessIsCachedAfterFirstCall(t *testing.T) {
	f := newTestFixture(t)

	rec := f.doJSON(t, http.MethodGet, fmt.Sprintf("/cohorts/%s/readiness", f.cohortID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	f.cacheStore.mu.Lock()
	_, cached := f.cacheStore.store[fmt.Sprintf("readiness:%s", f.cohortID)]
	f.cacheStore.mu.Unlock()
	assert.True(t, cached, "readiness report should be cached after the first request")

	rec2 := f.doJSON(t, http.MethodGet, fmt.Sprintf("/cohorts/%s/readiness", f.cohortID), nil, "")
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.JSONEq(t, rec.Body.String(), rec2.Body.String())
}

func TestRecomputeScoresInvalidatesReadinessCache(t *testing.T) {
	f := newTestFixture(t)

	readinessRec := f.doJSON(t, http.MethodGet, fmt.Sprintf("/cohorts/%s/readiness", f.cohortID), nil, "")
	require.Equal(t, http.StatusOK, readinessRec.Code)

	token := f.bearerToken(t, "admin-1")
	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/scores/recompute", f.cohortID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ScoredPairs int `json:"scoredPairs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.ScoredPairs)

	f.cacheStore.mu.Lock()
	_, stillCached := f.cacheStore.store[fmt.Sprintf("readiness:%s", f.cohortID)]
	f.cacheStore.mu.Unlock()
	assert.False(t, stillCached, "recompute should invalidate the readiness cache entry")
}

func TestCreateRunUnknownCohortYieldsFailedRun(t *testing.T) {
	f := newTestFixture(t)
	token := f.bearerToken(t, "admin-1")

	// The orchestrator never errors out of Run for a missing cohort; it
	// records a FAILED MatchRun instead, so the endpoint still answers
	// 200 with a failure report rather than a 404.
	rec := f.doJSON(t, http.MethodPost, fmt.Sprintf("/cohorts/%s/runs", uuid.New()), map[string]string{"mode": "STRICT"}, token)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status        string `json:"status"`
		FailureReason string `json:"failureReason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FAILED", resp.Status)
	assert.NotEmpty(t, resp.FailureReason)
}
