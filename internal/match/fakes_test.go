package match_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/models"
)

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
	f := &fakeParticipants{
		byID:   map[uuid.UUID]*cohortmodels.Participant{},
		byRole: map[cohortmodels.Role][]*cohortmodels.Participant{},
	}
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
	mu     sync.Mutex
	byID   map[uuid.UUID]*models.MatchRun
	events []string
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{byID: map[uuid.UUID]*models.MatchRun{}}
}

func (f *fakeRuns) Create(ctx context.Context, run *models.MatchRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[run.ID] = run
	f.events = append(f.events, "create:"+run.ID.String())
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
	f.events = append(f.events, "update:"+run.ID.String())
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
	mu     sync.Mutex
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
