package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/match"
	"github.com/benidevo/mentormatch/internal/match/models"
)

func TestSQLiteMatchRunRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cohortID, _, _ := seedCohortAndParticipants(t, db)

	repo := NewSQLiteMatchRunRepository(db)

	run := &models.MatchRun{
		ID:             uuid.New(),
		CohortID:       cohortID,
		Mode:           models.ModeStrict,
		Status:         models.StatusFailed,
		InputSignature: "sig-1",
		CreatedBy:      "admin",
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, run))

	fetched, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, models.StatusFailed, fetched.Status)
	assert.Nil(t, fetched.Objective)
	assert.Nil(t, fetched.Failure)
}

func TestSQLiteMatchRunRepositoryUpdateResultSuccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cohortID, _, _ := seedCohortAndParticipants(t, db)

	repo := NewSQLiteMatchRunRepository(db)

	run := &models.MatchRun{
		ID:        uuid.New(),
		CohortID:  cohortID,
		Mode:      models.ModeStrict,
		Status:    models.StatusFailed,
		CreatedBy: "admin",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, run))

	run.Status = models.StatusSuccess
	run.Objective = &models.ObjectiveSummary{TotalScore: 175, AvgScore: 87.5, MatchCount: 2}
	require.NoError(t, repo.UpdateResult(ctx, run))

	fetched, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Objective)
	assert.Equal(t, 2, fetched.Objective.MatchCount)
}

func TestSQLiteMatchRunRepositoryUpdateResultNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteMatchRunRepository(db)

	err := repo.UpdateResult(context.Background(), &models.MatchRun{ID: uuid.New(), Status: models.StatusFailed})
	assert.ErrorIs(t, err, match.ErrRunNotFound)
}

func TestSQLiteMatchRunRepositoryGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteMatchRunRepository(db)

	run, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, run)
}
