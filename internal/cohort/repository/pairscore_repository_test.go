package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/cohort/models"
)

func TestSQLitePairScoreRepositoryReplaceAllAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cohortID := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO cohorts (id, name) VALUES (?, ?)`, cohortID.String(), "Spring 2026")
	require.NoError(t, err)
	mentor := seedParticipant(t, db, cohortID, "mentor-1", models.RoleMentor)
	mentee := seedParticipant(t, db, cohortID, "mentee-1", models.RoleMentee)

	repo := NewSQLitePairScoreRepository(db)

	scores := []*models.PairScore{
		{CohortID: cohortID, MentorID: mentor, MenteeID: mentee, Score: 87.5, Breakdown: map[string]float64{"expertise": 40, "availability": 47.5}},
	}
	require.NoError(t, repo.ReplaceAll(ctx, cohortID, scores))

	fetched, err := repo.ListForCohort(ctx, cohortID)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, 87.5, fetched[0].Score)
	assert.Equal(t, 40.0, fetched[0].Breakdown["expertise"])

	require.NoError(t, repo.ReplaceAll(ctx, cohortID, nil))
	fetched, err = repo.ListForCohort(ctx, cohortID)
	require.NoError(t, err)
	assert.Empty(t, fetched)
}
