package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/cohort"
	"github.com/benidevo/mentormatch/internal/cohort/models"
)

func TestSQLiteParticipantRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cohortID := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO cohorts (id, name) VALUES (?, ?)`, cohortID.String(), "Spring 2026")
	require.NoError(t, err)

	repo := NewSQLiteParticipantRepository(db)

	p := &models.Participant{
		CohortID:       cohortID,
		ExternalUserID: "ext-1",
		Role:           models.RoleMentor,
		DisplayName:    "Mentor One",
		Organization:   "Acme",
		Submitted:      true,
	}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)

	fetched, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "ext-1", fetched.ExternalUserID)
	assert.True(t, fetched.Submitted)
}

func TestSQLiteParticipantRepositoryGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteParticipantRepository(db)

	p, err := repo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSQLiteParticipantRepositoryDuplicateExternalUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cohortID := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO cohorts (id, name) VALUES (?, ?)`, cohortID.String(), "Spring 2026")
	require.NoError(t, err)

	repo := NewSQLiteParticipantRepository(db)

	first := &models.Participant{CohortID: cohortID, ExternalUserID: "dup", Role: models.RoleMentee}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.Participant{CohortID: cohortID, ExternalUserID: "dup", Role: models.RoleMentee}
	err = repo.Create(ctx, second)
	assert.ErrorIs(t, err, cohort.ErrDuplicateParticipant)
}

func TestSQLiteParticipantRepositoryListSubmitted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cohortID := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO cohorts (id, name) VALUES (?, ?)`, cohortID.String(), "Spring 2026")
	require.NoError(t, err)

	repo := NewSQLiteParticipantRepository(db)

	submitted := &models.Participant{CohortID: cohortID, ExternalUserID: "a", Role: models.RoleMentor, Submitted: true}
	notSubmitted := &models.Participant{CohortID: cohortID, ExternalUserID: "b", Role: models.RoleMentor, Submitted: false}
	mentee := &models.Participant{CohortID: cohortID, ExternalUserID: "c", Role: models.RoleMentee, Submitted: true}
	require.NoError(t, repo.Create(ctx, submitted))
	require.NoError(t, repo.Create(ctx, notSubmitted))
	require.NoError(t, repo.Create(ctx, mentee))

	mentors, err := repo.ListSubmitted(ctx, cohortID, models.RoleMentor)
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	assert.Equal(t, submitted.ID, mentors[0].ID)
}
