package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteCohortRepositoryGetByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := db.ExecContext(ctx,
		`INSERT INTO cohorts (id, name, config) VALUES (?, ?, ?)`,
		id.String(), "Spring 2026", `{"min_rank_weight": 2.5}`,
	)
	require.NoError(t, err)

	repo := NewSQLiteCohortRepository(db)

	cohort, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cohort)
	assert.Equal(t, "Spring 2026", cohort.Name)
	assert.Equal(t, 2.5, cohort.Config["min_rank_weight"])
}

func TestSQLiteCohortRepositoryGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteCohortRepository(db)

	cohort, err := repo.GetByID(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Nil(t, cohort)
}
