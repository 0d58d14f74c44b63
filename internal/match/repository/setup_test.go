package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/storage/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:", 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.Migrate(db, "../../storage/sqlite/migrations"))

	return db
}

// seedCohortAndParticipants inserts a cohort and a mentor/mentee pair,
// returning their ids so match-table tests have foreign keys to satisfy.
func seedCohortAndParticipants(t *testing.T, db *sql.DB) (cohortID, mentorID, menteeID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	cohortID = uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO cohorts (id, name) VALUES (?, ?)`, cohortID.String(), "Spring 2026")
	require.NoError(t, err)

	mentorID = uuid.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO participants (id, cohort_id, external_user_id, role, submitted) VALUES (?, ?, 'mentor-1', 'MENTOR', 1)`,
		mentorID.String(), cohortID.String(),
	)
	require.NoError(t, err)

	menteeID = uuid.New()
	_, err = db.ExecContext(ctx,
		`INSERT INTO participants (id, cohort_id, external_user_id, role, submitted) VALUES (?, ?, 'mentee-1', 'MENTEE', 1)`,
		menteeID.String(), cohortID.String(),
	)
	require.NoError(t, err)

	return cohortID, mentorID, menteeID
}
