package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// SQLiteActiveMatchRunRepository is a SQLite implementation of
// ActiveMatchRunRepository.
type SQLiteActiveMatchRunRepository struct {
	db *sql.DB
}

// NewSQLiteActiveMatchRunRepository creates a new
// SQLiteActiveMatchRunRepository instance.
func NewSQLiteActiveMatchRunRepository(db *sql.DB) *SQLiteActiveMatchRunRepository {
	return &SQLiteActiveMatchRunRepository{db: db}
}

// GetForCohort retrieves the active run pointer for a cohort, returning
// (nil, nil) if none has been set.
func (r *SQLiteActiveMatchRunRepository) GetForCohort(ctx context.Context, cohortID uuid.UUID) (*models.ActiveMatchRun, error) {
	query := `SELECT cohort_id, run_id, set_by, set_at FROM active_match_runs WHERE cohort_id = ?`

	var active models.ActiveMatchRun
	var cohortIDStr, runIDStr string

	err := r.db.QueryRowContext(ctx, query, cohortID.String()).Scan(&cohortIDStr, &runIDStr, &active.SetBy, &active.SetAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var parseErr error
	if active.CohortID, parseErr = uuid.Parse(cohortIDStr); parseErr != nil {
		return nil, parseErr
	}
	if active.RunID, parseErr = uuid.Parse(runIDStr); parseErr != nil {
		return nil, parseErr
	}

	return &active, nil
}

// Set records active as the authoritative run for its cohort, replacing
// whichever run was previously active.
func (r *SQLiteActiveMatchRunRepository) Set(ctx context.Context, active *models.ActiveMatchRun) error {
	query := `
		INSERT INTO active_match_runs (cohort_id, run_id, set_by, set_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cohort_id) DO UPDATE SET
			run_id = excluded.run_id,
			set_by = excluded.set_by,
			set_at = excluded.set_at
	`

	_, err := r.db.ExecContext(ctx, query, active.CohortID.String(), active.RunID.String(), active.SetBy, active.SetAt)
	return err
}
