// Package repository provides SQLite implementations of the match
// interfaces: run headers, individual match rows, and the active-run
// pointer per cohort.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match"
	"github.com/benidevo/mentormatch/internal/match/models"
)

// scanner abstracts the common Scan method from *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLiteMatchRunRepository is a SQLite implementation of MatchRunRepository.
type SQLiteMatchRunRepository struct {
	db *sql.DB
}

// NewSQLiteMatchRunRepository creates a new SQLiteMatchRunRepository
// instance.
func NewSQLiteMatchRunRepository(db *sql.DB) *SQLiteMatchRunRepository {
	return &SQLiteMatchRunRepository{db: db}
}

// Create inserts a new run header.
func (r *SQLiteMatchRunRepository) Create(ctx context.Context, run *models.MatchRun) error {
	objectiveJSON, failureJSON, err := marshalSummaries(run)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO match_runs (id, cohort_id, mode, status, input_signature, created_by, created_at, objective_summary, failure_report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(
		ctx, query,
		run.ID.String(), run.CohortID.String(), string(run.Mode), string(run.Status),
		run.InputSignature, run.CreatedBy, run.CreatedAt, objectiveJSON, failureJSON,
	)
	return err
}

// UpdateResult writes the terminal status, objective summary, and failure
// report of a run that was already created.
func (r *SQLiteMatchRunRepository) UpdateResult(ctx context.Context, run *models.MatchRun) error {
	objectiveJSON, failureJSON, err := marshalSummaries(run)
	if err != nil {
		return err
	}

	query := `
		UPDATE match_runs
		SET status = ?, objective_summary = ?, failure_report = ?, input_signature = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, string(run.Status), objectiveJSON, failureJSON, run.InputSignature, run.ID.String())
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return match.ErrRunNotFound
	}

	return nil
}

// GetByID retrieves a run header by id, without its matches.
func (r *SQLiteMatchRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MatchRun, error) {
	query := `
		SELECT id, cohort_id, mode, status, input_signature, created_by, created_at, objective_summary, failure_report
		FROM match_runs WHERE id = ?
	`

	row := r.db.QueryRowContext(ctx, query, id.String())
	run, err := scanMatchRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return run, nil
}

func scanMatchRun(s scanner) (*models.MatchRun, error) {
	var run models.MatchRun
	var id, cohortID, mode, status string
	var objectiveJSON, failureJSON sql.NullString

	err := s.Scan(&id, &cohortID, &mode, &status, &run.InputSignature, &run.CreatedBy, &run.CreatedAt, &objectiveJSON, &failureJSON)
	if err != nil {
		return nil, err
	}

	var parseErr error
	if run.ID, parseErr = uuid.Parse(id); parseErr != nil {
		return nil, parseErr
	}
	if run.CohortID, parseErr = uuid.Parse(cohortID); parseErr != nil {
		return nil, parseErr
	}
	run.Mode = models.Mode(mode)
	run.Status = models.Status(status)

	if objectiveJSON.Valid && objectiveJSON.String != "" {
		var objective models.ObjectiveSummary
		if err := json.Unmarshal([]byte(objectiveJSON.String), &objective); err != nil {
			return nil, err
		}
		run.Objective = &objective
	}

	if failureJSON.Valid && failureJSON.String != "" {
		var failure models.FailureReport
		if err := json.Unmarshal([]byte(failureJSON.String), &failure); err != nil {
			return nil, err
		}
		run.Failure = &failure
	}

	return &run, nil
}

func marshalSummaries(run *models.MatchRun) (objectiveJSON, failureJSON sql.NullString, err error) {
	if run.Objective != nil {
		data, err := json.Marshal(run.Objective)
		if err != nil {
			return sql.NullString{}, sql.NullString{}, err
		}
		objectiveJSON = sql.NullString{String: string(data), Valid: true}
	}

	if run.Failure != nil {
		data, err := json.Marshal(run.Failure)
		if err != nil {
			return sql.NullString{}, sql.NullString{}, err
		}
		failureJSON = sql.NullString{String: string(data), Valid: true}
	}

	return objectiveJSON, failureJSON, nil
}
