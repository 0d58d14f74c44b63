// Package repository provides SQLite implementations of the cohort
// interfaces, using the connection and migrations set up by
// internal/storage/sqlite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/cohort"
	commonerrors "github.com/benidevo/mentormatch/internal/common/errors"
	"github.com/benidevo/mentormatch/internal/cohort/models"
)

// scanner abstracts the common Scan method from *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLiteCohortRepository is a SQLite implementation of CohortRepository.
type SQLiteCohortRepository struct {
	db *sql.DB
}

// NewSQLiteCohortRepository creates a new SQLiteCohortRepository instance.
func NewSQLiteCohortRepository(db *sql.DB) *SQLiteCohortRepository {
	return &SQLiteCohortRepository{db: db}
}

func scanCohort(s scanner) (*models.Cohort, error) {
	var c models.Cohort
	var id string
	var configJSON string

	if err := s.Scan(&id, &c.Name, &configJSON, &c.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	c.ID = parsed

	c.Config = map[string]any{}
	if configJSON != "" {
		if err := json.Unmarshal([]byte(configJSON), &c.Config); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// GetByID retrieves a cohort by its id.
func (r *SQLiteCohortRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Cohort, error) {
	query := `SELECT id, name, config, created_at FROM cohorts WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id.String())
	c, err := scanCohort(row)
	if err != nil {
		return nil, commonerrors.WrapError(cohort.ErrCohortNotFound, err)
	}

	return c, nil
}
