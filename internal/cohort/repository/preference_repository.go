package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/cohort"
	commonerrors "github.com/benidevo/mentormatch/internal/common/errors"
	"github.com/benidevo/mentormatch/internal/cohort/models"
)

// SQLitePreferenceRepository is a SQLite implementation of
// PreferenceRepository.
type SQLitePreferenceRepository struct {
	db *sql.DB
}

// NewSQLitePreferenceRepository creates a new SQLitePreferenceRepository
// instance.
func NewSQLitePreferenceRepository(db *sql.DB) *SQLitePreferenceRepository {
	return &SQLitePreferenceRepository{db: db}
}

func scanPreference(s scanner) (*models.Preference, error) {
	var p models.Preference
	var id, cohortID, fromID, toID string

	if err := s.Scan(&id, &cohortID, &fromID, &toID, &p.Rank); err != nil {
		return nil, err
	}

	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if p.CohortID, err = uuid.Parse(cohortID); err != nil {
		return nil, err
	}
	if p.FromID, err = uuid.Parse(fromID); err != nil {
		return nil, err
	}
	if p.ToID, err = uuid.Parse(toID); err != nil {
		return nil, err
	}

	return &p, nil
}

// ListForParticipants returns every preference whose from-side is one of
// participantIDs, which is the set the Preparer needs to build the full
// preference graph for a cohort's submitted participants.
func (r *SQLitePreferenceRepository) ListForParticipants(ctx context.Context, participantIDs []uuid.UUID) ([]*models.Preference, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(participantIDs))
	args := make([]any, len(participantIDs))
	for i, id := range participantIDs {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	query := `
		SELECT id, cohort_id, from_id, to_id, rank
		FROM preferences
		WHERE from_id IN (` + strings.Join(placeholders, ",") + `)
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var preferences []*models.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		preferences = append(preferences, p)
	}

	return preferences, rows.Err()
}

// Create inserts a new preference edge.
func (r *SQLitePreferenceRepository) Create(ctx context.Context, p *models.Preference) error {
	if p.Rank < 1 {
		return cohort.ErrInvalidRank
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO preferences (id, cohort_id, from_id, to_id, rank)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		p.ID.String(), p.CohortID.String(), p.FromID.String(), p.ToID.String(), p.Rank,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return commonerrors.WrapError(cohort.ErrDuplicatePreference, err)
		}
		return commonerrors.WrapError(cohort.ErrPreferenceRowInvalid, err)
	}

	return nil
}
