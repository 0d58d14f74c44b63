package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/cohort/models"
)

// SQLitePairScoreRepository is a SQLite implementation of
// PairScoreRepository.
type SQLitePairScoreRepository struct {
	db *sql.DB
}

// NewSQLitePairScoreRepository creates a new SQLitePairScoreRepository
// instance.
func NewSQLitePairScoreRepository(db *sql.DB) *SQLitePairScoreRepository {
	return &SQLitePairScoreRepository{db: db}
}

// ListForCohort retrieves every precomputed pair score for a cohort.
func (r *SQLitePairScoreRepository) ListForCohort(ctx context.Context, cohortID uuid.UUID) ([]*models.PairScore, error) {
	query := `SELECT mentor_id, mentee_id, score, breakdown FROM pair_scores WHERE cohort_id = ?`

	rows, err := r.db.QueryContext(ctx, query, cohortID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*models.PairScore
	for rows.Next() {
		var mentorID, menteeID, breakdownJSON string
		var score float64

		if err := rows.Scan(&mentorID, &menteeID, &score, &breakdownJSON); err != nil {
			return nil, err
		}

		mentorUUID, err := uuid.Parse(mentorID)
		if err != nil {
			return nil, err
		}
		menteeUUID, err := uuid.Parse(menteeID)
		if err != nil {
			return nil, err
		}

		breakdown := map[string]float64{}
		if err := json.Unmarshal([]byte(breakdownJSON), &breakdown); err != nil {
			return nil, err
		}

		scores = append(scores, &models.PairScore{
			CohortID:  cohortID,
			MentorID:  mentorUUID,
			MenteeID:  menteeUUID,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	return scores, rows.Err()
}

// ReplaceAll atomically replaces every pair score for a cohort with scores,
// the bulk write used by the precompute operation that rebuilds a cohort's
// score matrix after profiles change.
func (r *SQLitePairScoreRepository) ReplaceAll(ctx context.Context, cohortID uuid.UUID, scores []*models.PairScore) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pair_scores WHERE cohort_id = ?`, cohortID.String()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pair_scores (cohort_id, mentor_id, mentee_id, score, breakdown)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range scores {
		breakdownJSON, err := json.Marshal(s.Breakdown)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, cohortID.String(), s.MentorID.String(), s.MenteeID.String(), s.Score, breakdownJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}
