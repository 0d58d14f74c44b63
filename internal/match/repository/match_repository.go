package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// SQLiteMatchRepository is a SQLite implementation of MatchRepository.
type SQLiteMatchRepository struct {
	db *sql.DB
}

// NewSQLiteMatchRepository creates a new SQLiteMatchRepository instance.
func NewSQLiteMatchRepository(db *sql.DB) *SQLiteMatchRepository {
	return &SQLiteMatchRepository{db: db}
}

func scanMatch(s scanner) (*models.Match, error) {
	var m models.Match
	var id, runID, mentorID, menteeID, exceptionType string
	var ambiguityFlag, exceptionFlag, isManualOverride int

	err := s.Scan(
		&id, &runID, &mentorID, &menteeID, &m.ScorePercent,
		&ambiguityFlag, &m.AmbiguityReason,
		&exceptionFlag, &exceptionType, &m.ExceptionReason,
		&isManualOverride, &m.OverrideReason,
	)
	if err != nil {
		return nil, err
	}

	var parseErr error
	if m.ID, parseErr = uuid.Parse(id); parseErr != nil {
		return nil, parseErr
	}
	if m.RunID, parseErr = uuid.Parse(runID); parseErr != nil {
		return nil, parseErr
	}
	if m.MentorID, parseErr = uuid.Parse(mentorID); parseErr != nil {
		return nil, parseErr
	}
	if m.MenteeID, parseErr = uuid.Parse(menteeID); parseErr != nil {
		return nil, parseErr
	}

	m.AmbiguityFlag = ambiguityFlag != 0
	m.ExceptionFlag = exceptionFlag != 0
	m.IsManualOverride = isManualOverride != 0
	m.ExceptionType = models.ExceptionKind(exceptionType)

	return &m, nil
}

const matchColumns = `
	id, run_id, mentor_id, mentee_id, score_percent,
	ambiguity_flag, ambiguity_reason,
	exception_flag, exception_type, exception_reason,
	is_manual_override, override_reason
`

// CreateBatch inserts every match of a successful run in one transaction.
func (r *SQLiteMatchRepository) CreateBatch(ctx context.Context, runID uuid.UUID, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx, matchArgs(runID, m)...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func matchArgs(runID uuid.UUID, m *models.Match) []any {
	return []any{
		m.ID.String(), runID.String(), m.MentorID.String(), m.MenteeID.String(), m.ScorePercent,
		boolToInt(m.AmbiguityFlag), m.AmbiguityReason,
		boolToInt(m.ExceptionFlag), string(m.ExceptionType), m.ExceptionReason,
		boolToInt(m.IsManualOverride), m.OverrideReason,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ListForRun retrieves every match belonging to a run.
func (r *SQLiteMatchRepository) ListForRun(ctx context.Context, runID uuid.UUID) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE run_id = ?`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// GetByMentorInRun retrieves the match row for a mentor within a run,
// returning (nil, nil) if the mentor has no match in that run.
func (r *SQLiteMatchRepository) GetByMentorInRun(ctx context.Context, runID, mentorID uuid.UUID) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE run_id = ? AND mentor_id = ?`, runID.String(), mentorID.String())
	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GetByMenteeInRun retrieves the match row for a mentee within a run,
// returning (nil, nil) if the mentee has no match in that run.
func (r *SQLiteMatchRepository) GetByMenteeInRun(ctx context.Context, runID, menteeID uuid.UUID) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE run_id = ? AND mentee_id = ?`, runID.String(), menteeID.String())
	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Upsert inserts or replaces a match row keyed by (run_id, mentor_id), used
// by manual overrides to rewrite a mentor's pairing within a run.
func (r *SQLiteMatchRepository) Upsert(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, mentor_id) DO UPDATE SET
			mentee_id = excluded.mentee_id,
			score_percent = excluded.score_percent,
			ambiguity_flag = excluded.ambiguity_flag,
			ambiguity_reason = excluded.ambiguity_reason,
			exception_flag = excluded.exception_flag,
			exception_type = excluded.exception_type,
			exception_reason = excluded.exception_reason,
			is_manual_override = excluded.is_manual_override,
			override_reason = excluded.override_reason
	`

	_, err := r.db.ExecContext(ctx, query, matchArgs(m.RunID, m)...)
	return err
}

// DeleteByMenteeInRun removes whichever match row currently holds menteeID
// within a run, used to displace a previous mentor when an override
// reassigns that mentee.
func (r *SQLiteMatchRepository) DeleteByMenteeInRun(ctx context.Context, runID, menteeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE run_id = ? AND mentee_id = ?`, runID.String(), menteeID.String())
	return err
}
