package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/benidevo/mentormatch/internal/cohort"
	commonerrors "github.com/benidevo/mentormatch/internal/common/errors"
	"github.com/benidevo/mentormatch/internal/cohort/models"
)

// SQLiteParticipantRepository is a SQLite implementation of
// ParticipantRepository.
type SQLiteParticipantRepository struct {
	db *sql.DB
}

// NewSQLiteParticipantRepository creates a new SQLiteParticipantRepository
// instance.
func NewSQLiteParticipantRepository(db *sql.DB) *SQLiteParticipantRepository {
	return &SQLiteParticipantRepository{db: db}
}

func scanParticipant(s scanner) (*models.Participant, error) {
	var p models.Participant
	var id, cohortID, role string
	var submitted int

	err := s.Scan(
		&id, &cohortID, &p.ExternalUserID, &role,
		&p.DisplayName, &p.Email, &p.Organization, &submitted, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	parsedCohortID, err := uuid.Parse(cohortID)
	if err != nil {
		return nil, err
	}

	p.ID = parsedID
	p.CohortID = parsedCohortID
	p.Role = models.Role(role)
	p.Submitted = submitted != 0

	return &p, nil
}

// GetByID retrieves a participant by id.
func (r *SQLiteParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	query := `
		SELECT id, cohort_id, external_user_id, role, display_name, email, organization, submitted, created_at
		FROM participants WHERE id = ?
	`

	row := r.db.QueryRowContext(ctx, query, id.String())
	p, err := scanParticipant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, commonerrors.WrapError(cohort.ErrParticipantNotFound, err)
	}

	return p, nil
}

// ListSubmitted returns every submitted participant of the given role in a
// cohort, ordered by creation so results are stable across calls.
func (r *SQLiteParticipantRepository) ListSubmitted(ctx context.Context, cohortID uuid.UUID, role models.Role) ([]*models.Participant, error) {
	query := `
		SELECT id, cohort_id, external_user_id, role, display_name, email, organization, submitted, created_at
		FROM participants
		WHERE cohort_id = ? AND role = ? AND submitted = 1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cohortID.String(), string(role))
	if err != nil {
		return nil, commonerrors.WrapError(cohort.ErrParticipantNotFound, err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// Create inserts a new participant.
func (r *SQLiteParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	if !p.Role.Valid() {
		return cohort.ErrInvalidRole
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO participants (id, cohort_id, external_user_id, role, display_name, email, organization, submitted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	submitted := 0
	if p.Submitted {
		submitted = 1
	}

	_, err := r.db.ExecContext(
		ctx, query,
		p.ID.String(), p.CohortID.String(), p.ExternalUserID, string(p.Role),
		p.DisplayName, p.Email, p.Organization, submitted, p.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return commonerrors.WrapError(cohort.ErrDuplicateParticipant, err)
		}
		return commonerrors.WrapError(cohort.ErrParticipantNotFound, err)
	}

	return nil
}
