package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	commonerrors "github.com/benidevo/mentormatch/internal/common/errors"
	"github.com/benidevo/mentormatch/internal/cohort/models"
)

// mentorAttributes is the shape mentor_profiles.attributes is marshalled
// to and from, keeping the scored fields together in one JSON document
// instead of one column per field.
type mentorAttributes struct {
	ExpertiseTags   []string `json:"expertise_tags"`
	Languages       []string `json:"languages"`
	CoachingTopics  []string `json:"coaching_topics"`
	JobTitle        string   `json:"job_title"`
	Function        string   `json:"function"`
	Location        string   `json:"location"`
	YearsExperience int      `json:"years_experience"`
}

// SQLiteProfileRepository is a SQLite implementation of ProfileRepository.
type SQLiteProfileRepository struct {
	db *sql.DB
}

// NewSQLiteProfileRepository creates a new SQLiteProfileRepository instance.
func NewSQLiteProfileRepository(db *sql.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{db: db}
}

// GetMentorProfile retrieves a mentor's scored-attribute profile, returning
// (nil, nil) if the mentor has not filled one in.
func (r *SQLiteProfileRepository) GetMentorProfile(ctx context.Context, participantID uuid.UUID) (*models.MentorProfile, error) {
	query := `SELECT attributes FROM mentor_profiles WHERE participant_id = ?`

	var attributesJSON string
	err := r.db.QueryRowContext(ctx, query, participantID.String()).Scan(&attributesJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, commonerrors.New("get mentor profile: " + err.Error())
	}

	var attrs mentorAttributes
	if err := json.Unmarshal([]byte(attributesJSON), &attrs); err != nil {
		return nil, err
	}

	return &models.MentorProfile{
		ParticipantID:   participantID,
		ExpertiseTags:   attrs.ExpertiseTags,
		Languages:       attrs.Languages,
		CoachingTopics:  attrs.CoachingTopics,
		JobTitle:        attrs.JobTitle,
		Function:        attrs.Function,
		Location:        attrs.Location,
		YearsExperience: attrs.YearsExperience,
	}, nil
}

// GetMenteeProfile retrieves a mentee's desired-attribute profile,
// returning (nil, nil) if the mentee has not filled one in.
func (r *SQLiteProfileRepository) GetMenteeProfile(ctx context.Context, participantID uuid.UUID) (*models.MenteeProfile, error) {
	query := `SELECT desired_attributes, notes FROM mentee_profiles WHERE participant_id = ?`

	var desiredJSON, notes string
	err := r.db.QueryRowContext(ctx, query, participantID.String()).Scan(&desiredJSON, &notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, commonerrors.New("get mentee profile: " + err.Error())
	}

	desired := map[string]models.AttributeValue{}
	if err := json.Unmarshal([]byte(desiredJSON), &desired); err != nil {
		return nil, err
	}

	return &models.MenteeProfile{
		ParticipantID:     participantID,
		DesiredAttributes: desired,
		Notes:             notes,
	}, nil
}

// UpsertMentorProfile persists a mentor's scored-attribute profile.
func (r *SQLiteProfileRepository) UpsertMentorProfile(ctx context.Context, p *models.MentorProfile) error {
	attrs := mentorAttributes{
		ExpertiseTags:   p.ExpertiseTags,
		Languages:       p.Languages,
		CoachingTopics:  p.CoachingTopics,
		JobTitle:        p.JobTitle,
		Function:        p.Function,
		Location:        p.Location,
		YearsExperience: p.YearsExperience,
	}

	data, err := json.Marshal(attrs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO mentor_profiles (participant_id, attributes, tags)
		VALUES (?, ?, ?)
		ON CONFLICT (participant_id) DO UPDATE SET attributes = excluded.attributes, tags = excluded.tags
	`

	tagsJSON, err := json.Marshal(p.ExpertiseTags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, p.ParticipantID.String(), data, tagsJSON)
	return err
}

// UpsertMenteeProfile persists a mentee's desired-attribute profile.
func (r *SQLiteProfileRepository) UpsertMenteeProfile(ctx context.Context, p *models.MenteeProfile) error {
	desiredJSON, err := json.Marshal(p.DesiredAttributes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO mentee_profiles (participant_id, desired_attributes, notes)
		VALUES (?, ?, ?)
		ON CONFLICT (participant_id) DO UPDATE SET desired_attributes = excluded.desired_attributes, notes = excluded.notes
	`

	_, err = r.db.ExecContext(ctx, query, p.ParticipantID.String(), desiredJSON, p.Notes)
	return err
}
