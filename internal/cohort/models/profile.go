package models

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// AttributeKind distinguishes the three shapes a mentee desired-attribute
// value can take: a boolean flag, a single string, or a list of strings.
// Modeled as a tagged union rather than as `any` so the scorer can pattern
// match explicitly instead of re-discovering the JSON shape at match time.
type AttributeKind int

const (
	AttributeBool AttributeKind = iota
	AttributeString
	AttributeList
)

// AttributeValue is one entry of a mentee's desired-attributes map.
type AttributeValue struct {
	Kind AttributeKind
	Bool bool
	Str  string
	List []string
}

// UnmarshalJSON decodes a raw JSON value into the matching tagged variant.
func (a *AttributeValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || string(trimmed) == "null":
		*a = AttributeValue{}
		return nil
	case string(trimmed) == "true" || string(trimmed) == "false":
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = AttributeValue{Kind: AttributeBool, Bool: b}
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AttributeValue{Kind: AttributeString, Str: s}
		return nil
	case trimmed[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*a = AttributeValue{Kind: AttributeList, List: list}
		return nil
	default:
		// Unsupported numeric/object attribute values are treated as absent
		// rather than erroring out the whole desired-attributes map.
		*a = AttributeValue{}
		return nil
	}
}

// MarshalJSON encodes the tagged variant back to its native JSON shape.
func (a AttributeValue) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AttributeBool:
		return json.Marshal(a.Bool)
	case AttributeString:
		return json.Marshal(a.Str)
	case AttributeList:
		return json.Marshal(a.List)
	default:
		return json.Marshal(nil)
	}
}

// MentorProfile holds the external-side data the Scorer reads about a
// mentor: expertise tags, languages, location, and years of experience.
type MentorProfile struct {
	ParticipantID   uuid.UUID
	ExpertiseTags   []string
	Languages       []string
	CoachingTopics  []string
	JobTitle        string
	Function        string
	Location        string
	YearsExperience int
}

// FieldsForScoring exposes the profile as a generic key->value map so the
// Scorer's attribute-match component can look up a mentee's desired
// attribute key against the mentor's corresponding field without a
// hand-written switch per field name.
func (m MentorProfile) FieldsForScoring() map[string]any {
	return map[string]any{
		"expertise_tags":   m.ExpertiseTags,
		"expertise":        m.ExpertiseTags,
		"languages":        m.Languages,
		"coaching_topics":  m.CoachingTopics,
		"job_title":        m.JobTitle,
		"function":         m.Function,
		"location":         m.Location,
		"years_experience": m.YearsExperience,
	}
}

// MenteeProfile holds a mentee's desired-attribute map and free-text notes.
type MenteeProfile struct {
	ParticipantID     uuid.UUID
	DesiredAttributes map[string]AttributeValue
	Notes             string
}

// DesiredExpertise returns the "preferred_expertise" desired attribute as a
// plain string list, or nil if unset or not a list.
func (m MenteeProfile) DesiredExpertise() []string {
	v, ok := m.DesiredAttributes["preferred_expertise"]
	if !ok || v.Kind != AttributeList {
		return nil
	}
	return v.List
}

// PairScore is the precomputed, rebuildable quality score for one
// mentor/mentee pair within a cohort.
type PairScore struct {
	CohortID  uuid.UUID
	MentorID  uuid.UUID
	MenteeID  uuid.UUID
	Score     float64 // percentage in [0,100]
	Breakdown map[string]float64
}
