package cohort

import "errors"

var (
	ErrCohortNotFound      = errors.New("cohort not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant already exists for this cohort and external user")
	ErrDuplicatePreference  = errors.New("preference already exists for this pair")
	ErrInvalidRole          = errors.New("participant role must be MENTOR or MENTEE")
	ErrInvalidRank          = errors.New("preference rank must be >= 1")

	// ErrPreferenceRowInvalid is returned by ValidatePreferenceRow, per the
	// stricter of the two import-validation behaviors the original system
	// carried (see DESIGN.md Open Question decisions).
	ErrPreferenceRowInvalid = errors.New("preference row references a participant that does not exist")
)
