package api

import (
	"errors"
	"net/http"

	"github.com/benidevo/mentormatch/internal/cohort"
	"github.com/benidevo/mentormatch/internal/match"
)

// statusFor maps a domain error to the HTTP status it should surface as.
// Anything unrecognized is a 500: the handler logs it and the client sees
// only a generic message, per the teacher's globalErrorHandler convention
// of never leaking internal error text.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cohort.ErrCohortNotFound),
		errors.Is(err, cohort.ErrParticipantNotFound),
		errors.Is(err, match.ErrRunNotFound),
		errors.Is(err, match.ErrNoActiveRun):
		return http.StatusNotFound

	case errors.Is(err, cohort.ErrDuplicateParticipant),
		errors.Is(err, cohort.ErrDuplicatePreference),
		errors.Is(err, match.ErrAlreadyRunning),
		errors.Is(err, match.ErrRunNotSuccess):
		return http.StatusConflict

	case errors.Is(err, cohort.ErrInvalidRole),
		errors.Is(err, cohort.ErrInvalidRank),
		errors.Is(err, cohort.ErrPreferenceRowInvalid),
		errors.Is(err, match.ErrCohortMismatch),
		errors.Is(err, match.ErrRoleMismatch),
		errors.Is(err, match.ErrReasonRequired):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}
