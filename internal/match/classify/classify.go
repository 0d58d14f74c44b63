// Package classify holds the pure exception classifier: labeling a pair
// as E1/E2/E3 or clean, computing its penalty, and ranking severities.
package classify

import (
	"fmt"

	"github.com/benidevo/mentormatch/internal/match/models"
)

// Classification is the result of classifying one pair.
type Classification struct {
	Kind   models.ExceptionKind
	Reason string
}

// Classify labels a pair according to the strict priority ordering
// E3 (same org) > E2 (neither ranks the other) > E1 (one-sided). Only the
// highest-priority applicable label is returned; a clean pair (mutual,
// cross-org) yields the zero Classification.
func Classify(sameOrg bool, acceptability models.Acceptability, organization string) Classification {
	if sameOrg {
		return Classification{Kind: models.ExceptionSameOrg, Reason: fmt.Sprintf("Same organization: %s", organization)}
	}

	switch acceptability {
	case models.Neither:
		return Classification{Kind: models.ExceptionNeither, Reason: "Neither participant ranked the other"}
	case models.OneSidedMentorOnly:
		// Mentor ranked mentee, mentee did not reciprocate.
		return Classification{Kind: models.ExceptionOneSided, Reason: "Mentee did not rank mentor"}
	case models.OneSidedMenteeOnly:
		// Mentee ranked mentor, mentor did not reciprocate.
		return Classification{Kind: models.ExceptionOneSided, Reason: "Mentor did not rank mentee"}
	default:
		return Classification{}
	}
}

// Priority returns the severity rank of an exception kind: 3 for E3
// (highest), 2 for E2, 1 for E1, 0 for a clean pair.
func Priority(kind models.ExceptionKind) int {
	switch kind {
	case models.ExceptionSameOrg:
		return 3
	case models.ExceptionNeither:
		return 2
	case models.ExceptionOneSided:
		return 1
	default:
		return 0
	}
}

// Penalty returns the configured penalty magnitude for an exception kind,
// 0 for a clean pair.
func Penalty(kind models.ExceptionKind, cfg models.EngineConfig) int64 {
	switch kind {
	case models.ExceptionSameOrg:
		return cfg.PenaltyOrg
	case models.ExceptionNeither:
		return cfg.PenaltyNeither
	case models.ExceptionOneSided:
		return cfg.PenaltyOneSided
	default:
		return 0
	}
}

// ClassifyPair is a convenience wrapper combining Classify and Penalty for
// one pair's matrix entries.
func ClassifyPair(sameOrg bool, acceptability models.Acceptability, organization string, cfg models.EngineConfig) (Classification, int64) {
	c := Classify(sameOrg, acceptability, organization)
	return c, Penalty(c.Kind, cfg)
}
