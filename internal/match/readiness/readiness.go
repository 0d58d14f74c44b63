// Package readiness produces a structured diagnostics report over a
// cohort's submitted participants ahead of a run, without blocking
// solving. It is a pure function of the same PreparedInputs the solvers
// consume, plus the raw participant list for organization diagnostics.
package readiness

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	cohortmodels "github.com/benidevo/mentormatch/internal/cohort/models"
	"github.com/benidevo/mentormatch/internal/match/models"
)

// Check is a single pass/fail diagnostic with a human message.
type Check struct {
	Ready   bool
	Message string
}

// OptionCount records how many cross-org mutual options a participant has.
type OptionCount struct {
	ParticipantID uuid.UUID
	Role          cohortmodels.Role
	Count         int
}

// OrgCount is the per-organization role tally.
type OrgCount struct {
	Organization string
	Mentors      int
	Mentees      int
}

// Report is the full diagnostics object returned to callers. None of its
// fields gate solving; Orchestrator.Run does not consult it.
type Report struct {
	BalancedCounts       Check
	OrganizationPresent  Check
	AllSubmitted         Check
	SufficientOptions    Check
	ZeroOptionParticipants []OptionCount
	LowestOptions        []OptionCount
	OrgDistribution      []OrgCount
	Remediations         []string
}

// Summary renders the four checks as a short human-readable line, folding
// in the admin dashboard counts this report subsumes.
func (r Report) Summary() string {
	ready := r.BalancedCounts.Ready && r.OrganizationPresent.Ready && r.AllSubmitted.Ready && r.SufficientOptions.Ready
	status := "not ready"
	if ready {
		status = "ready"
	}
	return fmt.Sprintf("%s: %d zero-option participant(s) across %d organization(s)",
		status, len(r.ZeroOptionParticipants), len(r.OrgDistribution))
}

// topN bounds how many lowest-option participants are surfaced.
const topN = 10

// Generate computes the four checks plus supporting diagnostics for a
// cohort, given its submitted participants and the already-built prepared
// inputs (for acceptability and same-org lookups).
func Generate(participants []*cohortmodels.Participant, inputs models.PreparedInputs) Report {
	mentors, mentees := splitByRole(participants)

	report := Report{
		BalancedCounts:      checkBalancedCounts(mentors, mentees),
		OrganizationPresent: checkOrganizationPresent(participants),
		AllSubmitted:        checkAllSubmitted(participants),
		OrgDistribution:     buildOrgDistribution(mentors, mentees),
	}

	options := crossOrgMutualOptionCounts(mentors, mentees, inputs)
	report.SufficientOptions = checkSufficientOptions(options, inputs.Config.MinOptionsStrict)
	report.ZeroOptionParticipants = filterZero(options)
	report.LowestOptions = lowestN(options, topN)
	report.Remediations = buildRemediations(report)

	return report
}

func splitByRole(participants []*cohortmodels.Participant) (mentors, mentees []*cohortmodels.Participant) {
	for _, p := range participants {
		switch p.Role {
		case cohortmodels.RoleMentor:
			mentors = append(mentors, p)
		case cohortmodels.RoleMentee:
			mentees = append(mentees, p)
		}
	}
	return mentors, mentees
}

func checkBalancedCounts(mentors, mentees []*cohortmodels.Participant) Check {
	if len(mentors) == len(mentees) {
		return Check{Ready: true, Message: fmt.Sprintf("%d mentors and %d mentees", len(mentors), len(mentees))}
	}
	return Check{
		Ready:   false,
		Message: fmt.Sprintf("mentor/mentee counts are unbalanced: %d mentors vs %d mentees", len(mentors), len(mentees)),
	}
}

func checkOrganizationPresent(participants []*cohortmodels.Participant) Check {
	var missing int
	for _, p := range participants {
		if p.Organization == "" {
			missing++
		}
	}
	if missing == 0 {
		return Check{Ready: true, Message: "every submitted participant has an organization"}
	}
	return Check{Ready: false, Message: fmt.Sprintf("%d submitted participant(s) have no organization on file", missing)}
}

func checkAllSubmitted(participants []*cohortmodels.Participant) Check {
	var unsubmitted int
	for _, p := range participants {
		if !p.Submitted {
			unsubmitted++
		}
	}
	if unsubmitted == 0 {
		return Check{Ready: true, Message: "all considered participants are submitted"}
	}
	return Check{Ready: false, Message: fmt.Sprintf("%d participant(s) passed in are not marked submitted", unsubmitted)}
}

func checkSufficientOptions(options []OptionCount, minOptions int) Check {
	var short int
	for _, o := range options {
		if o.Count < minOptions {
			short++
		}
	}
	if short == 0 {
		return Check{Ready: true, Message: fmt.Sprintf("every participant has at least %d cross-org mutual option(s)", minOptions)}
	}
	return Check{Ready: false, Message: fmt.Sprintf("%d participant(s) have fewer than %d cross-org mutual option(s)", short, minOptions)}
}

func crossOrgMutualOptionCounts(mentors, mentees []*cohortmodels.Participant, inputs models.PreparedInputs) []OptionCount {
	counts := make([]OptionCount, 0, len(mentors)+len(mentees))

	for _, mentor := range mentors {
		n := 0
		for _, mentee := range mentees {
			key := models.PairKey{MentorID: mentor.ID, MenteeID: mentee.ID}
			if inputs.SameOrg[key] {
				continue
			}
			if inputs.Acceptability[key] == models.Mutual {
				n++
			}
		}
		counts = append(counts, OptionCount{ParticipantID: mentor.ID, Role: cohortmodels.RoleMentor, Count: n})
	}

	for _, mentee := range mentees {
		n := 0
		for _, mentor := range mentors {
			key := models.PairKey{MentorID: mentor.ID, MenteeID: mentee.ID}
			if inputs.SameOrg[key] {
				continue
			}
			if inputs.Acceptability[key] == models.Mutual {
				n++
			}
		}
		counts = append(counts, OptionCount{ParticipantID: mentee.ID, Role: cohortmodels.RoleMentee, Count: n})
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].ParticipantID.String() < counts[j].ParticipantID.String() })
	return counts
}

func filterZero(options []OptionCount) []OptionCount {
	var zero []OptionCount
	for _, o := range options {
		if o.Count == 0 {
			zero = append(zero, o)
		}
	}
	return zero
}

func lowestN(options []OptionCount, n int) []OptionCount {
	sorted := append([]OptionCount(nil), options...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count < sorted[j].Count })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func buildOrgDistribution(mentors, mentees []*cohortmodels.Participant) []OrgCount {
	byOrg := make(map[string]*OrgCount)
	order := make([]string, 0)

	ensure := func(org string) *OrgCount {
		if c, ok := byOrg[org]; ok {
			return c
		}
		c := &OrgCount{Organization: org}
		byOrg[org] = c
		order = append(order, org)
		return c
	}

	for _, m := range mentors {
		ensure(m.Organization).Mentors++
	}
	for _, m := range mentees {
		ensure(m.Organization).Mentees++
	}

	sort.Strings(order)
	out := make([]OrgCount, 0, len(order))
	for _, org := range order {
		out = append(out, *byOrg[org])
	}
	return out
}

func buildRemediations(report Report) []string {
	var out []string
	if !report.BalancedCounts.Ready {
		out = append(out, "invite more participants to the underrepresented role, or hold the run until counts balance")
	}
	if !report.OrganizationPresent.Ready {
		out = append(out, "collect organization for every participant missing one before running strict mode")
	}
	if !report.AllSubmitted.Ready {
		out = append(out, "exclude or follow up with participants who have not submitted")
	}
	if !report.SufficientOptions.Ready {
		out = append(out, "ask low-option participants to rank more cross-organization candidates, or run exception mode")
	}
	return out
}
