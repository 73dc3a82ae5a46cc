package enums

import "fmt"

// LeadStatus is the negotiation state of a lead match.
type LeadStatus string

const (
	LeadStatusPending  LeadStatus = "pending"
	LeadStatusAccepted LeadStatus = "accepted"
	LeadStatusDeclined LeadStatus = "declined"
)

var validLeadStatuses = []LeadStatus{
	LeadStatusPending,
	LeadStatusAccepted,
	LeadStatusDeclined,
}

// String implements fmt.Stringer.
func (s LeadStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LeadStatus.
func (s LeadStatus) IsValid() bool {
	for _, candidate := range validLeadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts raw input into a LeadStatus.
func ParseLeadStatus(value string) (LeadStatus, error) {
	for _, candidate := range validLeadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lead status %q", value)
}

// LeadOutcome is the derived win/loss classification of a lead from the
// owning company's perspective.
type LeadOutcome string

const (
	LeadOutcomeActive LeadOutcome = "active"
	LeadOutcomeWon    LeadOutcome = "won"
	LeadOutcomeLost   LeadOutcome = "lost"
)

// String implements fmt.Stringer.
func (o LeadOutcome) String() string {
	return string(o)
}
