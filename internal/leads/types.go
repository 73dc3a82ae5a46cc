package leads

import (
	"time"

	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
)

// LeadMatch joins a company to a job request it has expressed interest in.
// The unlock flags come straight from the server; the client never computes
// entitlements.
type LeadMatch struct {
	ID         int64            `json:"id"`
	JobRequest int64            `json:"job_request"`
	Company    int64            `json:"company"`
	Status     enums.LeadStatus `json:"status"`

	CanChat              bool `json:"can_chat"`
	CustomerInfoUnlocked bool `json:"customer_info_unlocked"`
	LeadUnlocked         bool `json:"lead_unlocked"`

	JobTitle   string  `json:"job_title,omitempty"`
	CustomerID *int64  `json:"customer,omitempty"`
	Phone      *string `json:"customer_phone,omitempty"`
	Email      *string `json:"customer_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// LeadMessage is one chat entry on a lead's thread.
type LeadMessage struct {
	ID        int64            `json:"id"`
	LeadMatch int64            `json:"lead_match"`
	Sender    enums.SenderType `json:"sender_type"`
	Body      string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// JobOutcome captures the fields of a job request that decide whether a
// lead was won or lost.
type JobOutcome struct {
	IsActive        bool
	AcceptedCompany *int64
}

// Outcome classifies a lead against its job: won when this company was
// accepted, lost when another company won or the job went inactive,
// otherwise still active.
func Outcome(lead LeadMatch, job JobOutcome) enums.LeadOutcome {
	if job.AcceptedCompany != nil && *job.AcceptedCompany == lead.Company {
		return enums.LeadOutcomeWon
	}
	if job.AcceptedCompany != nil || !job.IsActive {
		return enums.LeadOutcomeLost
	}
	return enums.LeadOutcomeActive
}
