package jobrequests

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NameRef is an expanded foreign key as returned on detail fields.
type NameRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// JobRequest is a published, immutable job posting.
type JobRequest struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	City             *int64           `json:"city,omitempty"`
	Profession       *int64           `json:"profession,omitempty"`
	CityDetail       *NameRef         `json:"city_detail,omitempty"`
	ProfessionDetail *NameRef         `json:"profession_detail,omitempty"`
	Budget           *decimal.Decimal `json:"budget,omitempty"`
	IsActive         bool             `json:"is_active"`
	OffersLeft       int              `json:"offers_left"`
	LeadUnlocked     bool             `json:"lead_unlocked"`
	AcceptedCompany  *int64           `json:"accepted_company,omitempty"`
	AcceptedOffer    *int64           `json:"accepted_offer,omitempty"`
	CreatedAt        string           `json:"created_at,omitempty"`
}

// Draft is the server-persisted precursor to a JobRequest, filled in over
// the wizard steps.
type Draft struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	City        *int64           `json:"city,omitempty"`
	Profession  *int64           `json:"profession,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Submitted   bool             `json:"submitted"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

// DraftPatch carries only the fields a wizard step owns.
type DraftPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	City        *int64           `json:"city,omitempty"`
	Profession  *int64           `json:"profession,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
}

// Form is the local working state of the creation wizard. The consent block
// is collected on the final step and posted out of band; it never lands on
// the draft resource.
type Form struct {
	Draft Draft

	PersonalNumber string
	ConsentTerms   bool
	ConsentData    bool
}

// Step predicates, pure over the form.

func titleValid(f Form) bool {
	return len(strings.TrimSpace(f.Draft.Title)) >= 5
}

func descriptionValid(f Form) bool {
	return len(strings.TrimSpace(f.Draft.Description)) >= 20
}

func placementValid(f Form) bool {
	return f.Draft.City != nil && f.Draft.Profession != nil
}

// budgetValid accepts an absent budget; a present one must be positive.
func budgetValid(f Form) bool {
	return f.Draft.Budget == nil || f.Draft.Budget.IsPositive()
}

func consentValid(f Form) bool {
	return strings.TrimSpace(f.PersonalNumber) != "" && f.ConsentTerms && f.ConsentData
}
