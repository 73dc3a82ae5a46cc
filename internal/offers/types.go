package offers

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
)

// OfferVersion is an immutable snapshot of offer terms. The server appends a
// version on each edit cycle; history is read-only.
type OfferVersion struct {
	ID           int64            `json:"id"`
	Presentation string           `json:"presentation"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	PriceType    enums.PriceType  `json:"price_type"`
	PriceAmount  *decimal.Decimal `json:"price_amount,omitempty"`
	Includes     string           `json:"includes"`
	Excludes     string           `json:"excludes"`
	CreatedAt    string           `json:"created_at,omitempty"`
}

// Offer always points at exactly one current version.
type Offer struct {
	ID             int64             `json:"id"`
	JobRequest     int64             `json:"job_request"`
	Company        int64             `json:"company"`
	Status         enums.OfferStatus `json:"status"`
	CurrentVersion OfferVersion      `json:"current_version"`
	CreatedAt      string            `json:"created_at,omitempty"`
	UpdatedAt      string            `json:"updated_at,omitempty"`
}

// VersionPatch carries the fields a wizard step edits on the current version.
type VersionPatch struct {
	Presentation *string          `json:"presentation,omitempty"`
	StartDate    *string          `json:"start_date,omitempty"`
	EndDate      *string          `json:"end_date,omitempty"`
	PriceType    *enums.PriceType `json:"price_type,omitempty"`
	PriceAmount  *decimal.Decimal `json:"price_amount,omitempty"`
	Includes     *string          `json:"includes,omitempty"`
	Excludes     *string          `json:"excludes,omitempty"`
}

// SignRequest finalizes an offer with the signer's personal number.
type SignRequest struct {
	PersonalNumber string `json:"personal_number" validate:"required"`
}

// Form is the working state of the editing wizard: the offer under edit plus
// the signing confirmation collected on the final step.
type Form struct {
	Offer Offer

	PersonalNumber string
	ConfirmSign    bool
}

func presentationValid(f Form) bool {
	return len(strings.TrimSpace(f.Offer.CurrentVersion.Presentation)) > 5
}

func datesValid(f Form) bool {
	v := f.Offer.CurrentVersion
	return v.StartDate != "" && v.EndDate != ""
}

func priceValid(f Form) bool {
	v := f.Offer.CurrentVersion
	return v.PriceType.IsValid() && v.PriceAmount != nil && v.PriceAmount.IsPositive()
}

func scopeValid(f Form) bool {
	v := f.Offer.CurrentVersion
	return len(strings.TrimSpace(v.Includes)) > 5 && len(strings.TrimSpace(v.Excludes)) > 5
}

func signValid(f Form) bool {
	return f.ConfirmSign && strings.TrimSpace(f.PersonalNumber) != ""
}

// signLock pins the wizard to the signing step once the offer has left
// draft. Approval is irreversible, earlier steps stay visible read-only.
func signLock(f Form) (int, bool) {
	if f.Offer.Status.IsLocked() {
		return 5, true
	}
	return 0, false
}
