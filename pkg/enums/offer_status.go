package enums

import "fmt"

// OfferStatus tracks an offer through its signing lifecycle.
type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "draft"
	OfferStatusSigned   OfferStatus = "signed"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusLocked   OfferStatus = "locked"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusDraft,
	OfferStatusSigned,
	OfferStatusAccepted,
	OfferStatusRejected,
	OfferStatusLocked,
}

// String implements fmt.Stringer.
func (s OfferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OfferStatus.
func (s OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsLocked reports whether the offer left the editable draft state.
func (s OfferStatus) IsLocked() bool {
	return s != OfferStatusDraft && s != ""
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}
