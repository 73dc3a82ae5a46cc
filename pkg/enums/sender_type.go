package enums

import "fmt"

// SenderType marks which party authored a lead message.
type SenderType string

const (
	SenderTypeCompany  SenderType = "company"
	SenderTypeCustomer SenderType = "customer"
)

var validSenderTypes = []SenderType{
	SenderTypeCompany,
	SenderTypeCustomer,
}

// String implements fmt.Stringer.
func (s SenderType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SenderType.
func (s SenderType) IsValid() bool {
	for _, candidate := range validSenderTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSenderType converts raw input into a SenderType.
func ParseSenderType(value string) (SenderType, error) {
	for _, candidate := range validSenderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sender type %q", value)
}
