package enums

import "fmt"

// PriceType distinguishes fixed-sum from hourly offer pricing.
type PriceType string

const (
	PriceTypeFixed  PriceType = "fixed"
	PriceTypeHourly PriceType = "hourly"
)

var validPriceTypes = []PriceType{
	PriceTypeFixed,
	PriceTypeHourly,
}

// String implements fmt.Stringer.
func (p PriceType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceType.
func (p PriceType) IsValid() bool {
	for _, candidate := range validPriceTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceType converts raw input into a PriceType.
func ParsePriceType(value string) (PriceType, error) {
	for _, candidate := range validPriceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price type %q", value)
}
