// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured. Numbers like
// 0812-3456-7890 are read as Indonesian mobiles.
const DefaultRegion = "ID"

// NormalizeE164 formats a phone number to E.164 using DefaultRegion.
func NormalizeE164(input string) string {
	return NormalizeE164WithRegion(input, DefaultRegion)
}

// NormalizeE164WithRegion formats a phone number to E.164. If parsing fails,
// it returns the trimmed input.
func NormalizeE164WithRegion(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if region == "" {
		region = DefaultRegion
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// IsValid reports whether input parses to a valid number in region.
func IsValid(input, region string) bool {
	if region == "" {
		region = DefaultRegion
	}
	number, err := phonenumbers.Parse(strings.TrimSpace(input), strings.ToUpper(region))
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}
