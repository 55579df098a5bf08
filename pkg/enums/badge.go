package enums

import "fmt"

// BadgeStat names the counter a badge threshold is evaluated against.
type BadgeStat string

const (
	BadgeStatDonationsMade  BadgeStat = "donations_made"
	BadgeStatClaimsReceived BadgeStat = "claims_received"
	BadgeStatImpactPoints   BadgeStat = "impact_points"
)

var validBadgeStats = []BadgeStat{
	BadgeStatDonationsMade,
	BadgeStatClaimsReceived,
	BadgeStatImpactPoints,
}

// String implements fmt.Stringer.
func (b BadgeStat) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BadgeStat.
func (b BadgeStat) IsValid() bool {
	for _, candidate := range validBadgeStats {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBadgeStat converts raw input into a BadgeStat.
func ParseBadgeStat(value string) (BadgeStat, error) {
	for _, candidate := range validBadgeStats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid badge stat %q", value)
}
