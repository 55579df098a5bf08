package enums

import "fmt"

// ClaimStatus tracks the lifecycle of a claim against a listing.
type ClaimStatus string

const (
	ClaimStatusReserved  ClaimStatus = "RESERVED"
	ClaimStatusCompleted ClaimStatus = "COMPLETED"
	ClaimStatusExpired   ClaimStatus = "EXPIRED"
)

var validClaimStatuses = []ClaimStatus{
	ClaimStatusReserved,
	ClaimStatusCompleted,
	ClaimStatusExpired,
}

// String implements fmt.Stringer.
func (s ClaimStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ClaimStatus.
func (s ClaimStatus) IsValid() bool {
	for _, candidate := range validClaimStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseClaimStatus converts raw input into a ClaimStatus.
func ParseClaimStatus(value string) (ClaimStatus, error) {
	for _, candidate := range validClaimStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid claim status %q", value)
}
