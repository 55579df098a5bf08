package enums

import "fmt"

// AccountType represents the canonical account_type enum in Postgres.
type AccountType string

const (
	AccountTypeHousehold      AccountType = "household"
	AccountTypeRestaurant     AccountType = "restaurant"
	AccountTypeEventOrganizer AccountType = "event_organizer"
	AccountTypeNGO            AccountType = "ngo"
	AccountTypeIndividual     AccountType = "individual"
)

var validAccountTypes = []AccountType{
	AccountTypeHousehold,
	AccountTypeRestaurant,
	AccountTypeEventOrganizer,
	AccountTypeNGO,
	AccountTypeIndividual,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AccountType.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
