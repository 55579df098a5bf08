package enums

import "fmt"

// ListingStatus tracks the lifecycle of a food listing.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "AVAILABLE"
	ListingStatusReserved  ListingStatus = "RESERVED"
	ListingStatusExpired   ListingStatus = "EXPIRED"
)

var validListingStatuses = []ListingStatus{
	ListingStatusAvailable,
	ListingStatusReserved,
	ListingStatusExpired,
}

// String implements fmt.Stringer.
func (s ListingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ListingStatus.
func (s ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

// ListingVisibility controls which audience can browse a listing.
type ListingVisibility string

const (
	ListingVisibilityEveryone ListingVisibility = "everyone"
	ListingVisibilityNGOOnly  ListingVisibility = "ngo_only"
)

var validListingVisibilities = []ListingVisibility{
	ListingVisibilityEveryone,
	ListingVisibilityNGOOnly,
}

// String implements fmt.Stringer.
func (v ListingVisibility) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ListingVisibility.
func (v ListingVisibility) IsValid() bool {
	for _, candidate := range validListingVisibilities {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseListingVisibility converts raw input into a ListingVisibility.
func ParseListingVisibility(value string) (ListingVisibility, error) {
	for _, candidate := range validListingVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing visibility %q", value)
}

// VisibleTo returns the visibilities a viewer with the given account type can browse.
func VisibleTo(accountType AccountType) []ListingVisibility {
	if accountType == AccountTypeNGO {
		return []ListingVisibility{ListingVisibilityEveryone, ListingVisibilityNGOOnly}
	}
	return []ListingVisibility{ListingVisibilityEveryone}
}

// FoodType distinguishes cooked meals from packaged goods.
type FoodType string

const (
	FoodTypeCooked   FoodType = "cooked"
	FoodTypePackaged FoodType = "packaged"
)

var validFoodTypes = []FoodType{
	FoodTypeCooked,
	FoodTypePackaged,
}

// String implements fmt.Stringer.
func (f FoodType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FoodType.
func (f FoodType) IsValid() bool {
	for _, candidate := range validFoodTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFoodType converts raw input into a FoodType.
func ParseFoodType(value string) (FoodType, error) {
	for _, candidate := range validFoodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid food type %q", value)
}
