package listings

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// CreateListingInput carries everything needed to publish a listing.
type CreateListingInput struct {
	Title       string
	Notes       *string
	FoodType    enums.FoodType
	Veg         bool
	Cuisine     *string
	PreparedAt  *time.Time
	PackagedAt  *time.Time
	ExpiryAt    *time.Time
	Quantity    string
	PhotoURL    *string
	Visibility  enums.ListingVisibility
	Lat         float64
	Lng         float64
	AddressText *string
}

// ListingDTO is the transport shape for a listing, including derived map links.
type ListingDTO struct {
	ID            uuid.UUID               `json:"id"`
	DonorID       uuid.UUID               `json:"donor_id"`
	Title         string                  `json:"title"`
	Notes         *string                 `json:"notes,omitempty"`
	FoodType      enums.FoodType          `json:"food_type"`
	Veg           bool                    `json:"veg"`
	Cuisine       *string                 `json:"cuisine,omitempty"`
	PreparedAt    *time.Time              `json:"prepared_at,omitempty"`
	PackagedAt    *time.Time              `json:"packaged_at,omitempty"`
	ExpiryAt      *time.Time              `json:"expiry_at,omitempty"`
	Quantity      string                  `json:"quantity"`
	PhotoURL      *string                 `json:"photo_url,omitempty"`
	Visibility    enums.ListingVisibility `json:"visibility"`
	Lat           float64                 `json:"lat"`
	Lng           float64                 `json:"lng"`
	AddressText   *string                 `json:"address_text,omitempty"`
	Status        enums.ListingStatus     `json:"status"`
	StaticMapURL  string                  `json:"static_map_url,omitempty"`
	DirectionsURL string                  `json:"directions_url"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// ListParams configures cursor pagination for listing queries.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps a page of listings and the cursor for the next page.
type ListResult struct {
	Items  []ListingDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

func (s *service) fromModel(listing *models.Listing) *ListingDTO {
	if listing == nil {
		return nil
	}
	dto := &ListingDTO{
		ID:            listing.ID,
		DonorID:       listing.DonorID,
		Title:         listing.Title,
		Notes:         listing.Notes,
		FoodType:      listing.FoodType,
		Veg:           listing.Veg,
		Cuisine:       listing.Cuisine,
		PreparedAt:    listing.PreparedAt,
		PackagedAt:    listing.PackagedAt,
		ExpiryAt:      listing.ExpiryAt,
		Quantity:      listing.Quantity,
		PhotoURL:      listing.PhotoURL,
		Visibility:    listing.Visibility,
		Lat:           listing.Lat,
		Lng:           listing.Lng,
		AddressText:   listing.AddressText,
		Status:        listing.Status,
		DirectionsURL: s.directions(listing.Lat, listing.Lng),
		CreatedAt:     listing.CreatedAt,
		UpdatedAt:     listing.UpdatedAt,
	}
	if s.geocoder != nil {
		dto.StaticMapURL = s.geocoder.StaticMapURL(listing.Lat, listing.Lng)
	}
	return dto
}
