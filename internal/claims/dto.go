package claims

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// ClaimDTO is the transport shape for a claim, with its listing attached.
type ClaimDTO struct {
	ID          uuid.UUID         `json:"id"`
	ListingID   uuid.UUID         `json:"listing_id"`
	ReceiverID  uuid.UUID         `json:"receiver_id"`
	Status      enums.ClaimStatus `json:"status"`
	ReservedAt  time.Time         `json:"reserved_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Listing     *ListingSummary   `json:"listing,omitempty"`
}

// ListingSummary carries the listing fields a claim view needs.
type ListingSummary struct {
	ID          uuid.UUID           `json:"id"`
	DonorID     uuid.UUID           `json:"donor_id"`
	Title       string              `json:"title"`
	Quantity    string              `json:"quantity"`
	FoodType    enums.FoodType      `json:"food_type"`
	Lat         float64             `json:"lat"`
	Lng         float64             `json:"lng"`
	AddressText *string             `json:"address_text,omitempty"`
	Status      enums.ListingStatus `json:"status"`
}

// ListParams configures cursor pagination for claim queries.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps a page of claims and the cursor for the next page.
type ListResult struct {
	Items  []ClaimDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

func fromJoined(row ClaimWithListing) ClaimDTO {
	dto := fromClaim(row.Claim)
	if row.Listing.ID != uuid.Nil {
		dto.Listing = &ListingSummary{
			ID:          row.Listing.ID,
			DonorID:     row.Listing.DonorID,
			Title:       row.Listing.Title,
			Quantity:    row.Listing.Quantity,
			FoodType:    row.Listing.FoodType,
			Lat:         row.Listing.Lat,
			Lng:         row.Listing.Lng,
			AddressText: row.Listing.AddressText,
			Status:      row.Listing.Status,
		}
	}
	return dto
}
