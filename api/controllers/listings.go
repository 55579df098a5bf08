package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/api/middleware"
	"github.com/foodcircle/foodcircle-backend/api/responses"
	"github.com/foodcircle/foodcircle-backend/api/validators"
	"github.com/foodcircle/foodcircle-backend/internal/claims"
	"github.com/foodcircle/foodcircle-backend/internal/listings"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

type createListingRequest struct {
	Title       string     `json:"title" validate:"required"`
	Notes       *string    `json:"notes,omitempty"`
	FoodType    string     `json:"food_type" validate:"required"`
	Veg         bool       `json:"veg"`
	Cuisine     *string    `json:"cuisine,omitempty"`
	PreparedAt  *time.Time `json:"prepared_at,omitempty"`
	PackagedAt  *time.Time `json:"packaged_at,omitempty"`
	ExpiryAt    *time.Time `json:"expiry_at,omitempty"`
	Quantity    string     `json:"quantity" validate:"required"`
	PhotoURL    *string    `json:"photo_url,omitempty"`
	Visibility  string     `json:"visibility,omitempty"`
	Lat         float64    `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng         float64    `json:"lng" validate:"required,gte=-180,lte=180"`
	AddressText *string    `json:"address_text,omitempty"`
}

func (p createListingRequest) toInput() (listings.CreateListingInput, error) {
	foodType, err := enums.ParseFoodType(p.FoodType)
	if err != nil {
		return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid food type")
	}

	visibility := enums.ListingVisibilityEveryone
	if p.Visibility != "" {
		visibility, err = enums.ParseListingVisibility(p.Visibility)
		if err != nil {
			return listings.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid visibility")
		}
	}

	return listings.CreateListingInput{
		Title:       p.Title,
		Notes:       p.Notes,
		FoodType:    foodType,
		Veg:         p.Veg,
		Cuisine:     p.Cuisine,
		PreparedAt:  p.PreparedAt,
		PackagedAt:  p.PackagedAt,
		ExpiryAt:    p.ExpiryAt,
		Quantity:    p.Quantity,
		PhotoURL:    p.PhotoURL,
		Visibility:  visibility,
		Lat:         p.Lat,
		Lng:         p.Lng,
		AddressText: p.AddressText,
	}, nil
}

func parsePageQuery(r *http.Request) (int, string, error) {
	limit := 0
	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil || value <= 0 {
			return 0, "", pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		limit = value
	}
	return limit, strings.TrimSpace(r.URL.Query().Get("cursor")), nil
}

// CreateListing publishes a food listing for the authenticated donor.
func CreateListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		donorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Create(r.Context(), donorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// ListAvailableListings returns the browse feed scoped to the viewer's audience.
func ListAvailableListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		viewerType, err := enums.ParseAccountType(middleware.AccountTypeFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "account context missing"))
			return
		}

		limit, cursor, err := parsePageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListAvailable(r.Context(), viewerType, listings.ListParams{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListMyListings returns the authenticated donor's own listings.
func ListMyListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		donorID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, cursor, err := parsePageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByDonor(r.Context(), donorID, listings.ListParams{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetListing fetches a single listing by id.
func GetListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := uuid.Parse(chi.URLParam(r, "listingId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}

		listing, err := svc.Get(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// ClaimListing reserves an available listing for the authenticated receiver.
func ClaimListing(svc claims.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "claims service unavailable"))
			return
		}

		receiverID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountType, err := enums.ParseAccountType(middleware.AccountTypeFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "account context missing"))
			return
		}

		listingID, err := uuid.Parse(chi.URLParam(r, "listingId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id"))
			return
		}

		claim, err := svc.Reserve(r.Context(), claims.Receiver{ID: receiverID, AccountType: accountType}, listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, claim)
	}
}
