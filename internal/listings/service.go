package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
	"github.com/foodcircle/foodcircle-backend/pkg/maps"
	"github.com/foodcircle/foodcircle-backend/pkg/pagination"
)

// Geocoder is the slice of the maps client the listings service consumes.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
	StaticMapURL(lat, lng float64) string
}

// Service defines listing publish/browse operations.
type Service interface {
	Create(ctx context.Context, donorID uuid.UUID, input CreateListingInput) (*ListingDTO, error)
	ListAvailable(ctx context.Context, viewerType enums.AccountType, params ListParams) (*ListResult, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params ListParams) (*ListResult, error)
	Get(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error)
}

type service struct {
	repo     Repository
	geocoder Geocoder
	logg     *logger.Logger
}

// NewService wires listings dependencies. The geocoder may be nil; map
// enrichment is then skipped.
func NewService(repo Repository, geocoder Geocoder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, geocoder: geocoder, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, donorID uuid.UUID, input CreateListingInput) (*ListingDTO, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Quantity) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity required")
	}
	if !input.FoodType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid food type")
	}
	if input.Visibility == "" {
		input.Visibility = enums.ListingVisibilityEveryone
	}
	if !input.Visibility.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility")
	}
	if input.Lat < -90 || input.Lat > 90 || input.Lng < -180 || input.Lng > 180 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coordinates out of range")
	}
	if input.ExpiryAt != nil && !input.ExpiryAt.After(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	addressText := input.AddressText
	if addressText == nil && s.geocoder != nil {
		// best effort; the listing is published regardless
		if resolved, err := s.geocoder.ReverseGeocode(ctx, input.Lat, input.Lng); err != nil {
			s.logg.Warn(ctx, "reverse geocode failed: "+err.Error())
		} else if resolved != "" {
			addressText = &resolved
		}
	}

	listing := &models.Listing{
		ID:          uuid.New(),
		DonorID:     donorID,
		Title:       strings.TrimSpace(input.Title),
		Notes:       input.Notes,
		FoodType:    input.FoodType,
		Veg:         input.Veg,
		Cuisine:     input.Cuisine,
		PreparedAt:  input.PreparedAt,
		PackagedAt:  input.PackagedAt,
		ExpiryAt:    input.ExpiryAt,
		Quantity:    strings.TrimSpace(input.Quantity),
		PhotoURL:    input.PhotoURL,
		Visibility:  input.Visibility,
		Lat:         input.Lat,
		Lng:         input.Lng,
		AddressText: addressText,
		Status:      enums.ListingStatusAvailable,
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}

	s.logg.Info(s.logg.WithListingID(ctx, listing.ID.String()), "listing published")
	return s.fromModel(listing), nil
}

func (s *service) ListAvailable(ctx context.Context, viewerType enums.AccountType, params ListParams) (*ListResult, error) {
	if !viewerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account type")
	}

	query := listAvailableParams{
		Visibilities: enums.VisibleTo(viewerType),
		Limit:        params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListAvailable(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return s.page(rows, next), nil
}

func (s *service) ListByDonor(ctx context.Context, donorID uuid.UUID, params ListParams) (*ListResult, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}

	query := listPageParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByDonor(ctx, donorID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list donor listings")
	}
	return s.page(rows, next), nil
}

func (s *service) Get(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return s.fromModel(listing), nil
}

func (s *service) page(rows []models.Listing, next *pagination.Cursor) *ListResult {
	items := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *s.fromModel(&rows[i]))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}
}

func (s *service) directions(lat, lng float64) string {
	return maps.DirectionsURL(lat, lng)
}
