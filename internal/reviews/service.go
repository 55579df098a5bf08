package reviews

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/internal/claims"
	"github.com/foodcircle/foodcircle-backend/internal/listings"
	"github.com/foodcircle/foodcircle-backend/pkg/db"
	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
	"github.com/foodcircle/foodcircle-backend/pkg/pagination"
)

// Service defines review submission and rating lookups.
type Service interface {
	Submit(ctx context.Context, reviewerID uuid.UUID, input SubmitReviewInput) (*ReviewDTO, error)
	Rating(ctx context.Context, userID uuid.UUID) (*RatingDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
}

// ServiceParams packages the review service dependencies.
type ServiceParams struct {
	Repo     Repository
	Claims   claims.Repository
	Listings listings.Repository
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	claims   claims.Repository
	listings listings.Repository
	logg     *logger.Logger
}

// NewService wires the review service dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reviews repository required")
	}
	if params.Claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "claims repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:     params.Repo,
		claims:   params.Claims,
		listings: params.Listings,
		logg:     params.Logger,
	}, nil
}

// Submit records a review for a completed pickup. Only the two parties of the
// claim may review, each exactly once, and always about the counterparty.
func (s *service) Submit(ctx context.Context, reviewerID uuid.UUID, input SubmitReviewInput) (*ReviewDTO, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer id required")
	}
	if input.ClaimID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	claim, err := s.claims.FindByID(ctx, input.ClaimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
	}
	if claim.Status != enums.ClaimStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "claim not completed")
	}

	listing, err := s.listings.FindByID(ctx, claim.ListingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	var revieweeID uuid.UUID
	switch reviewerID {
	case claim.ReceiverID:
		revieweeID = listing.DonorID
	case listing.DonorID:
		revieweeID = claim.ReceiverID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only claim participants can review")
	}

	review := &models.Review{
		ID:         uuid.New(),
		ClaimID:    claim.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	s.logg.Info(s.logg.WithUserID(ctx, reviewerID.String()), "review submitted")
	dto := fromModel(*review)
	return &dto, nil
}

func (s *service) Rating(ctx context.Context, userID uuid.UUID) (*RatingDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	average, count, err := s.repo.AverageRating(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average rating")
	}
	return &RatingDTO{UserID: userID, Average: average, Count: count}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listPageParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListForUser(ctx, userID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	items := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromModel(row))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}
