package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/internal/gamification"
	"github.com/foodcircle/foodcircle-backend/internal/listings"
	"github.com/foodcircle/foodcircle-backend/internal/notifications"
	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
	"github.com/foodcircle/foodcircle-backend/pkg/mailer"
	"github.com/foodcircle/foodcircle-backend/pkg/pagination"
)

const (
	donorPointsPerDonation = 10
	receiverPointsPerClaim = 5
)

// TxRunner executes work inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Receiver identifies the authenticated user reserving a listing.
type Receiver struct {
	ID          uuid.UUID
	AccountType enums.AccountType
}

// Service defines the claim lifecycle operations.
type Service interface {
	Reserve(ctx context.Context, receiver Receiver, listingID uuid.UUID) (*ClaimDTO, error)
	Complete(ctx context.Context, donorID, claimID uuid.UUID) (*ClaimDTO, error)
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, params ListParams) (*ListResult, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params ListParams) (*ListResult, error)
}

// ServiceParams packages the claim service dependencies.
type ServiceParams struct {
	TxRunner       TxRunner
	Repo           Repository
	Listings       listings.Repository
	Users          userFinder
	Notifier       notifications.Service
	Mailer         mailer.Sender
	Gamification   gamification.Service
	ReservationTTL time.Duration
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	tx           TxRunner
	repo         Repository
	listings     listings.Repository
	users        userFinder
	notifier     notifications.Service
	mailer       mailer.Sender
	gamification gamification.Service
	ttl          time.Duration
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the claim lifecycle dependencies. The mailer may be nil;
// claim emails are then skipped.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "claims repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if params.Gamification == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gamification service required")
	}
	if params.ReservationTTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reservation ttl must be positive")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:           params.TxRunner,
		repo:         params.Repo,
		listings:     params.Listings,
		users:        params.Users,
		notifier:     params.Notifier,
		mailer:       params.Mailer,
		gamification: params.Gamification,
		ttl:          params.ReservationTTL,
		logg:         params.Logger,
		now:          now,
	}, nil
}

// Reserve places an exclusive hold on an available listing. The status flip
// on the listing row is the concurrency gate: only one reservation can win.
func (s *service) Reserve(ctx context.Context, receiver Receiver, listingID uuid.UUID) (*ClaimDTO, error) {
	if receiver.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver id required")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	var (
		claim   *models.Claim
		listing *models.Listing
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listingRepo := s.listings.WithTx(tx)

		var err error
		listing, err = listingRepo.FindByID(ctx, listingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// indistinguishable from a lost race on purpose
				return pkgerrors.New(pkgerrors.CodeConflict, "listing unavailable")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}

		if listing.DonorID == receiver.ID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot claim your own listing")
		}
		if listing.Visibility == enums.ListingVisibilityNGOOnly && receiver.AccountType != enums.AccountTypeNGO {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing restricted to NGO accounts")
		}

		rows, err := repo.ReserveListing(ctx, listingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve listing")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "listing unavailable")
		}

		now := s.now()
		claim = &models.Claim{
			ID:         uuid.New(),
			ListingID:  listingID,
			ReceiverID: receiver.ID,
			Status:     enums.ClaimStatusReserved,
			ReservedAt: now,
			ExpiresAt:  now.Add(s.ttl),
		}
		return repo.CreateClaim(ctx, claim)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve claim")
	}

	s.notifyDonorOfClaim(ctx, listing, claim)

	return dtoPtr(fromClaim(*claim)), nil
}

// Complete confirms a pickup. The donor is the only party allowed to do so,
// and stats move in the same transaction as the claim flip.
func (s *service) Complete(ctx context.Context, donorID, claimID uuid.UUID) (*ClaimDTO, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	if claimID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim id required")
	}

	var (
		claim   *models.Claim
		listing *models.Listing
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listingRepo := s.listings.WithTx(tx)

		var err error
		claim, err = repo.FindByID(ctx, claimID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
		}

		listing, err = listingRepo.FindByID(ctx, claim.ListingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		if listing.DonorID != donorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the donor can complete a claim")
		}

		now := s.now()
		rows, err := repo.CompleteClaim(ctx, claimID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete claim")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "claim not reserved")
		}
		claim.Status = enums.ClaimStatusCompleted
		claim.CompletedAt = &now

		if err := repo.IncrementStats(ctx, listing.DonorID, StatsDelta{
			DonationsMade: 1,
			ImpactPoints:  donorPointsPerDonation,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update donor stats")
		}
		if err := repo.IncrementStats(ctx, claim.ReceiverID, StatsDelta{
			ClaimsReceived: 1,
			ImpactPoints:   receiverPointsPerClaim,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update receiver stats")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete claim")
	}

	// badge evaluation rides outside the transaction; a failure here never
	// rolls back the completion
	for _, userID := range []uuid.UUID{listing.DonorID, claim.ReceiverID} {
		if _, err := s.gamification.EvaluateBadges(ctx, userID); err != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "badge evaluation failed: "+err.Error())
		}
	}

	if err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:           claim.ReceiverID,
		Type:             enums.NotificationTypeClaim,
		Title:            "Pickup confirmed",
		Message:          fmt.Sprintf("The donor confirmed your pickup of %q.", listing.Title),
		RelatedListingID: &listing.ID,
		RelatedUserID:    &listing.DonorID,
	}); err != nil {
		s.logg.Warn(ctx, "completion notification failed: "+err.Error())
	}

	return dtoPtr(fromClaim(*claim)), nil
}

func (s *service) ListByReceiver(ctx context.Context, receiverID uuid.UUID, params ListParams) (*ListResult, error) {
	if receiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver id required")
	}

	query, err := pageParams(params)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListByReceiver(ctx, receiverID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list claims")
	}
	return page(rows, next), nil
}

func (s *service) ListByDonor(ctx context.Context, donorID uuid.UUID, params ListParams) (*ListResult, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}

	query, err := pageParams(params)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListByDonor(ctx, donorID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list incoming claims")
	}
	return page(rows, next), nil
}

// notifyDonorOfClaim is best effort: the reservation already committed.
func (s *service) notifyDonorOfClaim(ctx context.Context, listing *models.Listing, claim *models.Claim) {
	if err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:           listing.DonorID,
		Type:             enums.NotificationTypeClaim,
		Title:            "Your listing was claimed",
		Message:          fmt.Sprintf("Someone reserved %q. The hold expires at %s.", listing.Title, claim.ExpiresAt.Format(time.RFC3339)),
		RelatedListingID: &listing.ID,
		RelatedUserID:    &claim.ReceiverID,
	}); err != nil {
		s.logg.Warn(s.logg.WithListingID(ctx, listing.ID.String()), "claim notification failed: "+err.Error())
	}

	if s.mailer == nil {
		return
	}
	donor, err := s.users.FindByID(ctx, listing.DonorID)
	if err != nil {
		s.logg.Warn(ctx, "load donor for claim email failed: "+err.Error())
		return
	}
	subject := "Your listing was claimed"
	body := fmt.Sprintf("Hi %s,\n\nYour listing %q has been reserved. Please keep it ready for pickup before %s.\n",
		donor.Name, listing.Title, claim.ExpiresAt.Format(time.RFC1123))
	if err := s.mailer.Send(donor.Email, subject, body); err != nil {
		s.logg.Warn(ctx, "claim email failed: "+err.Error())
	}
}

func pageParams(params ListParams) (listPageParams, error) {
	query := listPageParams{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return listPageParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

func page(rows []ClaimWithListing, next *pagination.Cursor) *ListResult {
	items := make([]ClaimDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, fromJoined(row))
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}
}

func fromClaim(claim models.Claim) ClaimDTO {
	return ClaimDTO{
		ID:          claim.ID,
		ListingID:   claim.ListingID,
		ReceiverID:  claim.ReceiverID,
		Status:      claim.Status,
		ReservedAt:  claim.ReservedAt,
		ExpiresAt:   claim.ExpiresAt,
		CompletedAt: claim.CompletedAt,
	}
}

func dtoPtr(dto ClaimDTO) *ClaimDTO {
	return &dto
}
