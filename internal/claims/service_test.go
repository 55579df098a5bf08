package claims

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/internal/gamification"
	"github.com/foodcircle/foodcircle-backend/internal/listings"
	"github.com/foodcircle/foodcircle-backend/internal/notifications"
	"github.com/foodcircle/foodcircle-backend/pkg/config"
	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
	"github.com/foodcircle/foodcircle-backend/pkg/mailer"
	"github.com/foodcircle/foodcircle-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	reserveFn  func(ctx context.Context, listingID uuid.UUID) (int64, error)
	createFn   func(ctx context.Context, claim *models.Claim) error
	findFn     func(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	completeFn func(ctx context.Context, claimID uuid.UUID, now time.Time) (int64, error)
	statsFn    func(ctx context.Context, userID uuid.UUID, delta StatsDelta) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) ReserveListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	if s.reserveFn != nil {
		return s.reserveFn(ctx, listingID)
	}
	return 1, nil
}

func (s *stubRepo) CreateClaim(ctx context.Context, claim *models.Claim) error {
	if s.createFn != nil {
		return s.createFn(ctx, claim)
	}
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) CompleteClaim(ctx context.Context, claimID uuid.UUID, now time.Time) (int64, error) {
	if s.completeFn != nil {
		return s.completeFn(ctx, claimID, now)
	}
	return 1, nil
}

func (s *stubRepo) IncrementStats(ctx context.Context, userID uuid.UUID, delta StatsDelta) error {
	if s.statsFn != nil {
		return s.statsFn(ctx, userID, delta)
	}
	return nil
}

func (s *stubRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID, params listPageParams) ([]ClaimWithListing, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubRepo) ListByDonor(ctx context.Context, donorID uuid.UUID, params listPageParams) ([]ClaimWithListing, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (s *stubRepo) ReapExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type stubListingsRepo struct {
	listings.Repository
	findFn func(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

func (s *stubListingsRepo) WithTx(tx *gorm.DB) listings.Repository { return s }

func (s *stubListingsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type stubUsers struct {
	users   map[uuid.UUID]*models.User
	lookups int
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.lookups++
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubNotifier struct {
	notifications.Service
	inputs []notifications.NotifyInput
	err    error
}

func (s *stubNotifier) Notify(ctx context.Context, input notifications.NotifyInput) error {
	if s.err != nil {
		return s.err
	}
	s.inputs = append(s.inputs, input)
	return nil
}

type stubGamification struct {
	gamification.Service
	evaluated []uuid.UUID
	err       error
}

func (s *stubGamification) EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]gamification.BadgeDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.evaluated = append(s.evaluated, userID)
	return nil, nil
}

type stubMailer struct {
	sent []string
	err  error
}

func (s *stubMailer) Send(to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

type claimTestSetup struct {
	service  Service
	repo     *stubRepo
	listings *stubListingsRepo
	users    *stubUsers
	notifier *stubNotifier
	badges   *stubGamification
	mailer   *stubMailer
	now      time.Time
}

func newClaimTestSetup(t *testing.T) *claimTestSetup {
	t.Helper()
	setup := &claimTestSetup{
		repo:     &stubRepo{},
		listings: &stubListingsRepo{},
		users:    &stubUsers{users: map[uuid.UUID]*models.User{}},
		notifier: &stubNotifier{},
		badges:   &stubGamification{},
		mailer:   &stubMailer{},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(ServiceParams{
		TxRunner:       stubTxRunner{},
		Repo:           setup.repo,
		Listings:       setup.listings,
		Users:          setup.users,
		Notifier:       setup.notifier,
		Mailer:         setup.mailer,
		Gamification:   setup.badges,
		ReservationTTL: 2 * time.Hour,
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:            func() time.Time { return setup.now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	setup.service = svc
	return setup
}

func availableListing(donorID uuid.UUID) *models.Listing {
	return &models.Listing{
		ID:         uuid.New(),
		DonorID:    donorID,
		Title:      "Wedding leftovers",
		FoodType:   enums.FoodTypeCooked,
		Quantity:   "20 plates",
		Visibility: enums.ListingVisibilityEveryone,
		Status:     enums.ListingStatusAvailable,
	}
}

func TestReserveCreatesClaimWithTTL(t *testing.T) {
	setup := newClaimTestSetup(t)
	donorID := uuid.New()
	listing := availableListing(donorID)
	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.users.users[donorID] = &models.User{ID: donorID, Name: "Dana", Email: "dana@example.com"}

	var created *models.Claim
	setup.repo.createFn = func(ctx context.Context, claim *models.Claim) error {
		created = claim
		return nil
	}

	receiver := Receiver{ID: uuid.New(), AccountType: enums.AccountTypeHousehold}
	dto, err := setup.service.Reserve(context.Background(), receiver, listing.ID)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if created == nil {
		t.Fatal("expected claim persisted")
	}
	if created.Status != enums.ClaimStatusReserved {
		t.Fatalf("unexpected status %s", created.Status)
	}
	if !created.ExpiresAt.Equal(setup.now.Add(2 * time.Hour)) {
		t.Fatalf("unexpected expiry %s", created.ExpiresAt)
	}
	if dto.ExpiresAt != created.ExpiresAt {
		t.Fatal("dto expiry mismatch")
	}

	if len(setup.notifier.inputs) != 1 {
		t.Fatalf("expected donor notification, got %d", len(setup.notifier.inputs))
	}
	if setup.notifier.inputs[0].UserID != donorID {
		t.Fatalf("notification sent to wrong user %s", setup.notifier.inputs[0].UserID)
	}
	if len(setup.mailer.sent) != 1 || setup.mailer.sent[0] != "dana@example.com" {
		t.Fatalf("expected donor email, got %v", setup.mailer.sent)
	}
}

func TestReserveSkipsEmailWhenMailerUnconfigured(t *testing.T) {
	setup := newClaimTestSetup(t)
	donorID := uuid.New()
	listing := availableListing(donorID)
	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.users.users[donorID] = &models.User{ID: donorID, Name: "Dana", Email: "dana@example.com"}

	// Same wiring as the api binary: an unconfigured SMTP section must
	// produce a Sender the nil check in the service actually catches.
	svc, err := NewService(ServiceParams{
		TxRunner:       stubTxRunner{},
		Repo:           setup.repo,
		Listings:       setup.listings,
		Users:          setup.users,
		Notifier:       setup.notifier,
		Mailer:         mailer.New(config.SMTPConfig{}),
		Gamification:   setup.badges,
		ReservationTTL: 2 * time.Hour,
		Logger:         logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:            func() time.Time { return setup.now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	receiver := Receiver{ID: uuid.New(), AccountType: enums.AccountTypeHousehold}
	if _, err := svc.Reserve(context.Background(), receiver, listing.ID); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if len(setup.notifier.inputs) != 1 {
		t.Fatalf("expected donor notification, got %d", len(setup.notifier.inputs))
	}
	if setup.users.lookups != 0 {
		t.Fatalf("expected no donor lookup without a mailer, got %d", setup.users.lookups)
	}
}

func TestReserveLostRaceIsConflict(t *testing.T) {
	setup := newClaimTestSetup(t)
	listing := availableListing(uuid.New())
	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.repo.reserveFn = func(ctx context.Context, listingID uuid.UUID) (int64, error) {
		return 0, nil
	}

	_, err := setup.service.Reserve(context.Background(), Receiver{ID: uuid.New(), AccountType: enums.AccountTypeHousehold}, listing.ID)
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if typed.Message() != "listing unavailable" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestReserveMissingListingLooksLikeLostRace(t *testing.T) {
	setup := newClaimTestSetup(t)

	_, err := setup.service.Reserve(context.Background(), Receiver{ID: uuid.New(), AccountType: enums.AccountTypeHousehold}, uuid.New())
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeConflict || typed.Message() != "listing unavailable" {
		t.Fatalf("expected indistinguishable conflict, got %v", err)
	}
}

func TestReserveOwnListingRejected(t *testing.T) {
	setup := newClaimTestSetup(t)
	donorID := uuid.New()
	listing := availableListing(donorID)
	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}

	_, err := setup.service.Reserve(context.Background(), Receiver{ID: donorID, AccountType: enums.AccountTypeHousehold}, listing.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReserveNGOOnlyListing(t *testing.T) {
	setup := newClaimTestSetup(t)
	listing := availableListing(uuid.New())
	listing.Visibility = enums.ListingVisibilityNGOOnly
	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}

	_, err := setup.service.Reserve(context.Background(), Receiver{ID: uuid.New(), AccountType: enums.AccountTypeHousehold}, listing.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for household, got %v", err)
	}

	if _, err := setup.service.Reserve(context.Background(), Receiver{ID: uuid.New(), AccountType: enums.AccountTypeNGO}, listing.ID); err != nil {
		t.Fatalf("expected ngo reserve to succeed, got %v", err)
	}
}

func TestReserveSurvivesNotificationFailure(t *testing.T) {
	setup := newClaimTestSetup(t)
	listing := availableListing(uuid.New())
	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.notifier.err = errors.New("queue down")
	setup.mailer.err = errors.New("smtp down")

	if _, err := setup.service.Reserve(context.Background(), Receiver{ID: uuid.New(), AccountType: enums.AccountTypeHousehold}, listing.ID); err != nil {
		t.Fatalf("reserve should survive notification failure: %v", err)
	}
}

func TestCompleteMovesStatsAndBadges(t *testing.T) {
	setup := newClaimTestSetup(t)
	donorID := uuid.New()
	receiverID := uuid.New()
	listing := availableListing(donorID)
	listing.Status = enums.ListingStatusReserved
	claim := &models.Claim{
		ID:         uuid.New(),
		ListingID:  listing.ID,
		ReceiverID: receiverID,
		Status:     enums.ClaimStatusReserved,
		ReservedAt: setup.now.Add(-time.Hour),
		ExpiresAt:  setup.now.Add(time.Hour),
	}

	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.repo.findFn = func(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
		return claim, nil
	}

	deltas := map[uuid.UUID]StatsDelta{}
	setup.repo.statsFn = func(ctx context.Context, userID uuid.UUID, delta StatsDelta) error {
		deltas[userID] = delta
		return nil
	}

	dto, err := setup.service.Complete(context.Background(), donorID, claim.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.Status != enums.ClaimStatusCompleted || dto.CompletedAt == nil {
		t.Fatalf("unexpected dto %+v", dto)
	}

	donorDelta := deltas[donorID]
	if donorDelta.DonationsMade != 1 || donorDelta.ImpactPoints != 10 || donorDelta.ClaimsReceived != 0 {
		t.Fatalf("unexpected donor delta %+v", donorDelta)
	}
	receiverDelta := deltas[receiverID]
	if receiverDelta.ClaimsReceived != 1 || receiverDelta.ImpactPoints != 5 || receiverDelta.DonationsMade != 0 {
		t.Fatalf("unexpected receiver delta %+v", receiverDelta)
	}

	if len(setup.badges.evaluated) != 2 {
		t.Fatalf("expected badge evaluation for both parties, got %v", setup.badges.evaluated)
	}
	if len(setup.notifier.inputs) != 1 || setup.notifier.inputs[0].UserID != receiverID {
		t.Fatalf("expected receiver notification, got %+v", setup.notifier.inputs)
	}
}

func TestCompleteByNonDonorForbidden(t *testing.T) {
	setup := newClaimTestSetup(t)
	listing := availableListing(uuid.New())
	claim := &models.Claim{ID: uuid.New(), ListingID: listing.ID, ReceiverID: uuid.New(), Status: enums.ClaimStatusReserved}

	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.repo.findFn = func(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
		return claim, nil
	}

	_, err := setup.service.Complete(context.Background(), uuid.New(), claim.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCompleteNotReservedIsStateConflict(t *testing.T) {
	setup := newClaimTestSetup(t)
	donorID := uuid.New()
	listing := availableListing(donorID)
	claim := &models.Claim{ID: uuid.New(), ListingID: listing.ID, ReceiverID: uuid.New(), Status: enums.ClaimStatusCompleted}

	setup.listings.findFn = func(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
		return listing, nil
	}
	setup.repo.findFn = func(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
		return claim, nil
	}
	setup.repo.completeFn = func(ctx context.Context, claimID uuid.UUID, now time.Time) (int64, error) {
		return 0, nil
	}

	_, err := setup.service.Complete(context.Background(), donorID, claim.ID)
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if typed.Message() != "claim not reserved" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestCompleteMissingClaimNotFound(t *testing.T) {
	setup := newClaimTestSetup(t)
	_, err := setup.service.Complete(context.Background(), uuid.New(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
