package gamification

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/internal/notifications"
	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

type fakeRepo struct {
	getStatsFn   func(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	listCatalog  func(ctx context.Context) ([]models.Badge, error)
	listEarnedFn func(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error)
	awardFn      func(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) (bool, error)
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	if f.getStatsFn != nil {
		return f.getStatsFn(ctx, userID)
	}
	return &models.UserStats{UserID: userID}, nil
}

func (f *fakeRepo) ListCatalog(ctx context.Context) ([]models.Badge, error) {
	if f.listCatalog != nil {
		return f.listCatalog(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) ListEarned(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	if f.listEarnedFn != nil {
		return f.listEarnedFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeRepo) AwardBadge(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) (bool, error) {
	if f.awardFn != nil {
		return f.awardFn(ctx, userID, badgeID, at)
	}
	return true, nil
}

type fakeNotifier struct {
	notifications.Service
	notified []notifications.NotifyInput
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, input notifications.NotifyInput) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, input)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func catalogFixture() []models.Badge {
	return []models.Badge{
		{ID: uuid.New(), Slug: "first-donation", Name: "First Donation", RequiredStat: enums.BadgeStatDonationsMade, RequiredValue: 1},
		{ID: uuid.New(), Slug: "5-donations", Name: "Generous Giver", RequiredStat: enums.BadgeStatDonationsMade, RequiredValue: 5},
		{ID: uuid.New(), Slug: "100-points", Name: "Century Club", RequiredStat: enums.BadgeStatImpactPoints, RequiredValue: 100},
	}
}

func TestEvaluateBadgesAwardsMetThresholds(t *testing.T) {
	catalog := catalogFixture()
	userID := uuid.New()

	var awardedIDs []uuid.UUID
	repo := &fakeRepo{
		getStatsFn: func(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
			return &models.UserStats{UserID: id, DonationsMade: 5, ImpactPoints: 50}, nil
		},
		listCatalog: func(ctx context.Context) ([]models.Badge, error) { return catalog, nil },
		awardFn: func(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) (bool, error) {
			awardedIDs = append(awardedIDs, badgeID)
			return true, nil
		},
	}
	notifier := &fakeNotifier{}

	svc, err := NewService(repo, notifier, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	awarded, err := svc.EvaluateBadges(context.Background(), userID)
	if err != nil {
		t.Fatalf("evaluate badges: %v", err)
	}
	if len(awarded) != 2 {
		t.Fatalf("expected 2 badges awarded, got %d", len(awarded))
	}
	if awarded[0].Slug != "first-donation" || awarded[1].Slug != "5-donations" {
		t.Fatalf("unexpected awards %+v", awarded)
	}
	if len(awardedIDs) != 2 {
		t.Fatalf("expected 2 repo awards, got %d", len(awardedIDs))
	}
	if len(notifier.notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.notified))
	}
	if notifier.notified[0].Type != enums.NotificationTypeBadge {
		t.Fatalf("unexpected notification type %s", notifier.notified[0].Type)
	}
}

func TestEvaluateBadgesSkipsAlreadyEarned(t *testing.T) {
	catalog := catalogFixture()
	userID := uuid.New()

	repo := &fakeRepo{
		getStatsFn: func(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
			return &models.UserStats{UserID: id, DonationsMade: 5}, nil
		},
		listCatalog: func(ctx context.Context) ([]models.Badge, error) { return catalog, nil },
		listEarnedFn: func(ctx context.Context, id uuid.UUID) ([]models.UserBadge, error) {
			return []models.UserBadge{{UserID: id, BadgeID: catalog[0].ID}}, nil
		},
	}
	notifier := &fakeNotifier{}

	svc, _ := NewService(repo, notifier, testLogger())
	awarded, err := svc.EvaluateBadges(context.Background(), userID)
	if err != nil {
		t.Fatalf("evaluate badges: %v", err)
	}
	if len(awarded) != 1 || awarded[0].Slug != "5-donations" {
		t.Fatalf("expected only the unearned badge, got %+v", awarded)
	}
}

func TestEvaluateBadgesConcurrentAwardNotDoubleCounted(t *testing.T) {
	catalog := catalogFixture()[:1]
	repo := &fakeRepo{
		getStatsFn: func(ctx context.Context, id uuid.UUID) (*models.UserStats, error) {
			return &models.UserStats{UserID: id, DonationsMade: 1}, nil
		},
		listCatalog: func(ctx context.Context) ([]models.Badge, error) { return catalog, nil },
		awardFn: func(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) (bool, error) {
			return false, nil // another request won the insert race
		},
	}
	notifier := &fakeNotifier{}

	svc, _ := NewService(repo, notifier, testLogger())
	awarded, err := svc.EvaluateBadges(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("evaluate badges: %v", err)
	}
	if len(awarded) != 0 {
		t.Fatalf("expected no awards, got %+v", awarded)
	}
	if len(notifier.notified) != 0 {
		t.Fatal("expected no notifications for lost race")
	}
}

func TestStatsReturnsZeroRowForNewUser(t *testing.T) {
	svc, _ := NewService(&fakeRepo{}, &fakeNotifier{}, testLogger())
	userID := uuid.New()

	stats, err := svc.Stats(context.Background(), userID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.UserID != userID || stats.DonationsMade != 0 || stats.ImpactPoints != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestBadgesJoinsCatalog(t *testing.T) {
	catalog := catalogFixture()
	awardedAt := time.Now().UTC()
	repo := &fakeRepo{
		listCatalog: func(ctx context.Context) ([]models.Badge, error) { return catalog, nil },
		listEarnedFn: func(ctx context.Context, id uuid.UUID) ([]models.UserBadge, error) {
			return []models.UserBadge{{UserID: id, BadgeID: catalog[2].ID, AwardedAt: awardedAt}}, nil
		},
	}

	svc, _ := NewService(repo, &fakeNotifier{}, testLogger())
	badges, err := svc.Badges(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("expected 1 badge, got %d", len(badges))
	}
	if badges[0].Slug != "100-points" || !badges[0].AwardedAt.Equal(awardedAt) {
		t.Fatalf("unexpected badge %+v", badges[0])
	}
}

func TestServiceRejectsNilUser(t *testing.T) {
	svc, _ := NewService(&fakeRepo{}, &fakeNotifier{}, testLogger())

	if _, err := svc.Stats(context.Background(), uuid.Nil); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.EvaluateBadges(context.Background(), uuid.Nil); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
