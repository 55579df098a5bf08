package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/pkg/db"
	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reviews_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Review{}); err != nil {
		t.Fatalf("migrate reviews table: %v", err)
	}
	return conn
}

func seedReview(t *testing.T, conn *gorm.DB, revieweeID uuid.UUID, rating int) models.Review {
	t.Helper()
	review := models.Review{
		ID:         uuid.New(),
		ClaimID:    uuid.New(),
		ReviewerID: uuid.New(),
		RevieweeID: revieweeID,
		Rating:     rating,
	}
	if err := conn.Create(&review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return review
}

func TestCreateRejectsSecondReviewPerClaim(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	claimID := uuid.New()
	reviewerID := uuid.New()

	first := models.Review{
		ID:         uuid.New(),
		ClaimID:    claimID,
		ReviewerID: reviewerID,
		RevieweeID: uuid.New(),
		Rating:     5,
	}
	if err := repo.Create(ctx, &first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := first
	dup.ID = uuid.New()
	err := repo.Create(ctx, &dup)
	if err == nil {
		t.Fatal("expected duplicate review to fail")
	}
	if !db.IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// the counterparty may still review the same claim
	other := first
	other.ID = uuid.New()
	other.ReviewerID = uuid.New()
	if err := repo.Create(ctx, &other); err != nil {
		t.Fatalf("counterparty review: %v", err)
	}
}

func TestAverageRating(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	revieweeID := uuid.New()
	seedReview(t, conn, revieweeID, 4)
	seedReview(t, conn, revieweeID, 5)
	seedReview(t, conn, uuid.New(), 1)

	average, count, err := repo.AverageRating(ctx, revieweeID)
	if err != nil {
		t.Fatalf("average rating: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 reviews, got %d", count)
	}
	if average != 4.5 {
		t.Fatalf("expected average 4.5, got %f", average)
	}

	average, count, err = repo.AverageRating(ctx, uuid.New())
	if err != nil {
		t.Fatalf("average rating for unreviewed user: %v", err)
	}
	if average != 0 || count != 0 {
		t.Fatalf("expected zero rating, got %f/%d", average, count)
	}
}

func TestListForUserScopesAndPaginates(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	revieweeID := uuid.New()
	for i := 0; i < 3; i++ {
		seedReview(t, conn, revieweeID, 5)
	}
	seedReview(t, conn, uuid.New(), 2)

	rows, next, err := repo.ListForUser(ctx, revieweeID, listPageParams{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(rows) != 2 || next == nil {
		t.Fatalf("expected full first page with cursor, got %d rows", len(rows))
	}

	rest, last, err := repo.ListForUser(ctx, revieweeID, listPageParams{Limit: 2, Cursor: next})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(rest) != 1 || last != nil {
		t.Fatalf("expected final page of 1, got %d rows", len(rest))
	}
	for _, row := range append(rows, rest...) {
		if row.RevieweeID != revieweeID {
			t.Fatalf("review for wrong user leaked: %s", row.RevieweeID)
		}
	}
}
