package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
	"github.com/foodcircle/foodcircle-backend/pkg/pagination"
)

// Repository exposes persistence helpers for claims and the listing/stat
// transitions that ride along with them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ReserveListing(ctx context.Context, listingID uuid.UUID) (int64, error)
	CreateClaim(ctx context.Context, claim *models.Claim) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	CompleteClaim(ctx context.Context, claimID uuid.UUID, now time.Time) (int64, error)
	IncrementStats(ctx context.Context, userID uuid.UUID, delta StatsDelta) error
	ListByReceiver(ctx context.Context, receiverID uuid.UUID, params listPageParams) ([]ClaimWithListing, *pagination.Cursor, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, params listPageParams) ([]ClaimWithListing, *pagination.Cursor, error)
	ReapExpired(ctx context.Context, now time.Time) (int64, error)
}

// StatsDelta describes the counter increments applied after a completion.
type StatsDelta struct {
	DonationsMade  int
	ClaimsReceived int
	ImpactPoints   int
}

// ClaimWithListing pairs a claim row with its parent listing.
type ClaimWithListing struct {
	Claim   models.Claim
	Listing models.Listing
}

type listPageParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a claims repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// ReserveListing flips an AVAILABLE listing to RESERVED. Zero rows affected
// means the listing is missing, expired, or already held by someone else.
func (r *repositoryImpl) ReserveListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ?", listingID, enums.ListingStatusAvailable).
		UpdateColumn("status", enums.ListingStatusReserved)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) CreateClaim(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// CompleteClaim flips a RESERVED claim to COMPLETED. Zero rows affected means
// the claim is missing or not in the reservable state anymore.
func (r *repositoryImpl) CompleteClaim(ctx context.Context, claimID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ? AND status = ?", claimID, enums.ClaimStatusReserved).
		UpdateColumns(map[string]any{
			"status":       enums.ClaimStatusCompleted,
			"completed_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementStats upserts the stats row and adds the delta to each counter.
func (r *repositoryImpl) IncrementStats(ctx context.Context, userID uuid.UUID, delta StatsDelta) error {
	now := time.Now().UTC()
	row := models.UserStats{
		UserID:         userID,
		DonationsMade:  delta.DonationsMade,
		ClaimsReceived: delta.ClaimsReceived,
		ImpactPoints:   delta.ImpactPoints,
		UpdatedAt:      now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"donations_made":  gorm.Expr("user_stats.donations_made + ?", delta.DonationsMade),
			"claims_received": gorm.Expr("user_stats.claims_received + ?", delta.ClaimsReceived),
			"impact_points":   gorm.Expr("user_stats.impact_points + ?", delta.ImpactPoints),
			"updated_at":      now,
		}),
	}).Create(&row).Error
}

func (r *repositoryImpl) ListByReceiver(ctx context.Context, receiverID uuid.UUID, params listPageParams) ([]ClaimWithListing, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Claim{}).Where("receiver_id = ?", receiverID)
	if params.Cursor != nil {
		query = query.Where("(claims.created_at, claims.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Claim
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		overflow := rows[normalized]
		rows = rows[:normalized]
		next = &pagination.Cursor{CreatedAt: overflow.CreatedAt, ID: overflow.ID}
	}

	joined, err := r.attachListings(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	return joined, next, nil
}

func (r *repositoryImpl) ListByDonor(ctx context.Context, donorID uuid.UUID, params listPageParams) ([]ClaimWithListing, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Claim{}).
		Joins("JOIN listings ON listings.id = claims.listing_id").
		Where("listings.donor_id = ?", donorID)
	if params.Cursor != nil {
		query = query.Where("(claims.created_at, claims.id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Claim
	if err := query.Order("claims.created_at DESC, claims.id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		overflow := rows[normalized]
		rows = rows[:normalized]
		next = &pagination.Cursor{CreatedAt: overflow.CreatedAt, ID: overflow.ID}
	}

	joined, err := r.attachListings(ctx, rows)
	if err != nil {
		return nil, nil, err
	}
	return joined, next, nil
}

func (r *repositoryImpl) attachListings(ctx context.Context, rows []models.Claim) ([]ClaimWithListing, error) {
	if len(rows) == 0 {
		return []ClaimWithListing{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, claim := range rows {
		ids = append(ids, claim.ListingID)
	}

	var listings []models.Listing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Listing, len(listings))
	for _, listing := range listings {
		byID[listing.ID] = listing
	}

	joined := make([]ClaimWithListing, 0, len(rows))
	for _, claim := range rows {
		joined = append(joined, ClaimWithListing{Claim: claim, Listing: byID[claim.ListingID]})
	}
	return joined, nil
}

// ReapExpired expires overdue reservations and releases their listings back
// to AVAILABLE. Runs inside its own transaction.
func (r *repositoryImpl) ReapExpired(ctx context.Context, now time.Time) (int64, error) {
	var reaped int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overdue []models.Claim
		if err := tx.Where("status = ? AND expires_at < ?", enums.ClaimStatusReserved, now).
			Find(&overdue).Error; err != nil {
			return err
		}
		if len(overdue) == 0 {
			return nil
		}

		claimIDs := make([]uuid.UUID, 0, len(overdue))
		for _, claim := range overdue {
			claimIDs = append(claimIDs, claim.ID)
		}

		result := tx.Model(&models.Claim{}).
			Where("id IN ? AND status = ?", claimIDs, enums.ClaimStatusReserved).
			UpdateColumn("status", enums.ClaimStatusExpired)
		if result.Error != nil {
			return result.Error
		}
		reaped = result.RowsAffected

		// Release only listings whose claim the update above actually
		// expired. A claim completed between the read and the update keeps
		// its listing RESERVED.
		expiredListings := tx.Model(&models.Claim{}).
			Select("listing_id").
			Where("id IN ? AND status = ?", claimIDs, enums.ClaimStatusExpired)

		return tx.Model(&models.Listing{}).
			Where("id IN (?) AND status = ?", expiredListings, enums.ListingStatusReserved).
			UpdateColumn("status", enums.ListingStatusAvailable).Error
	})
	if err != nil {
		return 0, err
	}
	return reaped, nil
}
