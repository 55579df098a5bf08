package gamification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/pkg/db"
	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
)

// Repository exposes persistence helpers for stats and badges.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	ListCatalog(ctx context.Context) ([]models.Badge, error)
	ListEarned(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error)
	AwardBadge(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gamification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// GetStats returns the stats row, or a zeroed row when none exists yet.
func (r *repositoryImpl) GetStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.db.WithContext(ctx).First(&stats, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *repositoryImpl) ListCatalog(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).Order("required_stat, required_value").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *repositoryImpl) ListEarned(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	var earned []models.UserBadge
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("awarded_at").
		Find(&earned).Error; err != nil {
		return nil, err
	}
	return earned, nil
}

// AwardBadge inserts the award and reports whether it was newly granted.
// A concurrent duplicate resolves to false without error.
func (r *repositoryImpl) AwardBadge(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) (bool, error) {
	award := models.UserBadge{
		ID:        uuid.New(),
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: at,
	}
	if err := r.db.WithContext(ctx).Create(&award).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
