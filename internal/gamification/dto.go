package gamification

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// StatsDTO is the transport shape for a user's impact counters.
type StatsDTO struct {
	UserID         uuid.UUID `json:"user_id"`
	DonationsMade  int       `json:"donations_made"`
	ClaimsReceived int       `json:"claims_received"`
	ImpactPoints   int       `json:"impact_points"`
}

// BadgeDTO describes an earned badge alongside its catalog entry.
type BadgeDTO struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AwardedAt   time.Time `json:"awarded_at"`
}

func statsFromModel(stats *models.UserStats) *StatsDTO {
	if stats == nil {
		return nil
	}
	return &StatsDTO{
		UserID:         stats.UserID,
		DonationsMade:  stats.DonationsMade,
		ClaimsReceived: stats.ClaimsReceived,
		ImpactPoints:   stats.ImpactPoints,
	}
}

func statValue(stats *models.UserStats, stat enums.BadgeStat) int {
	if stats == nil {
		return 0
	}
	switch stat {
	case enums.BadgeStatDonationsMade:
		return stats.DonationsMade
	case enums.BadgeStatClaimsReceived:
		return stats.ClaimsReceived
	case enums.BadgeStatImpactPoints:
		return stats.ImpactPoints
	default:
		return 0
	}
}
