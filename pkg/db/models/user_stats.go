package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStats holds the monotonic gamification counters for a user. Rows are
// created lazily on first increment; an absent row reads as all zeroes.
type UserStats struct {
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	DonationsMade  int       `gorm:"column:donations_made;not null;default:0"`
	ClaimsReceived int       `gorm:"column:claims_received;not null;default:0"`
	ImpactPoints   int       `gorm:"column:impact_points;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (UserStats) TableName() string {
	return "user_stats"
}
