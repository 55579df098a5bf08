package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// Badge is a row of the seeded badge catalog.
type Badge struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Slug          string          `gorm:"column:slug;not null;uniqueIndex"`
	Name          string          `gorm:"column:name;not null"`
	Description   string          `gorm:"column:description;not null"`
	RequiredStat  enums.BadgeStat `gorm:"column:required_stat;type:badge_stat;not null"`
	RequiredValue int             `gorm:"column:required_value;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// UserBadge links an awarded badge to a user. The composite uniqueness closes
// concurrent award races.
type UserBadge struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_badges_user_badge"`
	BadgeID   uuid.UUID `gorm:"column:badge_id;type:uuid;not null;uniqueIndex:idx_user_badges_user_badge"`
	AwardedAt time.Time `gorm:"column:awarded_at;not null"`
}
