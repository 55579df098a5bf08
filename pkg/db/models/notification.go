package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Type             enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title            string                 `gorm:"column:title;type:text;not null"`
	Message          string                 `gorm:"column:message;type:text;not null"`
	RelatedListingID *uuid.UUID             `gorm:"column:related_listing_id;type:uuid"`
	RelatedUserID    *uuid.UUID             `gorm:"column:related_user_id;type:uuid"`
	ReadAt           *time.Time             `gorm:"column:read_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
}
