package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// Claim records a receiver's hold on a listing. At most one live claim exists
// per listing; the listing status transition is the gate.
type Claim struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	ListingID   uuid.UUID         `gorm:"column:listing_id;type:uuid;not null;index"`
	ReceiverID  uuid.UUID         `gorm:"column:receiver_id;type:uuid;not null;index"`
	Status      enums.ClaimStatus `gorm:"column:status;type:claim_status;not null;default:'RESERVED'"`
	ReservedAt  time.Time         `gorm:"column:reserved_at;not null"`
	ExpiresAt   time.Time         `gorm:"column:expires_at;not null"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
