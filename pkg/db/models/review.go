package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is feedback tied to a completed claim. One review per reviewer per
// claim, enforced by the composite uniqueness.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ClaimID    uuid.UUID `gorm:"column:claim_id;type:uuid;not null;uniqueIndex:idx_reviews_claim_reviewer"`
	ReviewerID uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null;uniqueIndex:idx_reviews_claim_reviewer"`
	RevieweeID uuid.UUID `gorm:"column:reviewee_id;type:uuid;not null;index"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    *string   `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
