package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// Listing captures a donor's surplus food offer and its pickup location.
type Listing struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	DonorID     uuid.UUID               `gorm:"column:donor_id;type:uuid;not null;index"`
	Title       string                  `gorm:"column:title;not null"`
	Notes       *string                 `gorm:"column:notes"`
	FoodType    enums.FoodType          `gorm:"column:food_type;type:food_type;not null"`
	Veg         bool                    `gorm:"column:veg;not null;default:false"`
	Cuisine     *string                 `gorm:"column:cuisine"`
	PreparedAt  *time.Time              `gorm:"column:prepared_at"`
	PackagedAt  *time.Time              `gorm:"column:packaged_at"`
	ExpiryAt    *time.Time              `gorm:"column:expiry_at"`
	Quantity    string                  `gorm:"column:quantity;not null"`
	PhotoURL    *string                 `gorm:"column:photo_url"`
	Visibility  enums.ListingVisibility `gorm:"column:visibility;type:listing_visibility;not null;default:'everyone'"`
	Lat         float64                 `gorm:"column:lat;not null"`
	Lng         float64                 `gorm:"column:lng;not null"`
	AddressText *string                 `gorm:"column:address_text"`
	Status      enums.ListingStatus     `gorm:"column:status;type:listing_status;not null;default:'AVAILABLE';index"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
