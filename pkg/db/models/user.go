package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// User represents the canonical identity entity. Donors and receivers share
// the same table; the account type only drives visibility and presentation.
type User struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Phone        *string           `gorm:"column:phone"`
	AccountType  enums.AccountType `gorm:"column:account_type;type:account_type;not null"`
	NGOVerified  bool              `gorm:"column:ngo_verified;not null;default:false"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
