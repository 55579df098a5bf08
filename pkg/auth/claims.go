package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	AccountType enums.AccountType
	NGOVerified bool
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID         `json:"user_id"`
	AccountType enums.AccountType `json:"account_type"`
	NGOVerified bool              `json:"ngo_verified,omitempty"`
	jwt.RegisteredClaims
}
