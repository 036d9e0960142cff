package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/maisonaurelle/boutique-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.ShopperRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to shoppers and staff.
type AccessTokenClaims struct {
	UserID uuid.UUID         `json:"user_id"`
	Email  string            `json:"email,omitempty"`
	Role   enums.ShopperRole `json:"role"`
	jwt.RegisteredClaims
}
