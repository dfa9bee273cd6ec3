package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens. Tokens are minted by
// the institution's identity service; this API only verifies them.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
