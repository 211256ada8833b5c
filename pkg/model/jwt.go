package model

import "github.com/golang-jwt/jwt/v5"

// Identity is the request-scoped caller identity derived from a verified
// access token. It is never persisted.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type JWTAccessCustomClaims struct {
	Identity
	jwt.RegisteredClaims
}
