package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims mirrors the access-token claims issued by the external
// user-management service. Subject carries the user id.
type JWTClaims struct {
	Username string     `json:"username"`
	Roles    []RoleKind `json:"roles"`
	jwt.RegisteredClaims
}
