package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents structured JWT claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The subject
// carries the account id; the role claim carries the stored role enum.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"uid,omitempty"`
	UserRole string `json:"role,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account id
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the stored role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
