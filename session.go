package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Role           string     `json:"role,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetRole() string {
	return s.Role
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) String() string {
	issuedAt := ""
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC3339)
	}
	return fmt.Sprintf(
		"user=%s role=%s iss=%s iat=%s",
		s.UserID,
		s.Role,
		s.Issuer,
		issuedAt,
	)
}

// sessionFromAuthClaims creates a SessionObject from validated claims
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	issuer := ""
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		issuer = jwtClaims.RegisteredClaims.Issuer
	}

	return &SessionObject{
		UserID:         claims.UserID(),
		Role:           claims.Role(),
		Issuer:         issuer,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}
