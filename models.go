package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountRole is the account's role
type AccountRole = string

const (
	// RoleBorrower is a borrower account (requests loans)
	RoleBorrower AccountRole = "BORROWER"
	// RoleLender is a lender account (funds loans)
	RoleLender AccountRole = "LENDER"
)

// KnownRole reports whether role is a member of the closed role set.
func KnownRole(role string) bool {
	switch role {
	case RoleBorrower, RoleLender:
		return true
	default:
		return false
	}
}

// Account is the account model
type Account struct {
	bun.BaseModel        `bun:"table:users,alias:usr"`
	ID                   uuid.UUID   `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role                 AccountRole `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName            string      `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName             string      `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email                string      `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash         string      `bun:"password_hash" json:"-"`
	EmailVerified        bool        `bun:"is_email_verified" json:"is_email_verified"`
	EmailVerifiedAt      *time.Time  `bun:"email_verified_at,nullzero" json:"email_verified_at,omitempty"`
	VerificationToken    *string     `bun:"verification_token,nullzero" json:"-"`
	ResetPasswordToken   *string     `bun:"reset_password_token,nullzero" json:"-"`
	ResetPasswordExpires *time.Time  `bun:"reset_password_expires,nullzero" json:"-"`
	CreatedAt            *time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt            *time.Time  `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PublicAccount is the caller-safe projection of an Account. It never
// carries the password hash or any lifecycle token; tokens travel only
// inside emailed links.
type PublicAccount struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	Role          AccountRole `json:"role"`
	EmailVerified bool        `json:"is_email_verified"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
}

// Public returns the caller-safe projection
func (a *Account) Public() *PublicAccount {
	if a == nil {
		return nil
	}
	return &PublicAccount{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Role:          a.Role,
		EmailVerified: a.EmailVerified,
		CreatedAt:     a.CreatedAt,
	}
}

// HasActiveResetWindow reports whether the account holds a reset token
// whose expiry is still in the future.
func (a *Account) HasActiveResetWindow(now time.Time) bool {
	if a == nil || a.ResetPasswordToken == nil || a.ResetPasswordExpires == nil {
		return false
	}
	return a.ResetPasswordExpires.After(now)
}
