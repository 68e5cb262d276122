package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	auth "github.com/ASANIYAN/fin-flow-backend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownRole(t *testing.T) {
	assert.True(t, auth.KnownRole(auth.RoleBorrower))
	assert.True(t, auth.KnownRole(auth.RoleLender))
	assert.False(t, auth.KnownRole("ADMIN"))
	assert.False(t, auth.KnownRole(""))
	assert.False(t, auth.KnownRole("borrower"))
}

func TestAccountPublicProjection(t *testing.T) {
	token := "secret-verification-token"
	resetToken := "secret-reset-token"
	now := time.Now()

	account := &auth.Account{
		ID:                   uuid.New(),
		Email:                "ada@example.com",
		FirstName:            "Ada",
		LastName:             "Lovelace",
		Role:                 auth.RoleBorrower,
		PasswordHash:         "$2a$10$abcdefghijklmnopqrstuv",
		VerificationToken:    &token,
		ResetPasswordToken:   &resetToken,
		ResetPasswordExpires: &now,
	}

	public := account.Public()
	require.NotNil(t, public)
	assert.Equal(t, account.ID, public.ID)
	assert.Equal(t, "ada@example.com", public.Email)
	assert.Equal(t, auth.RoleBorrower, public.Role)

	raw, err := json.Marshal(public)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	for _, forbidden := range []string{
		"password_hash",
		"verification_token",
		"reset_password_token",
		"reset_password_expires",
	} {
		_, present := fields[forbidden]
		assert.False(t, present, "projection leaked %q", forbidden)
	}
}

func TestAccountPublicNil(t *testing.T) {
	var account *auth.Account
	assert.Nil(t, account.Public())
}

func TestAccountModelNeverSerializesSecrets(t *testing.T) {
	token := "secret-verification-token"
	account := &auth.Account{
		ID:                uuid.New(),
		Email:             "ada@example.com",
		PasswordHash:      "$2a$10$abcdefghijklmnopqrstuv",
		VerificationToken: &token,
	}

	raw, err := json.Marshal(account)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "password_hash")
	assert.NotContains(t, string(raw), account.PasswordHash)
	assert.NotContains(t, string(raw), token)
}

func TestHasActiveResetWindow(t *testing.T) {
	now := time.Now()
	token := "reset-token"

	tests := []struct {
		name    string
		account *auth.Account
		want    bool
	}{
		{
			name:    "nil account",
			account: nil,
			want:    false,
		},
		{
			name:    "no reset state",
			account: &auth.Account{},
			want:    false,
		},
		{
			name: "live window",
			account: &auth.Account{
				ResetPasswordToken:   &token,
				ResetPasswordExpires: timePtr(now.Add(30 * time.Minute)),
			},
			want: true,
		},
		{
			name: "expired window",
			account: &auth.Account{
				ResetPasswordToken:   &token,
				ResetPasswordExpires: timePtr(now.Add(-time.Minute)),
			},
			want: false,
		},
		{
			name: "token without expiry",
			account: &auth.Account{
				ResetPasswordToken: &token,
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.account.HasActiveResetWindow(now))
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
