package auth_test

import (
	"testing"

	auth "github.com/ASANIYAN/fin-flow-backend"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "Valid password",
			password: "securePassword123!",
			wantErr:  false,
		},
		{
			name:     "Short password",
			password: "P1!",
			wantErr:  false,
		},
		{
			name:     "Empty password",
			password: "",
			wantErr:  true, // bcrypt can hash empty strings!
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := auth.HashPassword(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, hash)

			err = auth.ComparePasswordAndHash(tt.password, hash)
			assert.NoError(t, err)
		})
	}
}

func TestHashPasswordCost(t *testing.T) {
	hash, err := auth.HashPassword("securePassword123!")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, auth.DefaultBcryptCost, cost)
}

func TestComparePasswordAndHash(t *testing.T) {
	password := "testPassword123!"
	hash, err := auth.HashPassword(password)
	assert.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  bool
	}{
		{
			name:     "Matching password",
			password: password,
			hash:     hash,
			wantErr:  false,
		},
		{
			name:     "Wrong password",
			password: "wrongPassword",
			hash:     hash,
			wantErr:  true,
		},
		{
			name:     "Invalid hash",
			password: password,
			hash:     "invalidhash",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ComparePasswordAndHash(tt.password, tt.hash)

			if tt.wantErr {
				// malformed hashes and mismatches look the same to
				// callers, so login paths cannot leak which it was
				assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestRandomPasswordHash(t *testing.T) {
	hash := auth.RandomPasswordHash()
	assert.NotEmpty(t, hash)

	// used as the dummy compare target, so it must be a real bcrypt hash
	_, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
}
