package auth

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenDuration is the validity horizon for password reset tokens.
// Verification tokens carry no expiry; they live until consumed.
var ResetTokenDuration = time.Hour

const mintedTokenBytes = 32

// MintToken returns an opaque single-use bearer credential: 256 bits
// from crypto/rand, URL-safe encoded. It has no structure beyond
// identity.
func MintToken() (string, error) {
	buf := make([]byte, mintedTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ResetTokenExpiry stamps the expiry for a reset token minted at now.
func ResetTokenExpiry(now time.Time) time.Time {
	return now.Add(ResetTokenDuration)
}
