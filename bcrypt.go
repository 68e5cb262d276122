package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the original deployment's 10 rounds. The
// salt is embedded in the bcrypt output so verification needs no
// separate salt storage.
const DefaultBcryptCost = 10

// HashPassword will generate a password hash at the default cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultBcryptCost)
}

// HashPasswordCost generates a password hash at an explicit cost factor
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password. Any failure, including a malformed hash,
// reports the same mismatch error.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash is a throwaway hash. Login uses it to run a compare
// for unknown emails so the failure takes as long as a real mismatch.
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
