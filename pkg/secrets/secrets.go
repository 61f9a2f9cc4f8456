// Package secrets mints and checks the one-time secrets embedded in invite
// codes. Only bcrypt hashes are ever stored.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "elan/pkg/domain-errors"
)

// secretBytes gives 256 bits of entropy, 43 characters once encoded.
const secretBytes = 32

// Generate returns a random base64url secret without padding, so it can sit
// after the dot in "<inviteID>.<secret>".
func Generate() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate invite secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the bcrypt hash to persist for secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "invite secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", dErrors.New(dErrors.CodeValidation, "invite secret is too long")
	case err != nil:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash invite secret")
	}
	return string(hashed), nil
}

// Verify reports an unauthorized error when secret does not match hash.
// A corrupt hash is an internal error.
func Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dErrors.New(dErrors.CodeUnauthorized, "invalid invite code")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify invite code")
	}
}
