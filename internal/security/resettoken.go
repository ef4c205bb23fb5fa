package security

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewResetToken returns a fresh password-reset token and the digest that
// goes in the database. Only the digest is ever persisted; the plaintext
// half travels in the reset email.
func NewResetToken() (token, digest string) {
	token = uuid.NewString()
	return token, HashResetToken(token)
}

// HashResetToken maps a plaintext reset token to its stored form.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
