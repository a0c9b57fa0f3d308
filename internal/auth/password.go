package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at signup and password change.
const MinPasswordLength = 6

// HashPassword derives a one-way bcrypt hash. The plaintext is never
// persisted or logged.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
