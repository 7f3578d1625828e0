// Package auth implements credential hashing and verification.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced by the signup form before hashing.
const MinPasswordLength = 6

// HashPassword returns the bcrypt hash of a raw password. The salt is
// embedded in the hash, so equal inputs produce distinct hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether candidate matches the stored hash.
// It fails closed: a malformed or truncated hash yields false, never an
// error surfaced to the caller.
func VerifyPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
