package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost keeps a single hash around the 50-100ms range on current
// hardware.
const DefaultBcryptCost = 12

// HashPassword hashes a password with bcrypt at the given cost. A cost of 0
// falls back to DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a bcrypt hash. The comparison
// inside bcrypt is constant-time over the derived key.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
