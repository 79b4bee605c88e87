// Package auth provides password hashing and session token issuance.
// It produces the opaque caller identity the rest of the service keys
// ownership on.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost trades hashing time against brute-force resistance.
const bcryptCost = 12

// HashPassword returns a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
