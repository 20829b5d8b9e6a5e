package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength is the floor enforced for staff account passwords.
const minPasswordLength = 6

// HashPassword bcrypt-hashes a staff password after enforcing the minimum
// length.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares a plaintext password against its stored hash.
func CheckPassword(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
