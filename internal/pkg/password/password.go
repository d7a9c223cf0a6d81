package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const cost = 12 // bcrypt cost factor

// MaxLength is the bcrypt input limit in bytes (UTF-8 encoded).
const MaxLength = 72

// ErrTooLong is returned when the password exceeds the bcrypt input limit.
var ErrTooLong = errors.New("password exceeds 72 bytes")

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	if len(password) > MaxLength {
		return "", ErrTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
