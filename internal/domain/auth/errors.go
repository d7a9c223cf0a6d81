package auth

import "errors"

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrUserNotFound       = errors.New("user not found")
)
