package card

import "errors"

var (
	ErrNotFound            = errors.New("card not found")
	ErrDuplicateUID        = errors.New("card with this UID already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
