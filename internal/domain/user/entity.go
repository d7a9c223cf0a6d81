package user

import "time"

// User represents an operator account used to protect the card API.
// It has no relationship to cards; the embedded reader never logs in.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
