package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/svpay/svpay-api/internal/pkg/database"
)

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, username, hashedPassword string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new user. A unique-constraint violation on username is
// surfaced as ErrUsernameTaken so the race between pre-check and insert
// still yields a conflict, not a generic failure.
func (r *repository) Create(ctx context.Context, username, hashedPassword string) (*User, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, hashed_password, created_at)
		VALUES (?, ?, ?)
	`, username, hashedPassword, now)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("user repository create: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user repository create: %w", err)
	}

	return &User{
		ID:             id,
		Username:       username,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
	}, nil
}

// GetByUsername returns user by username, or nil when absent
func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, username, hashed_password, created_at
		FROM users WHERE username = ?
	`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}
