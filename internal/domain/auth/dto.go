package auth

import "time"

// RegisterRequest for POST /users/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest for POST /token
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returned after login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse creates UserResponse from user data
func NewUserResponse(id int64, username string, createdAt time.Time) UserResponse {
	return UserResponse{
		ID:        id,
		Username:  username,
		CreatedAt: createdAt.Format(time.RFC3339),
	}
}
