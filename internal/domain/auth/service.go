package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/svpay/svpay-api/internal/domain/user"
	"github.com/svpay/svpay-api/internal/pkg/jwt"
	"github.com/svpay/svpay-api/internal/pkg/password"
)

type Service struct {
	users user.Repository
	jwt   *jwt.Service
}

func NewService(users user.Repository, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService}
}

// Register creates a new operator account. The username is pre-checked and
// the insert-time unique violation is mapped as well, so the race between
// the two still surfaces as a conflict.
func (s *Service) Register(ctx context.Context, username, plaintext string) (*user.User, error) {
	if len(plaintext) > password.MaxLength {
		return nil, ErrPasswordTooLong
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, ErrPasswordTooLong
		}
		return nil, err
	}

	u, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	log.Info().Str("username", u.Username).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues an access token. Verification is a
// one-way bcrypt comparison; the stored hash is never reversed.
func (s *Service) Login(ctx context.Context, username, plaintext string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil || !password.Verify(plaintext, u.HashedPassword) {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(u.Username)
	if err != nil {
		return "", err
	}

	log.Info().Str("username", u.Username).Msg("user logged in")
	return token, nil
}

// CurrentUser resolves the token subject to a stored user
func (s *Service) CurrentUser(ctx context.Context, username string) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
