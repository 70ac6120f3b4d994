// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront/internal/config"
	"github.com/javajoker/storefront/internal/database"
	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/utils"
)

type AuthService struct {
	users database.UserRepository
	cfg   config.SessionConfig
	now   func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a successful login: the user and the cookie token to set.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(users database.UserRepository, cfg config.SessionConfig) *AuthService {
	return &AuthService{
		users: users,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *AuthService) TTL() time.Duration {
	return time.Duration(s.cfg.TTL) * time.Hour
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status == models.UserStatusSuspended {
		return nil, ErrUserSuspended
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	ttl := s.TTL()
	token, err := utils.GenerateSessionToken(user.ID, user.Email, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// CurrentUser loads the user a session cookie belongs to.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, ErrUserSuspended
	}
	return user, nil
}
