// Package auth implements account registration and session-token
// authentication on top of the store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/biaslens/biaslens/internal/store"
)

const (
	// SessionTTL is how long a session token stays valid.
	SessionTTL = 24 * time.Hour

	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

var (
	// ErrInvalidCredentials is returned on a failed login or an unknown
	// session token. The same error covers both unknown-user and bad-password
	// so responses don't leak which usernames exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = store.ErrUsernameTaken

	// ErrWeakPassword is returned when a password fails validation.
	ErrWeakPassword = fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
)

// Service handles registration, login, and session validation.
type Service struct {
	store *store.Store
}

// NewService creates an auth service backed by the given store.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Register creates a new account and returns its user ID.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" {
		return 0, errors.New("username cannot be empty")
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return 0, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.store.CreateUser(ctx, username, string(hash))
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		// Burn a bcrypt comparison anyway to keep timing uniform.
		_ = bcrypt.CompareHashAndPassword(
			[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
			[]byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.store.CreateSession(ctx, token, user.ID, time.Now().Add(SessionTTL)); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// Authenticate resolves a session token to a user ID. Expired sessions are
// deleted on sight.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidCredentials
	}

	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}
	if sess == nil {
		return 0, ErrInvalidCredentials
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, token)
		return 0, ErrInvalidCredentials
	}
	return sess.UserID, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}
