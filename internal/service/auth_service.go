package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"filevault/internal/ids"
	"filevault/internal/models"
	"filevault/internal/repository"
	"filevault/internal/security"
	"filevault/internal/session"
)

var (
	// ErrUnauthorized covers every authentication failure: missing or
	// malformed header, unknown email, wrong password, absent token.
	// Collapsing them keeps the API from leaking which check failed.
	ErrUnauthorized = errors.New("unauthorized")

	ErrEmailTaken      = errors.New("email already registered")
	ErrMissingEmail    = errors.New("missing email")
	ErrMissingPassword = errors.New("missing password")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type SessionStore interface {
	Put(ctx context.Context, token string, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// AuthService issues and revokes session tokens and registers users.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, ttl time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, email string, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return models.User{}, ErrMissingEmail
	}
	if password == "" {
		return models.User{}, ErrMissingPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: security.HashPassword(password),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A registration racing past the lookup loses on the unique
		// constraint instead.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Connect parses a "Basic <base64(email:password)>" header, verifies
// the credentials and issues a fresh session token.
func (s *AuthService) Connect(ctx context.Context, authHeader string) (string, error) {
	email, password, ok := decodeBasicAuth(authHeader)
	if !ok {
		return "", ErrUnauthorized
	}

	user, err := s.verify(ctx, email, password)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.sessions.Put(ctx, token, user.ID, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	s.log.Debug().Str("user_id", user.ID).Msg("session issued")
	return token, nil
}

func (s *AuthService) verify(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}

	if !security.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ErrUnauthorized
	}
	return user, nil
}

// Resolve maps a token to the owning user id. Only an absent or
// expired session is an authentication failure; a session-store
// outage is reported as such.
func (s *AuthService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

// Disconnect revokes a session. Revoking a token that is already
// absent is an authentication failure, not a no-op.
func (s *AuthService) Disconnect(ctx context.Context, token string) error {
	if _, err := s.Resolve(ctx, token); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// UserFromToken resolves a token all the way to the user record.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (models.User, error) {
	userID, err := s.Resolve(ctx, token)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	return user, nil
}

func decodeBasicAuth(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}

	// Split on the first colon only; passwords may contain colons.
	email, password, ok = strings.Cut(string(decoded), ":")
	return email, password, ok
}
