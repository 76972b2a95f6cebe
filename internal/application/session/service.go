package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/payment-reminder-api/internal/domain"
	"github.com/payment-reminder-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Service interface {
	// Login authenticates credentials and establishes a session. Approval is
	// deliberately not required: an unapproved account gets a session so the
	// client can poll its pending status, and the Approved gate keeps it out
	// of protected routes.
	Login(ctx context.Context, req LoginRequest) (*domain.Session, error)
	Logout(ctx context.Context, sessionToken string) error
	// Current returns the snapshot as-is, without touching the user store.
	Current(ctx context.Context, sessionToken string) (*domain.Session, error)
	// RefreshSnapshot re-reads the backing user row and overwrites the
	// snapshot's mutable fields. A session whose user no longer exists is
	// destroyed.
	RefreshSnapshot(ctx context.Context, sessionToken string) (*domain.Session, error)
}

type sessionStore interface {
	Put(ctx context.Context, token string, sess *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type service struct {
	sessions sessionStore
	users    userStore
}

func NewService(sessions sessionStore, users userStore) Service {
	return &service{sessions: sessions, users: users}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*domain.Session, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid username or password: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid username or password: %w", domain.ErrUnauthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("your account has been deactivated, please contact an administrator: %w", domain.ErrForbidden)
	}

	tok, err := token.NewSessionToken()
	if err != nil {
		return nil, err
	}
	sess := domain.NewSessionSnapshot(u)
	sess.Token = tok
	if err := s.sessions.Put(ctx, tok, sess); err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", u.UserID, "username", u.Username)
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionToken string) error {
	return s.sessions.Delete(ctx, sessionToken)
}

func (s *service) Current(ctx context.Context, sessionToken string) (*domain.Session, error) {
	return s.sessions.Get(ctx, sessionToken)
}

func (s *service) RefreshSnapshot(ctx context.Context, sessionToken string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The backing user is gone; the session must not outlive it.
			if delErr := s.sessions.Delete(ctx, sessionToken); delErr != nil {
				slog.Warn("failed to destroy orphaned session", "user_id", sess.UserID, "err", delErr)
			}
			return nil, fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}

	sess.Username = u.Username
	sess.Email = u.Email
	sess.FullName = u.FullName
	sess.Role = u.Role
	sess.IsApproved = u.IsApproved
	sess.IsActive = u.IsActive
	if err := s.sessions.Put(ctx, sessionToken, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
