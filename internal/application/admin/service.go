package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/payment-reminder-api/internal/domain"
)

type Service interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListPending(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	Approve(ctx context.Context, userID string) (*domain.User, error)
	// Reject removes an unapproved registration outright.
	Reject(ctx context.Context, userID string) error
	Deactivate(ctx context.Context, userID string) (*domain.User, error)
	Reactivate(ctx context.Context, userID string) (*domain.User, error)
	UpdateRole(ctx context.Context, userID, role string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
	ListAll(ctx context.Context) ([]domain.User, error)
	ListPending(ctx context.Context) ([]domain.User, error)
}

type service struct {
	users userStore
}

func NewService(users userStore) Service {
	return &service{users: users}
}

func (s *service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListAll(ctx)
}

func (s *service) ListPending(ctx context.Context) ([]domain.User, error) {
	return s.users.ListPending(ctx)
}

func (s *service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) Approve(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.setFlag(ctx, userID, "is_approved", true)
	if err != nil {
		return nil, err
	}
	slog.Info("user approved", "user_id", userID)
	return u, nil
}

func (s *service) Reject(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	slog.Info("registration rejected", "user_id", userID)
	return nil
}

func (s *service) Deactivate(ctx context.Context, userID string) (*domain.User, error) {
	return s.setFlag(ctx, userID, "is_active", false)
}

func (s *service) Reactivate(ctx context.Context, userID string) (*domain.User, error) {
	return s.setFlag(ctx, userID, "is_active", true)
}

func (s *service) UpdateRole(ctx context.Context, userID, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("invalid role specified: %w", domain.ErrBadRequest)
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, userID)
}

// Delete removes a user account. Admin accounts cannot be deleted through
// this path, so an admin must be demoted first.
func (s *service) Delete(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		return fmt.Errorf("cannot delete admin users: %w", domain.ErrForbidden)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	slog.Info("user deleted by admin", "user_id", userID)
	return nil
}

func (s *service) setFlag(ctx context.Context, userID, field string, value bool) (*domain.User, error) {
	if err := s.users.Update(ctx, userID, map[string]interface{}{field: value}); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, userID)
}
