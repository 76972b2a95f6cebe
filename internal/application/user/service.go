package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/payment-reminder-api/internal/domain"
	"github.com/payment-reminder-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFullName       = "full_name"
	fieldEmail          = "email"
	fieldWhatsAppNumber = "whatsapp_number"
	fieldPasswordHash   = "password_hash"
)

type Service interface {
	Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
	// EmailInUse and PhoneInUse back the pre-signup availability checks.
	EmailInUse(ctx context.Context, email string) (bool, error)
	PhoneInUse(ctx context.Context, phone string) (bool, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID string) error
}

type ticketVerifier interface {
	Verify(tokenStr, email string) error
}

type service struct {
	repo    userStore
	tickets ticketVerifier
}

type ServiceDeps struct {
	UserRepo userStore
	Tickets  ticketVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, tickets: deps.Tickets}
}

// Register creates a user in the pending-approval state. The verification
// ticket proves email ownership server-side; a request without one is
// rejected no matter how complete the rest of the payload is.
func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if req.VerificationTicket == "" {
		return nil, fmt.Errorf("email verification is required before registration: %w", domain.ErrBadRequest)
	}
	if err := s.tickets.Verify(req.VerificationTicket, req.Email); err != nil {
		return nil, err
	}

	// Three independent existence probes. The conditional put in the store is
	// the final net against a concurrent signup slipping between them.
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByPhone(ctx, req.PhoneNumber); err == nil {
		return nil, fmt.Errorf("phone number already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:         id.New(),
		Username:       req.Username,
		Email:          domain.NormalizeEmail(req.Email),
		PasswordHash:   string(hash),
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		WhatsAppNumber: req.WhatsAppNumber,
		Role:           domain.RoleUser,
		IsApproved:     false,
		IsActive:       true,
		EmailVerified:  true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateProfile applies the typed allow-list of self-editable fields. Role,
// approval, and active flags have no representation here, so a mass-assignment
// style escalation is impossible by construction.
func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		existing, err := s.repo.GetByEmail(ctx, email)
		if err == nil && existing.UserID != userID {
			return nil, fmt.Errorf("email is already in use by another account: %w", domain.ErrConflict)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		updates[fieldEmail] = email
	}
	if req.WhatsAppNumber != nil {
		updates[fieldWhatsAppNumber] = *req.WhatsAppNumber
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

// DeleteAccount removes the caller's own row permanently.
func (s *service) DeleteAccount(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func (s *service) EmailInUse(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) PhoneInUse(ctx context.Context, phone string) (bool, error) {
	_, err := s.repo.GetByPhone(ctx, phone)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
