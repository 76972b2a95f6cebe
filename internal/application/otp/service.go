package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/payment-reminder-api/internal/domain"
)

// genericFailure is returned for every verification failure mode. Revealing
// whether the code was wrong, expired, or never issued would let a caller
// probe which emails have verification in flight.
const genericFailure = "invalid or expired OTP"

type Service interface {
	// Request issues a fresh verification code for an unregistered email and
	// delivers it by mail. Any earlier code for the same email is superseded.
	Request(ctx context.Context, email string) error
	// Verify consumes the live code for the email. On success it returns a
	// signed verification ticket for the subsequent signup call.
	Verify(ctx context.Context, email, code string) (string, error)
	// SweepExpired purges records past expiry and returns the count removed.
	SweepExpired(ctx context.Context) (int, error)
}

type otpStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

type ticketIssuer interface {
	Issue(email string) (string, error)
}

type service struct {
	otpRepo  otpStore
	userRepo userStore
	mailer   mailer
	tickets  ticketIssuer
	expiry   time.Duration
}

type ServiceDeps struct {
	OTPRepo  otpStore
	UserRepo userStore
	Mailer   mailer
	Tickets  ticketIssuer
	Expiry   time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:  deps.OTPRepo,
		userRepo: deps.UserRepo,
		mailer:   deps.Mailer,
		tickets:  deps.Tickets,
		expiry:   deps.Expiry,
	}
}

func (s *service) Request(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("this email is already registered: %w", domain.ErrConflict)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec := &domain.OTPRecord{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.expiry).Unix(),
	}
	// PutItem keyed on the email overwrites any live code, so at most one
	// record exists per address.
	if err := s.otpRepo.Put(ctx, rec); err != nil {
		return err
	}

	minutes := int(s.expiry.Minutes())
	if err := s.mailer.Send(email, "Your Email Verification Code", verifyText(code, minutes), verifyHTML(code, minutes)); err != nil {
		return fmt.Errorf("send OTP email: %w", err)
	}
	return nil
}

func (s *service) Verify(ctx context.Context, email, code string) (string, error) {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	rec, err := s.otpRepo.Get(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", genericFailure, domain.ErrUnauthorized)
	}
	if rec.Code != code || rec.Expired(time.Now()) {
		return "", fmt.Errorf("%s: %w", genericFailure, domain.ErrUnauthorized)
	}

	// Single use: the record is consumed before the ticket is handed out.
	if err := s.otpRepo.Delete(ctx, email); err != nil {
		return "", fmt.Errorf("consume OTP record: %w", err)
	}
	return s.tickets.Issue(email)
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.otpRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		slog.Info("swept expired OTP records", "count", removed)
	}
	return removed, nil
}

// generateCode returns a 6-digit code uniformly distributed over
// [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func verifyText(code string, minutes int) string {
	return fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %d minutes.", code, minutes)
}

func verifyHTML(code string, minutes int) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Email Verification</h2>
  <p>Thank you for registering! Please use the following code to verify your email address:</p>
  <div style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</div>
  <p>This verification code will expire in <strong>%d minutes</strong>.</p>
  <p>If you didn't request this code, you can safely ignore this email.</p>
</div>`, code, minutes)
}
