package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/payment-reminder-api/internal/domain"
)

// Claims is the payload of an email verification ticket.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies short-lived HS256 email verification tickets.
// A ticket is issued when an OTP is verified and consumed by signup, so the
// server never has to trust a client-asserted "email verified" flag.
type Provider struct {
	secret []byte
	expiry time.Duration
}

func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("verification ticket secret not configured")
	}
	return &Provider{secret: []byte(secret), expiry: expiry}, nil
}

// Issue signs a ticket asserting that the given (normalized) email was just
// verified.
func (p *Provider) Issue(email string) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify checks the ticket signature and expiry and confirms it was issued
// for the given email. Any failure is reported as ErrBadRequest: from the
// client's perspective the ticket is simply not valid for this signup.
func (p *Provider) Verify(tokenStr, email string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid verification ticket: %w", domain.ErrBadRequest)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid verification ticket: %w", domain.ErrBadRequest)
	}
	if claims.Email != domain.NormalizeEmail(email) {
		return fmt.Errorf("verification ticket does not match email: %w", domain.ErrBadRequest)
	}
	return nil
}
