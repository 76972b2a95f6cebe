package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the recognised role names.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

type User struct {
	UserID         string    `json:"id" dynamodbav:"user_id"`
	Username       string    `json:"username" dynamodbav:"username"`
	Email          string    `json:"email" dynamodbav:"email"`
	PasswordHash   string    `json:"-" dynamodbav:"password_hash"`
	FullName       string    `json:"full_name" dynamodbav:"full_name"`
	PhoneNumber    string    `json:"phone_number" dynamodbav:"phone_number"`
	WhatsAppNumber string    `json:"whatsapp_number,omitempty" dynamodbav:"whatsapp_number"`
	Role           string    `json:"role" dynamodbav:"role"`
	IsApproved     bool      `json:"is_approved" dynamodbav:"is_approved"`
	IsActive       bool      `json:"is_active" dynamodbav:"is_active"`
	EmailVerified  bool      `json:"email_verified" dynamodbav:"email_verified"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password" validate:"required,min=8,max=72"`
	Email              string `json:"email" validate:"required,email"`
	FullName           string `json:"full_name" validate:"required"`
	PhoneNumber        string `json:"phone_number" validate:"required"`
	WhatsAppNumber     string `json:"whatsapp_number"`
	VerificationTicket string `json:"verification_ticket"`
}

// UpdateProfileRequest carries the only fields a user may change on their own
// record. Anything else (role, approval, active flags) goes through the admin
// endpoints.
type UpdateProfileRequest struct {
	FullName       *string `json:"full_name"`
	Email          *string `json:"email" validate:"omitempty,email"`
	WhatsAppNumber *string `json:"whatsapp_number"`
}

// NormalizeEmail lowercases and trims an email address. All email comparison
// and storage goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
