package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/payment-reminder-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// UserEnvelope wraps single-user responses.
type UserEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	User    *SafeUser `json:"user,omitempty"`
}

// UsersEnvelope wraps user list responses.
type UsersEnvelope struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Users   []*SafeUser `json:"users"`
}

// TicketEnvelope wraps a successful OTP verification.
type TicketEnvelope struct {
	Success            bool   `json:"success"`
	Message            string `json:"message,omitempty"`
	VerificationTicket string `json:"verification_ticket"`
}

// ReminderEnvelope wraps single-reminder responses.
type ReminderEnvelope struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Reminder *domain.Reminder `json:"reminder,omitempty"`
}

// RemindersEnvelope wraps reminder list responses.
type RemindersEnvelope struct {
	Success   bool              `json:"success"`
	Count     int               `json:"count"`
	Reminders []domain.Reminder `json:"reminders"`
}

// SafeUser is the client-facing user shape. The password hash never leaves
// the domain type, but being explicit here keeps new fields opt-in.
type SafeUser struct {
	UserID         string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	PhoneNumber    string    `json:"phone_number"`
	WhatsAppNumber string    `json:"whatsapp_number,omitempty"`
	Role           string    `json:"role"`
	IsApproved     bool      `json:"is_approved"`
	IsActive       bool      `json:"is_active"`
	EmailVerified  bool      `json:"email_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:         u.UserID,
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		PhoneNumber:    u.PhoneNumber,
		WhatsAppNumber: u.WhatsAppNumber,
		Role:           u.Role,
		IsApproved:     u.IsApproved,
		IsActive:       u.IsActive,
		EmailVerified:  u.EmailVerified,
		CreatedAt:      u.CreatedAt,
	}
}

func toSafeUsers(users []domain.User) []*SafeUser {
	safe := make([]*SafeUser, len(users))
	for i := range users {
		safe[i] = toSafeUser(&users[i])
	}
	return safe
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Success: false, Message: msg})
}

// writeServiceError maps domain sentinels to HTTP status codes. Anything
// unrecognized is a 500 with the detail kept out of the response.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, userFacing(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, userFacing(err))
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, userFacing(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, userFacing(err))
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// userFacing strips the sentinel suffix ("...: unauthorized") from a wrapped
// domain error, leaving the message meant for the client.
func userFacing(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrBadRequest, domain.ErrConflict, domain.ErrUnauthorized,
		domain.ErrForbidden, domain.ErrNotFound,
	} {
		suffix := ": " + sentinel.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}
