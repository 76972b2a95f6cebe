package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/payment-reminder-api/internal/application/otp"
	"github.com/payment-reminder-api/internal/application/session"
	"github.com/payment-reminder-api/internal/application/user"
	"github.com/payment-reminder-api/internal/domain"
	"github.com/payment-reminder-api/internal/pkg/validate"
	"github.com/payment-reminder-api/internal/transport/http/middleware"
)

// AuthHandler handles registration, OTP verification, and session endpoints.
type AuthHandler struct {
	otps         otp.Service
	users        user.Service
	sessions     session.Service
	cookieSecure bool
	sessionTTL   time.Duration
}

func NewAuthHandler(otps otp.Service, users user.Service, sessions session.Service, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		otps:         otps,
		users:        users,
		sessions:     sessions,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if err := h.otps.Request(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "verification code sent"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and 6-digit code are required")
		return
	}
	ticket, err := h.otps.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TicketEnvelope{
		Success:            true,
		Message:            "email verified",
		VerificationTicket: ticket,
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid registration fields")
		return
	}
	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserEnvelope{
		Success: true,
		Message: "registration successful, awaiting admin approval",
		User:    toSafeUser(u),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	sess, err := h.sessions.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setSessionCookie(w, sess.Token)
	writeJSON(w, http.StatusOK, sessionEnvelope(sess, "login successful"))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.sessions.Logout(r.Context(), sess.Token); err != nil {
		writeServiceError(w, err)
		return
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "logged out"})
}

// Status re-reads the user row so approval or deactivation done after login
// is visible immediately.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	fresh, err := h.sessions.RefreshSnapshot(r.Context(), sess.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionEnvelope(fresh, ""))
}

// PendingStatus tells an unapproved user where their registration stands.
func (h *AuthHandler) PendingStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	fresh, err := h.sessions.RefreshSnapshot(r.Context(), sess.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	msg := "your account is pending admin approval"
	if fresh.IsApproved {
		msg = "your account has been approved"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     msg,
		"is_approved": fresh.IsApproved,
		"is_active":   fresh.IsActive,
	})
}

func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	inUse, err := h.users.EmailInUse(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "available": !inUse})
}

func (h *AuthHandler) CheckPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phone_number" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "a phone number is required")
		return
	}
	inUse, err := h.users.PhoneInUse(r.Context(), req.PhoneNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "available": !inUse})
}

func sessionEnvelope(sess *domain.Session, msg string) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"message": msg,
		"user": map[string]interface{}{
			"id":          sess.UserID,
			"username":    sess.Username,
			"email":       sess.Email,
			"full_name":   sess.FullName,
			"role":        sess.Role,
			"is_approved": sess.IsApproved,
			"is_active":   sess.IsActive,
		},
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
