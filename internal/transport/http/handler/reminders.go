package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payment-reminder-api/internal/application/reminder"
	"github.com/payment-reminder-api/internal/domain"
	"github.com/payment-reminder-api/internal/pkg/validate"
	"github.com/payment-reminder-api/internal/transport/http/middleware"
)

// ReminderHandler handles payment reminder endpoints.
type ReminderHandler struct {
	svc reminder.Service
}

func NewReminderHandler(svc reminder.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req domain.CreateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "customer name, phone, a positive amount, and a due date (YYYY-MM-DD) are required")
		return
	}
	rem, err := h.svc.Create(r.Context(), sess.UserID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ReminderEnvelope{Success: true, Message: "reminder created", Reminder: rem})
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	reminders, err := h.svc.ListByUser(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reminders == nil {
		reminders = []domain.Reminder{}
	}
	writeJSON(w, http.StatusOK, RemindersEnvelope{Success: true, Count: len(reminders), Reminders: reminders})
}

func (h *ReminderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req struct {
		PaymentStatus string `json:"payment_status" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "payment_status is required")
		return
	}
	rem, err := h.svc.UpdateStatus(r.Context(), sess.UserID, chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReminderEnvelope{Success: true, Message: "payment status updated", Reminder: rem})
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.svc.Delete(r.Context(), sess.UserID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "reminder deleted"})
}

func (h *ReminderHandler) Send(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	rem, err := h.svc.SendManual(r.Context(), sess.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReminderEnvelope{Success: true, Message: "reminder sent", Reminder: rem})
}
