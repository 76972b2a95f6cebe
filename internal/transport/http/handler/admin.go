package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/payment-reminder-api/internal/application/admin"
)

// AdminHandler handles user administration endpoints.
type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler { return &AdminHandler{svc: svc} }

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UsersEnvelope{Success: true, Count: len(users), Users: toSafeUsers(users)})
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UsersEnvelope{Success: true, Count: len(users), Users: toSafeUsers(users)})
}

func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, User: toSafeUser(u)})
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, Message: "user approved", User: toSafeUser(u)})
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "registration rejected"})
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, Message: "user deactivated", User: toSafeUser(u)})
}

func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Reactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, Message: "user reactivated", User: toSafeUser(u)})
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Success: true, Message: "role updated", User: toSafeUser(u)})
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "user deleted"})
}
