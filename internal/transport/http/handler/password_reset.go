package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onetodo/auth-api/internal/application/auth"
)

// PasswordResetHandler handles the password reset flow endpoints.
type PasswordResetHandler struct {
	svc auth.Service
}

func NewPasswordResetHandler(svc auth.Service) *PasswordResetHandler {
	return &PasswordResetHandler{svc: svc}
}

func (h *PasswordResetHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req auth.ResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		msg, err := h.svc.RequestPasswordReset(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: msg})
	case "verify":
		// Probe leg: reports whether the reset form may be shown. The token
		// stays untouched; completion re-validates it.
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email, err := h.svc.VerifyResetToken(r.Context(), body.Token)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ResetEnvelope{Status: true, Email: email, Message: "valid token"})
	case "complete":
		var req auth.CompleteResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		msg, err := h.svc.CompleteReset(r.Context(), req)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ResetEnvelope{Status: true, Message: msg})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
