package handler

import (
	"encoding/json"
	"net/http"

	"github.com/onetodo/auth-api/internal/application/auth"
)

// EmailVerifyHandler consumes email-verification tokens.
type EmailVerifyHandler struct {
	svc auth.Service
}

func NewEmailVerifyHandler(svc auth.Service) *EmailVerifyHandler {
	return &EmailVerifyHandler{svc: svc}
}

func (h *EmailVerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, err := h.svc.VerifyEmailToken(r.Context(), body.Token)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msg})
}
