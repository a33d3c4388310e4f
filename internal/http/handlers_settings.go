package httpx

import (
	"net/http"

	"github.com/alphaleads/leadsearch/internal/service"
)

// SettingsHandlers provides HTTP handlers for per-user executor credentials.
type SettingsHandlers struct {
	Svc *service.CredentialService
}

type tokenBody struct {
	Token string `json:"token"`
}

// GetProfile handles HTTP requests for the caller's profile. The stored token
// itself is never returned, only whether one is present.
func (h *SettingsHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Svc.GetProfile(r.Context(), UserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// SetToken handles HTTP requests to verify and store an executor token.
func (h *SettingsHandlers) SetToken(w http.ResponseWriter, r *http.Request) {
	var body tokenBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	if err := h.Svc.SetToken(r.Context(), UserID(r.Context()), body.Token); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// VerifyToken handles HTTP requests to check a token without storing it.
func (h *SettingsHandlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var body tokenBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	if err := h.Svc.VerifyToken(r.Context(), body.Token); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// ClearToken handles HTTP requests to remove the stored executor token.
func (h *SettingsHandlers) ClearToken(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.ClearToken(r.Context(), UserID(r.Context())); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
