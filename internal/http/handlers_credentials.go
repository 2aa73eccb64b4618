package httpx

import (
	"net/http"

	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/service"
)

// CredentialHandlers accepts manually supplied API tokens and runs
// connection checks against the recruitment platform.
type CredentialHandlers struct {
	Svc        *service.CredentialService
	Connection *service.ConnectionService
}

// Save stores a new credential for a user. The newest credential always
// wins, so posting here replaces whatever token the poller was using.
func (h *CredentialHandlers) Save(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCredentialRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	cred, err := h.Svc.Save(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, cred)
}

// TestConnection verifies the user's stored token by listing their resumes.
func (h *CredentialHandlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	count, err := h.Connection.TestConnection(r.Context(), req.UserID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "resumes": count})
}
