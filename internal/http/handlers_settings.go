package httpx

import (
	"errors"
	"net/http"

	"github.com/talentwire/autoapply/internal/service"
)

// SettingsHandlers exposes the runtime poller settings.
type SettingsHandlers struct {
	Svc *service.SettingsService
}

// List returns every persisted setting row.
func (h *SettingsHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.All(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: errors.New("failed to list settings")})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Update sets a single setting. The new value takes effect on the next
// poll cycle without a restart.
func (h *SettingsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("setting key is required")})
		return
	}

	var body struct {
		Value string `json:"value"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	if err := h.Svc.Update(r.Context(), key, body.Value); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": body.Value})
}
