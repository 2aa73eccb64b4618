package httpx

import (
	"net/http"

	"github.com/talentwire/autoapply/internal/service"
)

// PollerHandlers exposes lifecycle control over the polling loop.
type PollerHandlers struct {
	Svc *service.AutoApplyService
}

// Status reports whether the polling loop is active.
func (h *PollerHandlers) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"running": h.Svc.IsRunning()})
}

// Start launches the polling loop. Idempotent.
func (h *PollerHandlers) Start(w http.ResponseWriter, r *http.Request) {
	h.Svc.Start()
	WriteJSON(w, http.StatusOK, map[string]bool{"running": true})
}

// Stop signals the polling loop to exit. Idempotent.
func (h *PollerHandlers) Stop(w http.ResponseWriter, r *http.Request) {
	h.Svc.Stop()
	WriteJSON(w, http.StatusOK, map[string]bool{"running": false})
}

// RunOnce executes a single poll pass synchronously. An optional user_id
// query parameter restricts the pass to one user.
func (h *PollerHandlers) RunOnce(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Svc.RunOnce(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		if r.Context().Err() != nil {
			// client went away mid-pass
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
