package httpx

import (
	"errors"
	"net/http"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
	"github.com/talentwire/autoapply/internal/service"
)

// JobSearchHandlers provides HTTP handlers for job search configurations.
type JobSearchHandlers struct {
	Svc *service.JobSearchService
}

// Create registers a new job search for a user.
func (h *JobSearchHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobSearchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	js, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, js)
}

// List returns every job search belonging to the user_id query parameter.
func (h *JobSearchHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get returns one job search by id.
func (h *JobSearchHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job search id is required")})
		return
	}

	js, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, data.ErrJobSearchNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, js)
}

// Activate enables a job search so the polling loop picks it up.
func (h *JobSearchHandlers) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate removes a job search from the polling rotation without
// deleting its history.
func (h *JobSearchHandlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *JobSearchHandlers) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job search id is required")})
		return
	}

	js, err := h.Svc.SetActive(r.Context(), id, active)
	if err != nil {
		if errors.Is(err, data.ErrJobSearchNotFound) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: err})
			return
		}
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, js)
}
