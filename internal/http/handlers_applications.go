package httpx

import (
	"errors"
	"net/http"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ApplicationHandlers serves the per-user application history.
type ApplicationHandlers struct {
	Repo *data.ApplicationRepo
}

// List returns applications for a user, newest first. Supports job_search_id,
// limit and offset query parameters.
func (h *ApplicationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_error", Err: errors.New("user_id is required")})
		return
	}

	opts := &model.ApplicationListOptions{
		UserID:      userID,
		JobSearchID: r.URL.Query().Get("job_search_id"),
		Limit:       clampLimit(parseIntQuery(r, "limit", defaultListLimit)),
		Offset:      max(parseIntQuery(r, "offset", 0), 0),
	}

	items, err := h.Repo.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: errors.New("failed to list applications")})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
