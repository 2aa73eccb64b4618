package httpx

import (
	"errors"
	"net/http"

	"github.com/talentwire/autoapply/internal/data"
	"github.com/talentwire/autoapply/internal/domain/model"
)

// RequestLogHandlers serves the request audit trail.
type RequestLogHandlers struct {
	Repo *data.RequestLogRepo
}

// List returns request log entries, newest first. An optional user_id query
// parameter restricts the listing to one user.
func (h *RequestLogHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts := &model.RequestLogListOptions{
		UserID: r.URL.Query().Get("user_id"),
		Limit:  clampLimit(parseIntQuery(r, "limit", defaultListLimit)),
		Offset: max(parseIntQuery(r, "offset", 0), 0),
	}

	items, err := h.Repo.List(r.Context(), opts)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: errors.New("failed to list request logs")})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
