package httpx

import (
	"net/http"
	"strconv"
)

// parseIntQuery reads an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func parseIntQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
