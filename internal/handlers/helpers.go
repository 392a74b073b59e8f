package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mokoena/sla-app/internal/auth"
	"github.com/mokoena/sla-app/internal/httpx"
)

// decodeJSON decodes the request body into dst and writes the error
// response itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

// idParam reads an entity id from the ?id= query parameter.
func idParam(r *http.Request) (uint, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return 0, false
	}
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// currentUserID returns the authenticated user's id, zero when absent.
// Routes behind RequireAuth always have one; audit writes tolerate zero.
func currentUserID(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}
