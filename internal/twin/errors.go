package twin

import (
	"encoding/json"
	"errors"
	"net/http"
)

var errBadPageToken = errors.New("invalid page token")

// writeJSON writes v with the given status. Encoding failures are dropped:
// the header is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes Google's error envelope:
// {"error": {"code": 404, "message": "...", "status": "NOT_FOUND"}}.
func writeError(w http.ResponseWriter, code int, status, message string) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

// writeOAuthError writes the RFC 6749 token endpoint error form.
func writeOAuthError(w http.ResponseWriter, code int, errCode, description string) {
	writeJSON(w, code, map[string]any{
		"error":             errCode,
		"error_description": description,
	})
}
