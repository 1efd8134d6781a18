package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the same {"error":{"code","message"}} body the handlers
// produce, for requests rejected before they reach a handler.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
