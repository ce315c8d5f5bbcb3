package common

import (
	"encoding/json"
	"net/http"

	"github.com/sngm3741/coffee-map/internal/logger"
)

// ErrorResponse is the body of every failed UI request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(log logger.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && log != nil {
		log.WithError(err).Error("failed to encode JSON response", nil)
	}
}

// WriteError writes {"error": message}.
func WriteError(log logger.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(log, w, status, ErrorResponse{Error: message})
}
