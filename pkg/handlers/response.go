package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse writes the `{error, message}` envelope every endpoint in
// this package uses for failures: a stable machine-readable code plus a
// human-readable message. Returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON success response. The status header is written
// explicitly only for non-200 codes so the common path keeps Encode's
// implicit 200. Returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}
