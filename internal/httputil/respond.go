package httputil

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// CodedError writes a JSON error response with a stable machine-readable
// code alongside the human-readable detail.
func CodedError(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, map[string]string{"code": code, "error": message})
}
