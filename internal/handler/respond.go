package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the uniform response shape: {success, message, ...extra}.
type envelope map[string]any

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondSuccess(w http.ResponseWriter, message string, extra envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	respond(w, http.StatusOK, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{"success": false, "message": message})
}

// decodeBody parses the JSON request body into dst, limited to 1 MiB.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
