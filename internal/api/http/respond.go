package http

import (
	"encoding/json"
	"net/http"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/logger"
)

// envelope is the uniform response body: {"success": true, "data": ...} on
// the happy path, {"success": false, "error": "..."} otherwise.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondList includes the count field list consumers expect.
func respondList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Count: &count})
}

func respondError(w http.ResponseWriter, err error) {
	status := apperrors.Status(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		// Classified failures (e.g. a down email provider) keep their
		// message; anything unclassified stays in the logs only.
		if !apperrors.IsKind(err, apperrors.KindDependency) {
			message = "internal server error"
		}
	}
	writeJSON(w, status, envelope{Success: false, Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid request body"})
		return false
	}
	return true
}
