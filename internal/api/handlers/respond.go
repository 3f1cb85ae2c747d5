package handlers

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func respondValidationError(w http.ResponseWriter, verr *ValidationError) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  verr.Message,
		"fields": verr.Fields,
	})
}
