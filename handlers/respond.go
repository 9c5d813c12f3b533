package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"habitLogAPI/internal/guard"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps the missing-store sentinel to an actionable
// 409 telling the caller to run initialization; anything else is a 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, guard.ErrMissingStore) {
		respondWithError(w, http.StatusConflict, "Store not initialized. Call POST /api/v1/admin/initialize first.")
		return
	}
	respondWithError(w, http.StatusInternalServerError, err.Error())
}
