package httputil

import (
	"encoding/json"
	"log"
	"net/http"

	api_models "wadash-backend/internal/models"
)

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
		// Can't write header again here, just log the error
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, api_models.ErrorResponse{Error: message})
}

// RespondErrorDetails writes a JSON error response carrying extra detail,
// e.g. the provider-supplied failure message.
func RespondErrorDetails(w http.ResponseWriter, statusCode int, message, details string) {
	RespondJSON(w, statusCode, api_models.ErrorResponse{Error: message, Details: details})
}
