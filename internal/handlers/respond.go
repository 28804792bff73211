package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/civigo/grievance-backend/internal/repository"
	"github.com/civigo/grievance-backend/internal/services"
)

type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps service errors onto the HTTP taxonomy. Internal
// detail is logged server-side only; clients get a generic message.
func writeError(w http.ResponseWriter, err error) {
	if ve, ok := services.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Missing or malformed fields",
			Fields:  ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "A user with this email already exists"})
	case errors.Is(err, services.ErrBadCredentials):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid email or password"})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Grievance not found"})
	case errors.Is(err, services.ErrResolveForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "Not allowed to resolve this grievance"})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Something went wrong"})
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: message})
}
