package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dayloop-io/dayloop/internal/auth"
	"github.com/dayloop-io/dayloop/internal/goals"
	"github.com/dayloop-io/dayloop/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding response: %v", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": fields,
	})
}

// respondServiceError maps domain errors to HTTP responses. Anything
// unrecognized is a 500 with a generic body; the detail only goes to the
// log.
func respondServiceError(w http.ResponseWriter, err error) {
	var fieldErrs auth.FieldErrors
	if errors.As(err, &fieldErrs) {
		respondFieldErrors(w, fieldErrs)
		return
	}

	var validationErr *goals.ValidationError
	if errors.As(err, &validationErr) {
		respondFieldErrors(w, map[string]string{validationErr.Field: validationErr.Message})
		return
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, auth.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, store.ErrDuplicateBucket):
		respondError(w, http.StatusConflict, "Bucket already exists")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
