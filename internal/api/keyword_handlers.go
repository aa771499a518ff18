package api

import (
	"encoding/json"
	"net/http"

	"github.com/dayloop-io/dayloop/internal/auth"
	"github.com/go-chi/chi/v5"
)

// ListKeywordMappingsHandler returns the person's effective mappings:
// the global buckets overlaid with their own.
func (api *Api) ListKeywordMappingsHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	mappings, err := api.goals.Mappings(r.Context(), person.Key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mappings)
}

type createMappingRequest struct {
	Bucket   string   `json:"bucket"`
	Triggers []string `json:"triggers"`
}

func (api *Api) CreateKeywordMappingHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var req createMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mapping, err := api.goals.AddMapping(r.Context(), person.Key, req.Bucket, req.Triggers)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapping)
}

func (api *Api) DeleteKeywordMappingHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := api.goals.RemoveMapping(r.Context(), person.Key, chi.URLParam(r, "mappingKey")); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
