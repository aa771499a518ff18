package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dayloop-io/dayloop/internal/auth"
	"github.com/dayloop-io/dayloop/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// StartExportHandler enqueues an account export: the person's goals and
// keyword mappings, marshaled to JSON and uploaded to object storage.
func (api *Api) StartExportHandler(w http.ResponseWriter, r *http.Request) {
	if api.uploader == nil {
		respondError(w, http.StatusServiceUnavailable, "Export storage is not configured")
		return
	}

	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	job := &ExportJob{
		ID:        uuid.NewString(),
		PersonKey: person.Key,
		Status:    ExportPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	api.exports.Add(job)

	go api.runExport(job.ID, person)

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// ExportStatusHandler reports on a job the caller owns.
func (api *Api) ExportStatusHandler(w http.ResponseWriter, r *http.Request) {
	person, err := auth.RequirePerson(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	job, ok := api.exports.Get(chi.URLParam(r, "jobID"))
	if !ok || job.PersonKey != person.Key {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// runExport does the actual work off the request goroutine.
func (api *Api) runExport(jobID string, person *models.Person) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	api.exports.SetRunning(jobID)

	data, err := api.goals.Export(ctx, person)
	if err != nil {
		log.Printf("[EXPORT] Job %s failed collecting data: %v", jobID, err)
		api.exports.Fail(jobID, "failed to collect account data")
		return
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		api.exports.Fail(jobID, "failed to encode account data")
		return
	}

	objectKey := fmt.Sprintf("exports/%s/%s.json", person.Key, jobID)
	result, err := api.uploader.Upload(ctx, objectKey, bytes.NewReader(payload), "application/json")
	if err != nil {
		log.Printf("[EXPORT] Job %s failed uploading: %v", jobID, err)
		api.exports.Fail(jobID, "failed to upload archive")
		return
	}

	api.exports.Complete(jobID, result.Key, result.URL)
	log.Printf("[EXPORT] Job %s completed: %s (%d bytes)", jobID, result.Key, result.Size)
}
