package api

import (
	"sync"
	"time"
)

// ExportStatus represents the current state of an export job
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportRunning   ExportStatus = "running"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// ExportJob represents a single account export
type ExportJob struct {
	ID        string       `json:"id"`
	PersonKey string       `json:"-"`
	Status    ExportStatus `json:"status"`
	ObjectKey string       `json:"object_key,omitempty"`
	URL       string       `json:"url,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ExportStore tracks export jobs in memory. Jobs do not survive a restart;
// a client that loses one simply starts another.
type ExportStore struct {
	mu   sync.RWMutex
	jobs map[string]*ExportJob
}

// NewExportStore creates an empty store.
func NewExportStore() *ExportStore {
	return &ExportStore{jobs: make(map[string]*ExportJob)}
}

// Add registers a job.
func (s *ExportStore) Add(job *ExportJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// Get returns a snapshot of a job.
func (s *ExportStore) Get(id string) (ExportJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return ExportJob{}, false
	}
	return *job, true
}

// SetRunning moves a job into the running state.
func (s *ExportStore) SetRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = ExportRunning
		job.UpdatedAt = time.Now()
	}
}

// Complete records where the archive landed.
func (s *ExportStore) Complete(id, objectKey, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = ExportCompleted
		job.ObjectKey = objectKey
		job.URL = url
		job.UpdatedAt = time.Now()
	}
}

// Fail records a failure message.
func (s *ExportStore) Fail(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = ExportFailed
		job.Error = message
		job.UpdatedAt = time.Now()
	}
}
