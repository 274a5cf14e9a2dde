// Package jobstore tracks analysis jobs and caches their results. The
// in-memory store backs development and tests; the postgres store is used
// when a DSN is configured.
package jobstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("jobstore: job not found")
	ErrJobRunning = errors.New("jobstore: cannot delete a running job")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Request is what the caller asked to analyze.
type Request struct {
	RepoPath     string   `json:"repo_path"`
	GitRef       string   `json:"git_ref"`
	ScopeFilters []string `json:"scope_filters,omitempty"`
	Depth        int      `json:"depth,omitempty"`
}

// Job is one analysis run and its lifecycle state.
type Job struct {
	ID        string    `json:"job_id"`
	Status    Status    `json:"status"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
}

// Store is the job lifecycle interface shared by backends.
type Store interface {
	Create(ctx context.Context, req Request) (Job, error)
	Get(ctx context.Context, id string) (Job, error)
	// Update applies fn to the stored job under the store's lock and bumps
	// UpdatedAt.
	Update(ctx context.Context, id string, fn func(*Job)) (Job, error)
	// List returns jobs newest first, optionally filtered by status.
	// A limit <= 0 means no limit.
	List(ctx context.Context, status Status, limit int) ([]Job, error)
	// Delete removes a job; running jobs cannot be deleted.
	Delete(ctx context.Context, id string) error
}
