package model

import "time"

// JobStatus is the lifecycle state of one pipeline run
type JobStatus string

const (
	JobStarted    JobStatus = "started"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is the transient orchestration state for one end-to-end run.
// Progress only ever moves forward; only the owning orchestrator
// goroutine mutates a Job, pollers just read the snapshot it hands out.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"` // Monotonic, 0-100
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ChartID   string    `json:"chart_id,omitempty"` // Set on completion
	Error     string    `json:"error,omitempty"`    // Set on failure
}

// Done reports whether the job reached a terminal state
func (j Job) Done() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
