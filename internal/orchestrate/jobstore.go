package orchestrate

import (
	"time"

	"github.com/ovachev/planproof/internal/model"
	gocache "github.com/patrickmn/go-cache"
)

// JobStore keeps job state and finished reports in memory with a TTL,
// so callers can poll long-running validations and fetch results by
// chart id. Expired entries are evicted by the underlying cache.
type JobStore struct {
	jobs   *gocache.Cache
	charts *gocache.Cache
}

// NewJobStore creates a store with the configured TTL
func NewJobStore(cfg model.JobsConfig) *JobStore {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &JobStore{
		jobs:   gocache.New(ttl, cleanup),
		charts: gocache.New(ttl, cleanup),
	}
}

// put stores or replaces a job snapshot
func (s *JobStore) put(job model.Job) {
	s.jobs.SetDefault(job.ID, job)
}

// Get returns a job snapshot by id
func (s *JobStore) Get(id string) (model.Job, bool) {
	v, ok := s.jobs.Get(id)
	if !ok {
		return model.Job{}, false
	}
	job, ok := v.(model.Job)
	return job, ok
}

// PutChart stores a finished report under its chart id
func (s *JobStore) PutChart(id string, report *model.Report) {
	s.charts.SetDefault(id, report)
}

// Chart returns a stored report by chart id
func (s *JobStore) Chart(id string) (*model.Report, bool) {
	v, ok := s.charts.Get(id)
	if !ok {
		return nil, false
	}
	report, ok := v.(*model.Report)
	return report, ok
}

// Len returns the number of live jobs
func (s *JobStore) Len() int {
	return s.jobs.ItemCount()
}
