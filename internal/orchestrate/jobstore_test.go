package orchestrate

import (
	"testing"
	"time"

	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStore_PutAndGet(t *testing.T) {
	store := NewJobStore(model.JobsConfig{})

	job := model.Job{ID: "j1", Status: model.JobStarted, CreatedAt: time.Now()}
	store.put(job)

	got, ok := store.Get("j1")
	require.True(t, ok)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, model.JobStarted, got.Status)
	assert.Equal(t, 1, store.Len())

	// A later put replaces the snapshot in place
	job.Status = model.JobCompleted
	job.Progress = 100
	store.put(job)

	got, ok = store.Get("j1")
	require.True(t, ok)
	assert.Equal(t, model.JobCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 1, store.Len())
}

func TestJobStore_UnknownIDs(t *testing.T) {
	store := NewJobStore(model.JobsConfig{})

	_, ok := store.Get("missing")
	assert.False(t, ok)

	_, ok = store.Chart("missing")
	assert.False(t, ok)
}

func TestJobStore_Charts(t *testing.T) {
	store := NewJobStore(model.JobsConfig{})

	report := &model.Report{Subject: "house-build"}
	store.PutChart("c1", report)

	got, ok := store.Chart("c1")
	require.True(t, ok)
	assert.Same(t, report, got)
}

func TestJobStore_ExpiredJobsEvicted(t *testing.T) {
	store := NewJobStore(model.JobsConfig{
		TTL:             20 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
	})

	store.put(model.Job{ID: "j1"})
	time.Sleep(50 * time.Millisecond)

	_, ok := store.Get("j1")
	assert.False(t, ok, "jobs past their TTL must not be pollable")
}
