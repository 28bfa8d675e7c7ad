package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rental-agent/internal/models"
)

func newTestStore(t *testing.T) *Store {
	return New(t.TempDir())
}

func TestJobLifecycle(t *testing.T) {
	s := newTestStore(t)

	job := s.AddJob("apply", "prop-1", "Keizersgracht 1", "https://example.test/listing")
	assert.Equal(t, models.JobQueued, job.Status)
	assert.Nil(t, job.StartedAt)
	assert.Nil(t, job.CompletedAt)

	require.NoError(t, s.MarkJobRunning(job.ID))
	got, ok := s.Job(job.ID)
	require.True(t, ok)
	assert.Equal(t, models.JobRunning, got.Status)
	assert.NotNil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, s.CompleteJob(job.ID, "Application submitted", true))
	got, _ = s.Job(job.ID)
	assert.Equal(t, models.JobCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "Application submitted", got.Result)
	assert.True(t, got.UsedAILetter)
}

func TestJobTransitionsAreMonotone(t *testing.T) {
	s := newTestStore(t)
	job := s.AddJob("apply", "prop-1", "", "")

	// running requires queued
	require.NoError(t, s.MarkJobRunning(job.ID))
	assert.Error(t, s.MarkJobRunning(job.ID))

	// terminal is final
	require.NoError(t, s.FailJob(job.ID, "timeout", false))
	assert.Error(t, s.CompleteJob(job.ID, "late success", false))
	assert.Error(t, s.FailJob(job.ID, "again", false))

	got, _ := s.Job(job.ID)
	assert.Equal(t, models.JobFailed, got.Status)
	assert.Equal(t, "timeout", got.Error)
}

func TestFailQueuedJob(t *testing.T) {
	// fail-fast paths (no credential) terminate a job that never ran; the
	// start time is stamped so only queued jobs lack one
	s := newTestStore(t)
	job := s.AddJob("apply", "prop-1", "", "")

	require.NoError(t, s.FailJob(job.ID, "niet verbonden", false))
	got, _ := s.Job(job.ID)
	assert.Equal(t, models.JobFailed, got.Status)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.CompletedAt)
	assert.False(t, got.StartedAt.After(*got.CompletedAt))
}

func TestJobsSortedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	first := s.AddJob("apply", "a", "", "")
	time.Sleep(5 * time.Millisecond)
	second := s.AddJob("apply", "b", "", "")

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestClearTerminalJobs(t *testing.T) {
	s := newTestStore(t)
	done := s.AddJob("apply", "a", "", "")
	running := s.AddJob("apply", "b", "", "")
	queued := s.AddJob("apply", "c", "", "")

	require.NoError(t, s.FailJob(done.ID, "err", false))
	require.NoError(t, s.MarkJobRunning(running.ID))

	removed := s.ClearTerminalJobs()
	assert.Equal(t, 1, removed)

	jobs := s.Jobs()
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Contains(t, []string{running.ID, queued.ID}, j.ID)
	}
}

func TestRemoveJob(t *testing.T) {
	s := newTestStore(t)
	job := s.AddJob("apply", "a", "", "")
	s.RemoveJob(job.ID)
	_, ok := s.Job(job.ID)
	assert.False(t, ok)
}

func TestJobStats(t *testing.T) {
	s := newTestStore(t)
	s.AddJob("apply", "a", "", "")
	b := s.AddJob("apply", "b", "", "")
	require.NoError(t, s.MarkJobRunning(b.ID))

	stats := s.JobStats()
	assert.Equal(t, 1, stats.Queued)
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 2, stats.Total)
}
