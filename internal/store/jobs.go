package store

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"go-rental-agent/internal/models"
)

type jobsFile struct {
	Jobs []models.Job `json:"jobs"`
}

// JobStats summarises the ledger for the dashboard.
type JobStats struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// AddJob appends a queued ledger entry for one automation attempt.
func (s *Store) AddJob(jobType, propertyID, propertyName, propertyURL string) models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := models.Job{
		ID:           uuid.New().String(),
		Type:         jobType,
		Status:       models.JobQueued,
		PropertyID:   propertyID,
		PropertyName: propertyName,
		PropertyURL:  propertyURL,
		CreatedAt:    time.Now(),
	}

	jobs := s.readJobs()
	jobs = append(jobs, job)
	s.writeJobs(jobs)
	return job
}

// MarkJobRunning transitions queued → running and stamps startedAt.
func (s *Store) MarkJobRunning(id string) error {
	return s.transition(id, func(j *models.Job) error {
		if j.Status != models.JobQueued {
			return fmt.Errorf("job %s is %s, not queued", id, j.Status)
		}
		now := time.Now()
		j.Status = models.JobRunning
		j.StartedAt = &now
		return nil
	})
}

// CompleteJob transitions running → completed with the success message.
func (s *Store) CompleteJob(id, result string, usedAILetter bool) error {
	return s.terminal(id, models.JobCompleted, func(j *models.Job) {
		j.Result = result
		j.UsedAILetter = usedAILetter
	})
}

// FailJob transitions running (or queued, for fail-fast paths) → failed.
func (s *Store) FailJob(id, errMsg string, usedAILetter bool) error {
	return s.terminal(id, models.JobFailed, func(j *models.Job) {
		j.Error = errMsg
		j.UsedAILetter = usedAILetter
	})
}

func (s *Store) terminal(id string, status models.JobStatus, apply func(*models.Job)) error {
	return s.transition(id, func(j *models.Job) error {
		if j.Status.Terminal() {
			return fmt.Errorf("job %s already terminal (%s)", id, j.Status)
		}
		now := time.Now()
		// a non-queued job always carries a start time, even when a job is
		// closed out before it ever ran
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
		j.Status = status
		j.CompletedAt = &now
		apply(j)
		return nil
	})
}

func (s *Store) transition(id string, mutate func(*models.Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.readJobs()
	for i := range jobs {
		if jobs[i].ID == id {
			if err := mutate(&jobs[i]); err != nil {
				return err
			}
			s.writeJobs(jobs)
			return nil
		}
	}
	return fmt.Errorf("job %s not found", id)
}

// Jobs returns the ledger newest first.
func (s *Store) Jobs() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.readJobs()
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
	return jobs
}

func (s *Store) Job(id string) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.readJobs() {
		if j.ID == id {
			return j, true
		}
	}
	return models.Job{}, false
}

func (s *Store) JobStats() JobStats {
	stats := JobStats{}
	for _, j := range s.Jobs() {
		switch j.Status {
		case models.JobQueued:
			stats.Queued++
		case models.JobRunning:
			stats.Running++
		case models.JobCompleted:
			stats.Completed++
		case models.JobFailed:
			stats.Failed++
		}
		stats.Total++
	}
	return stats
}

func (s *Store) RemoveJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.readJobs()
	kept := jobs[:0]
	for _, j := range jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	s.writeJobs(kept)
}

// ClearTerminalJobs removes completed and failed jobs, returning the count.
func (s *Store) ClearTerminalJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := s.readJobs()
	kept := jobs[:0]
	removed := 0
	for _, j := range jobs {
		if j.Status.Terminal() {
			removed++
			continue
		}
		kept = append(kept, j)
	}
	s.writeJobs(kept)
	return removed
}

func (s *Store) readJobs() []models.Job {
	var file jobsFile
	if err := readJSON(s.jobsPath(), &file); err != nil {
		log.Printf("⚠️ %v", err)
	}
	return file.Jobs
}

func (s *Store) writeJobs(jobs []models.Job) {
	if err := writeJSON(s.jobsPath(), jobsFile{Jobs: jobs}); err != nil {
		log.Printf("⚠️ %v", err)
	}
}
