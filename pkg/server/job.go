package server

import (
	"context"
	"sync"
	"time"

	"github.com/user/storyreel/pkg/timeline"
)

// job tracks one compile submitted over HTTP.
type job struct {
	id        string
	title     string
	createdAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	mu         sync.RWMutex
	updatedAt  time.Time
	finishedAt time.Time
	progress   timeline.Progress
	result     *timeline.Result
	err        error
}

func newJob(id, title string, now time.Time, cancel context.CancelFunc) *job {
	return &job{
		id:        id,
		title:     title,
		createdAt: now,
		updatedAt: now,
		cancel:    cancel,
		done:      make(chan struct{}),
		progress:  timeline.Progress{State: timeline.StateIdle, SceneIndex: -1},
	}
}

func (j *job) update(p timeline.Progress) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.progress = p
	j.updatedAt = time.Now()
}

func (j *job) complete(result timeline.Result, err error, now time.Time) {
	j.mu.Lock()
	j.result = &result
	j.err = err
	j.progress.State = result.State
	j.updatedAt = now
	j.finishedAt = now
	j.mu.Unlock()
	close(j.done)
}

// endedAt returns when the job finished, or false while it runs.
func (j *job) endedAt() (time.Time, bool) {
	if !j.finished() {
		return time.Time{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.finishedAt, true
}

func (j *job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// JobStatus is the JSON view of a job.
type JobStatus struct {
	JobID       string           `json:"jobId"`
	Title       string           `json:"title"`
	State       timeline.State   `json:"state"`
	Percent     int              `json:"percent"`
	SceneIndex  int              `json:"sceneIndex"`
	SceneID     string           `json:"sceneId,omitempty"`
	Message     string           `json:"message,omitempty"`
	Error       string           `json:"error,omitempty"`
	DownloadURL string           `json:"downloadUrl,omitempty"`
	Result      *timeline.Result `json:"result,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (j *job) status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s := JobStatus{
		JobID:      j.id,
		Title:      j.title,
		State:      j.progress.State,
		Percent:    j.progress.Percent,
		SceneIndex: j.progress.SceneIndex,
		SceneID:    j.progress.SceneID,
		Message:    j.progress.Message,
		Result:     j.result,
		CreatedAt:  j.createdAt,
		UpdatedAt:  j.updatedAt,
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	if j.result != nil && j.result.Blob != nil {
		s.DownloadURL = "/api/jobs/" + j.id + "/download"
	}
	return s
}
