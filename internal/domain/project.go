package domain

import (
	"math"
	"time"
)

// State enumerates project lifecycle states.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Project is one batch generation request tracked by the registry. The
// provider assigns the identifier; the event bridge owns all mutation.
type Project struct {
	ID        string
	Jobs      []*Job
	State     State
	CreatedAt time.Time
}

// NewProject builds a pending project with one job per provider sub-task id,
// in provider order. Every job carries the prompt that produced the batch.
func NewProject(id string, jobIDs []string, prompt string) *Project {
	jobs := make([]*Job, len(jobIDs))
	for i, jobID := range jobIDs {
		jobs[i] = &Job{
			ID:        jobID,
			ProjectID: id,
			Index:     i,
			Prompt:    prompt,
		}
	}
	return &Project{
		ID:        id,
		Jobs:      jobs,
		State:     StatePending,
		CreatedAt: time.Now().UTC(),
	}
}

// Job returns the sub-task with the given id, or nil when unknown.
func (p *Project) Job(jobID string) *Job {
	for _, j := range p.Jobs {
		if j.ID == jobID {
			return j
		}
	}
	return nil
}

// Advance applies a state transition if it is monotonic. Terminal states
// absorb everything; regressions are dropped. Reports whether the state
// actually changed.
func (p *Project) Advance(next State) bool {
	if p.State.Terminal() || p.State == next {
		return false
	}
	if p.State == StateRunning && next == StatePending {
		return false
	}
	p.State = next
	return true
}

// Job is one sub-task (a single image) within a project. Progress holds the
// raw clamped provider value; rounding to integer percent happens only when
// an outbound event is built.
type Job struct {
	ID        string
	ProjectID string
	Index     int
	Progress  float64
	ResultURL string
	Prompt    string
	Done      bool
}

// UpdateProgress clamps raw to [0,1] and stores it only when it does not
// regress, keeping observed progress monotonic. Returns the stored value.
func (j *Job) UpdateProgress(raw float64) float64 {
	clamped := raw
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 1 {
		clamped = 1
	}
	if clamped > j.Progress {
		j.Progress = clamped
	}
	return j.Progress
}

// Percent is the stored progress rounded to 0..100 for outbound reporting.
func (j *Job) Percent() int {
	return int(math.Round(j.Progress * 100))
}

// ProjectSnapshot is a point-in-time copy of a project, safe to serialize
// after the registry lock is released.
type ProjectSnapshot struct {
	ProjectID string        `json:"projectId"`
	State     State         `json:"state"`
	CreatedAt time.Time     `json:"createdAt"`
	Jobs      []JobSnapshot `json:"jobs"`
}

// JobSnapshot mirrors one job for read endpoints.
type JobSnapshot struct {
	ID        string `json:"id"`
	Index     int    `json:"index"`
	Percent   int    `json:"percent"`
	Done      bool   `json:"done"`
	ResultURL string `json:"resultUrl,omitempty"`
}

// Snapshot copies the project's current shape.
func (p *Project) Snapshot() ProjectSnapshot {
	jobs := make([]JobSnapshot, len(p.Jobs))
	for i, j := range p.Jobs {
		jobs[i] = JobSnapshot{
			ID:        j.ID,
			Index:     j.Index,
			Percent:   j.Percent(),
			Done:      j.Done,
			ResultURL: j.ResultURL,
		}
	}
	return ProjectSnapshot{
		ProjectID: p.ID,
		State:     p.State,
		CreatedAt: p.CreatedAt,
		Jobs:      jobs,
	}
}
