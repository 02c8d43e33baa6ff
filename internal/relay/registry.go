// Package relay tracks in-flight generation projects and fans provider
// events out to live subscribers. The registry holds project state, the hub
// holds subscriber channels, the bridge consumes the provider stream, and
// the reaper reclaims finished projects after a grace window.
package relay

import (
	"sync"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
)

// Registry is the in-memory table of in-flight projects. It is the sole
// concurrency boundary around project state: the bridge mutates and the HTTP
// handlers read, all through methods that hold the lock.
type Registry struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
}

func NewRegistry() *Registry {
	return &Registry{projects: make(map[string]*domain.Project)}
}

// Create registers a project the provider just accepted. The caller hands
// ownership over; all further access goes through registry methods.
func (r *Registry) Create(p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; ok {
		return domain.ErrProjectExists
	}
	r.projects[p.ID] = p
	return nil
}

// Progress records a raw provider progress value for one job and returns the
// resulting integer percent. A progress report for a pending project moves
// it to running. Finished projects refuse further updates.
func (r *Registry) Progress(projectID, jobID string, raw float64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.State.Terminal() {
		return 0, domain.ErrProjectDone
	}
	j := p.Job(jobID)
	if j == nil {
		return 0, domain.ErrNotFound
	}
	p.Advance(domain.StateRunning)
	j.UpdateProgress(raw)
	return j.Percent(), nil
}

// CompleteJob marks one job finished with its result reference, returning
// the prompt that produced the image for the outbound event. An empty
// resultURL leaves any previously stored reference in place.
func (r *Registry) CompleteJob(projectID, jobID, resultURL string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if p.State.Terminal() {
		return "", domain.ErrProjectDone
	}
	j := p.Job(jobID)
	if j == nil {
		return "", domain.ErrNotFound
	}
	p.Advance(domain.StateRunning)
	j.Done = true
	j.UpdateProgress(1)
	if resultURL != "" {
		j.ResultURL = resultURL
	}
	return j.Prompt, nil
}

// Advance moves a project's lifecycle state, reporting whether it actually
// changed. Terminal states absorb later transitions without error.
func (r *Registry) Advance(projectID string, next domain.State) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return false, domain.ErrNotFound
	}
	return p.Advance(next), nil
}

// Result returns the stored result reference for a finished job.
func (r *Registry) Result(projectID, jobID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[projectID]
	if !ok {
		return "", domain.ErrNotFound
	}
	j := p.Job(jobID)
	if j == nil || !j.Done || j.ResultURL == "" {
		return "", domain.ErrNotFound
	}
	return j.ResultURL, nil
}

// Snapshot returns a point-in-time copy of one project for read endpoints.
func (r *Registry) Snapshot(projectID string) (domain.ProjectSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[projectID]
	if !ok {
		return domain.ProjectSnapshot{}, domain.ErrNotFound
	}
	return p.Snapshot(), nil
}

// Remove drops a project from the table.
func (r *Registry) Remove(projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, projectID)
}

// Len reports how many projects are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects)
}
