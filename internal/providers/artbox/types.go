package artbox

// EventKind tags provider notifications after boundary normalization.
type EventKind string

const (
	EventJobProgress      EventKind = "job.progress"
	EventJobCompleted     EventKind = "job.completed"
	EventProjectCompleted EventKind = "project.completed"
	EventProjectFailed    EventKind = "project.failed"
)

// Event is one provider notification in normalized form. Progress carries the
// raw provider ratio for job.progress; ImageURL may be empty on job.completed
// when the provider defers the result reference; Message holds the failure
// reason for project.failed.
type Event struct {
	Kind      EventKind
	ProjectID string
	JobID     string
	Progress  float64
	ImageURL  string
	Message   string
}

// StartRequest describes one batch generation to launch.
type StartRequest struct {
	Prompt    string
	Count     int
	Character string
	SceneType string
	Seed      *int64
}

// StartResponse is the provider's acceptance of a batch: the project id plus
// the sub-task ids in render order.
type StartResponse struct {
	ProjectID string
	JobIDs    []string
}

type startRequest struct {
	Prompt    string `json:"prompt"`
	Count     int    `json:"count"`
	Character string `json:"character,omitempty"`
	SceneType string `json:"scene_type,omitempty"`
	Seed      *int64 `json:"seed,omitempty"`
}

type startResponse struct {
	ProjectID string   `json:"project_id"`
	JobIDs    []string `json:"job_ids"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
}

type resultResponse struct {
	ImageURL string `json:"image_url"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// wireEvent is the raw socket frame shape. Unknown types are dropped at this
// boundary instead of leaking untyped payloads inward.
type wireEvent struct {
	Type      string   `json:"type"`
	ProjectID string   `json:"project_id"`
	JobID     string   `json:"job_id,omitempty"`
	Progress  *float64 `json:"progress,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
	Message   string   `json:"message,omitempty"`
}
