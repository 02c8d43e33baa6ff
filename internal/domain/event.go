package domain

// EventType tags the closed set of stream event variants.
type EventType string

const (
	EventProgress     EventType = "progress"
	EventJobCompleted EventType = "jobCompleted"
	EventCompleted    EventType = "completed"
	EventFailed       EventType = "failed"
)

// Event is one normalized message broadcast to a project's subscribers.
// Fields beyond ProjectID and Type are variant-specific: Percent for
// progress, ResultURL/Prompt for jobCompleted, Reason for failed. Percent is
// a pointer so a genuine 0 survives omitempty.
type Event struct {
	ProjectID string    `json:"projectId"`
	Type      EventType `json:"type"`
	JobID     string    `json:"jobId,omitempty"`
	Percent   *int      `json:"percent,omitempty"`
	ResultURL string    `json:"resultUrl,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// ProgressEvent reports a job at percent complete, already rounded to 0..100.
func ProgressEvent(projectID, jobID string, percent int) Event {
	return Event{ProjectID: projectID, Type: EventProgress, JobID: jobID, Percent: &percent}
}

// JobCompletedEvent reports one finished image with the prompt that produced it.
func JobCompletedEvent(projectID, jobID, resultURL, prompt string) Event {
	return Event{ProjectID: projectID, Type: EventJobCompleted, JobID: jobID, ResultURL: resultURL, Prompt: prompt}
}

// CompletedEvent reports the whole project as done.
func CompletedEvent(projectID string) Event {
	return Event{ProjectID: projectID, Type: EventCompleted}
}

// FailedEvent reports terminal failure with the provider's reason.
func FailedEvent(projectID, reason string) Event {
	return Event{ProjectID: projectID, Type: EventFailed, Reason: reason}
}
