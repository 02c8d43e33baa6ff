package relay

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
	"github.com/clintonluvs29/anime-fiesta/internal/infra"
	"github.com/clintonluvs29/anime-fiesta/internal/providers/artbox"
)

// EventSource is the slice of the provider gateway the bridge consumes.
type EventSource interface {
	Events() <-chan artbox.Event
	CancelProject(ctx context.Context, projectID string) error
	JobResult(ctx context.Context, jobID string) (string, error)
}

// BridgeOptions wires the bridge's collaborators.
type BridgeOptions struct {
	Provider EventSource
	Registry *Registry
	Hub      *Hub

	// CompletionDelay is the settle window between the provider's
	// project-level completion and the terminal transition, so trailing
	// per-job events still land.
	CompletionDelay time.Duration

	// CleanupDelay is how long a finished project stays readable before the
	// reaper reclaims it.
	CleanupDelay time.Duration

	Logger *infra.Logger
}

// Bridge consumes the provider's interleaved event stream and turns it into
// ordered per-project broadcasts, applying the terminal-state policy: once a
// project's terminal event is published, nothing further is published for it.
type Bridge struct {
	provider        EventSource
	registry        *Registry
	hub             *Hub
	reaper          *Reaper
	completionDelay time.Duration
	logger          infra.Logger

	// mu serializes every state-change-plus-broadcast pair. The run loop is
	// a single goroutine; settle timers and HTTP cancels join the same
	// critical section so no event can be published after a terminal one.
	mu sync.Mutex
}

func NewBridge(opts BridgeOptions) *Bridge {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	b := &Bridge{
		provider:        opts.Provider,
		registry:        opts.Registry,
		hub:             opts.Hub,
		completionDelay: opts.CompletionDelay,
		logger:          logger,
	}
	b.reaper = NewReaper(opts.CleanupDelay, b.reap)
	return b
}

// Run consumes provider events until the context is cancelled. Events are
// handled one at a time, which is what preserves per-project ordering end
// to end.
func (b *Bridge) Run(ctx context.Context) {
	b.logger.Info().Msg("bridge: consuming provider events")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("bridge: stopping")
			return
		case evt := <-b.provider.Events():
			b.handle(ctx, evt)
		}
	}
}

// Stop disarms pending reaper timers. Settle timers are left to fire into a
// registry that no longer knows the project, which is a no-op.
func (b *Bridge) Stop() {
	b.reaper.Stop()
}

func (b *Bridge) handle(ctx context.Context, evt artbox.Event) {
	switch evt.Kind {
	case artbox.EventJobProgress:
		b.handleProgress(evt)
	case artbox.EventJobCompleted:
		b.handleJobCompleted(ctx, evt)
	case artbox.EventProjectCompleted:
		b.scheduleCompletion(evt.ProjectID)
	case artbox.EventProjectFailed:
		b.finalize(evt.ProjectID, domain.StateFailed, failReason(evt.Message))
	default:
		b.logger.Debug().Str("kind", string(evt.Kind)).Msg("bridge: ignoring unhandled event kind")
	}
}

func (b *Bridge) handleProgress(evt artbox.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	percent, err := b.registry.Progress(evt.ProjectID, evt.JobID, evt.Progress)
	if err != nil {
		b.logger.Debug().
			Err(err).
			Str("project_id", evt.ProjectID).
			Str("job_id", evt.JobID).
			Msg("bridge: dropping progress event")
		return
	}
	b.hub.Broadcast(domain.ProgressEvent(evt.ProjectID, evt.JobID, percent))
}

func (b *Bridge) handleJobCompleted(ctx context.Context, evt artbox.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	url := evt.ImageURL
	if url == "" {
		// The provider sometimes defers the result reference. Fetching here,
		// inside the critical section, keeps the completion ahead of any
		// settle timer that is about to lock the project.
		fetched, err := b.provider.JobResult(ctx, evt.JobID)
		if err != nil {
			b.logger.Warn().
				Err(err).
				Str("job_id", evt.JobID).
				Msg("bridge: result lookup failed, publishing completion without url")
		} else {
			url = fetched
		}
	}

	prompt, err := b.registry.CompleteJob(evt.ProjectID, evt.JobID, url)
	if err != nil {
		b.logger.Debug().
			Err(err).
			Str("project_id", evt.ProjectID).
			Str("job_id", evt.JobID).
			Msg("bridge: dropping completion event")
		return
	}
	b.hub.Broadcast(domain.JobCompletedEvent(evt.ProjectID, evt.JobID, url, prompt))
}

func (b *Bridge) scheduleCompletion(projectID string) {
	b.logger.Debug().Str("project_id", projectID).Msg("bridge: completion settling")
	time.AfterFunc(b.completionDelay, func() {
		b.finalize(projectID, domain.StateCompleted, "")
	})
}

// finalize applies a terminal transition, publishes the terminal event, and
// arms the reaper. A project that is already terminal or already reaped is
// left alone.
func (b *Bridge) finalize(projectID string, next domain.State, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed, err := b.registry.Advance(projectID, next)
	if err != nil || !changed {
		return
	}
	switch next {
	case domain.StateCompleted:
		b.hub.Broadcast(domain.CompletedEvent(projectID))
		b.logger.Info().Str("project_id", projectID).Msg("bridge: project completed")
	case domain.StateFailed:
		b.hub.Broadcast(domain.FailedEvent(projectID, reason))
		b.logger.Warn().
			Str("project_id", projectID).
			Str("reason", reason).
			Msg("bridge: project failed")
	}
	b.reaper.Schedule(projectID)
}

// Cancel stops a project on user request: best-effort provider cancel, then
// immediate terminal transition and teardown. Cancelling a project that is
// unknown or already gone is a no-op.
func (b *Bridge) Cancel(ctx context.Context, projectID string) {
	if err := b.provider.CancelProject(ctx, projectID); err != nil {
		b.logger.Warn().
			Err(err).
			Str("project_id", projectID).
			Msg("bridge: provider cancel failed")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	changed, err := b.registry.Advance(projectID, domain.StateFailed)
	if err != nil {
		return
	}
	if changed {
		b.hub.Broadcast(domain.FailedEvent(projectID, "cancelled"))
		b.logger.Info().Str("project_id", projectID).Msg("bridge: project cancelled")
	}
	b.reaper.Cancel(projectID)
	// Remove first: a subscriber that sees its stream end must not find the
	// project still registered. Buffered events survive the close.
	b.registry.Remove(projectID)
	b.hub.CloseProject(projectID)
}

func (b *Bridge) reap(projectID string) {
	b.registry.Remove(projectID)
	b.hub.CloseProject(projectID)
	b.logger.Info().Str("project_id", projectID).Msg("bridge: project reaped")
}

func failReason(message string) string {
	if message == "" {
		return "generation failed"
	}
	return message
}
