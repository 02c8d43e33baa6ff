package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// How often an idle stream emits a comment so intermediaries keep the
// connection open.
const keepaliveInterval = 30 * time.Second

// Progress streams a project's events as server-sent events until the
// project is torn down or the client goes away. There is no replay: a
// subscriber sees only what happens after it attaches.
func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	if _, err := a.Registry.Snapshot(projectID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown project")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := a.Hub.Attach(projectID)
	defer a.Hub.Detach(projectID, ch)

	a.Logger.Debug().Str("project_id", projectID).Msg("progress: subscriber attached")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				a.Logger.Error().Err(err).Msg("progress: marshal event")
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
