package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Status returns a point-in-time snapshot of one project.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	snap, err := a.Registry.Snapshot(projectID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "unknown project")
		return
	}
	a.json(w, http.StatusOK, snap)
}
