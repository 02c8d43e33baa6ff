package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Cancel stops a running project. Cancelling an unknown or already finished
// project still reports success; the outcome is the same either way.
func (a *App) Cancel(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	a.Bridge.Cancel(r.Context(), projectID)
	a.json(w, http.StatusOK, map[string]bool{"ok": true})
}
