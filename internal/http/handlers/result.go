package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Result proxies the rendered image bytes for one finished job. The provider
// reference never leaves the server.
func (a *App) Result(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	jobID := chi.URLParam(r, "jobId")

	url, err := a.Registry.Result(projectID, jobID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "result not ready")
		return
	}

	blob, contentType, err := a.Gateway.FetchImage(r.Context(), url)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("result: fetch failed")
		a.error(w, http.StatusBadGateway, "bad_gateway", "failed to fetch image")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
	_, _ = w.Write(blob)
}
