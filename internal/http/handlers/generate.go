package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
	"github.com/clintonluvs29/anime-fiesta/internal/prompt"
	"github.com/clintonluvs29/anime-fiesta/internal/providers/artbox"
)

type generateRequest struct {
	Prompt    string `json:"prompt"`
	Character string `json:"character"`
	SceneType string `json:"sceneType"`
	Seed      *int64 `json:"seed"`
}

type generateJob struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

type generateResponse struct {
	ProjectID string        `json:"projectId"`
	Jobs      []generateJob `json:"jobs"`
}

// Generate launches one batch render and registers it for event relay.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	composed := prompt.Compose(req.Prompt, req.Character, req.SceneType)
	out, err := a.Gateway.StartProject(r.Context(), artbox.StartRequest{
		Prompt:    composed,
		Count:     prompt.BatchSize,
		Character: req.Character,
		SceneType: req.SceneType,
		Seed:      req.Seed,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProviderUnavailable):
			a.Logger.Warn().Err(err).Msg("generate: provider unavailable")
			a.error(w, http.StatusServiceUnavailable, "provider_unavailable", "image provider is not available")
		case errors.Is(err, domain.ErrInvalidPrompt):
			a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		default:
			a.Logger.Error().Err(err).Msg("generate: provider start failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to start generation")
		}
		return
	}

	project := domain.NewProject(out.ProjectID, out.JobIDs, composed)
	if err := a.Registry.Create(project); err != nil {
		a.Logger.Error().Err(err).Str("project_id", out.ProjectID).Msg("generate: register failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to register project")
		return
	}

	jobs := make([]generateJob, len(project.Jobs))
	for i, j := range project.Jobs {
		jobs[i] = generateJob{ID: j.ID, Index: j.Index}
	}
	a.Logger.Info().
		Str("project_id", project.ID).
		Int("jobs", len(jobs)).
		Msg("generate: project registered")
	a.json(w, http.StatusOK, generateResponse{ProjectID: project.ID, Jobs: jobs})
}
