package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clintonluvs29/anime-fiesta/internal/infra"
	"github.com/clintonluvs29/anime-fiesta/internal/providers/artbox"
	"github.com/clintonluvs29/anime-fiesta/internal/relay"
)

// Gateway is the slice of the render provider the HTTP layer calls directly.
// Event consumption goes through the bridge instead.
type Gateway interface {
	StartProject(ctx context.Context, req artbox.StartRequest) (artbox.StartResponse, error)
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// App aggregates the collaborators the HTTP handlers need.
type App struct {
	Logger   infra.Logger
	Gateway  Gateway
	Registry *relay.Registry
	Hub      *relay.Hub
	Bridge   *relay.Bridge
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
