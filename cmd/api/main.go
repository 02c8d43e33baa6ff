package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/clintonluvs29/anime-fiesta/internal/http/handlers"
	"github.com/clintonluvs29/anime-fiesta/internal/http/httpapi"
	"github.com/clintonluvs29/anime-fiesta/internal/infra"
	"github.com/clintonluvs29/anime-fiesta/internal/providers/artbox"
	"github.com/clintonluvs29/anime-fiesta/internal/relay"
)

func main() {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	provider := artbox.NewClient(artbox.Options{
		RESTBaseURL: cfg.ProviderRESTURL,
		SocketURL:   cfg.ProviderSockURL,
		APIKey:      cfg.ProviderAPIKey,
		Logger:      &logger,
	})
	defer provider.Close()

	if provider.Degraded() {
		logger.Warn().Msg("no ARTBOX_API_KEY set; generation requests will be rejected")
	}

	registry := relay.NewRegistry()
	hub := relay.NewHub()
	bridge := relay.NewBridge(relay.BridgeOptions{
		Provider:        provider,
		Registry:        registry,
		Hub:             hub,
		CompletionDelay: cfg.CompletionDelay,
		CleanupDelay:    cfg.CleanupDelay,
		Logger:          &logger,
	})

	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	go bridge.Run(bridgeCtx)

	app := &handlers.App{
		Logger:   logger,
		Gateway:  provider,
		Registry: registry,
		Hub:      hub,
		Bridge:   bridge,
	}

	router := httpapi.NewRouter(app, cfg, logger)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	stopBridge()
	bridge.Stop()
	logger.Info().Msg("server stopped")
}
