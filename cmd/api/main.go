package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"prolink-server/internal/adapter/repo"
	"prolink-server/internal/domain"
	"prolink-server/internal/gemini"
	"prolink-server/internal/http/handlers"
	httpapi "prolink-server/internal/http/httpapi"
	"prolink-server/internal/identity"
	"prolink-server/internal/infra"
	"prolink-server/internal/orchestrator"
	"prolink-server/internal/storage"
	"prolink-server/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Project store: Postgres when DATABASE_URL is set, otherwise the
	// file-backed collection under PROJECTS_PATH.
	var projects domain.ProjectRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		projects = repo.NewProjectRepository(dbpool)
		logger.Info().Msg("project store: postgres")
	} else {
		collection, err := storage.NewProjectCollection(cfg.ProjectsPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.ProjectsPath).Msg("failed to open project collection")
		}
		projects = collection
		logger.Info().Str("path", cfg.ProjectsPath).Msg("project store: file collection")
	}

	client := gemini.NewClient(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	provider := gemini.NewProvider(client)

	var verifier *identity.IDTokenVerifier
	if cfg.GoogleClientID != "" {
		verifier = identity.NewIDTokenVerifier(cfg.GoogleIssuer, cfg.GoogleClientID)
	}
	bridge := identity.NewBridge(identity.Options{
		UserinfoURL: cfg.GoogleUserinfoURL,
		Verifier:    verifier,
		Logger:      &logger,
	})

	app := &handlers.App{
		Config:       cfg,
		Logger:       logger,
		Wizards:      wizard.NewStore(wizard.Options{}),
		Projects:     projects,
		Identity:     bridge,
		Orchestrator: orchestrator.New(provider, projects, logger, cfg.VariantCount),
		Editor:       provider,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
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
	logger.Info().Msg("server stopped")
}
