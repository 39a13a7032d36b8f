package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/faelscarpato/capyvision/internal/credential"
	"github.com/faelscarpato/capyvision/internal/gallery"
	"github.com/faelscarpato/capyvision/internal/genai"
	"github.com/faelscarpato/capyvision/internal/http/handlers"
	httpapi "github.com/faelscarpato/capyvision/internal/http/httpapi"
	"github.com/faelscarpato/capyvision/internal/infra"
	"github.com/faelscarpato/capyvision/internal/infra/credentials"
	"github.com/faelscarpato/capyvision/internal/infra/geoip"
	"github.com/faelscarpato/capyvision/internal/middleware"
	"github.com/faelscarpato/capyvision/internal/notify"
	"github.com/faelscarpato/capyvision/internal/pipeline"
	"github.com/faelscarpato/capyvision/internal/storage"
)

// envSecretSource layers the GEMINI_API_KEY environment variable under the
// persisted credential: the stored key wins, the env key keeps single-tenant
// deployments working without the connect flow.
type envSecretSource struct {
	store  *credentials.Store
	envKey string
}

func (s envSecretSource) Secret(ctx context.Context) (string, error) {
	secret, err := s.store.Secret(ctx)
	if err != nil || secret != "" {
		return secret, err
	}
	return strings.TrimSpace(s.envKey), nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare blob storage")
	}
	snapshots, err := storage.NewSnapshotFile(filepath.Join(cfg.StoragePath, "gallery.json"), cfg.GalleryQuotaBytes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare gallery snapshot")
	}

	galleryStore := gallery.NewStore(snapshots, logger)
	galleryStore.Restore(ctx)

	credStore := credentials.NewStore(infra.NewSQLRunner(dbpool, logger))

	var probe credential.Probe
	if cfg.KeyStatusURL != "" {
		probe = credential.NewHTTPProbe(cfg.KeyStatusURL, nil)
	}
	resolver := credential.NewResolver(envSecretSource{store: credStore, envKey: cfg.GeminiAPIKey}, probe, logger)

	dispatcher := pipeline.NewDispatcher(pipeline.DispatcherOptions{
		Resolver: resolver,
		NewBackend: func(secret string) pipeline.Backend {
			return genai.NewClient(genai.Options{
				APIKey:  secret,
				BaseURL: cfg.GeminiBaseURL,
				Logger:  logger,
			})
		},
		Models: pipeline.Models{
			ImagePro: cfg.ImageModelPro,
			Image:    cfg.ImageModel,
			Text:     cfg.TextModel,
			Video:    cfg.VideoModel,
		},
		Video: pipeline.VideoPipelineOptions{
			PollInterval: cfg.PollInterval,
			MaxPolls:     cfg.MaxPolls,
			Blobs:        storage.NewVideoLibrary(files, cfg.StorageBaseURL),
		},
	}, logger)

	var countryLookup middleware.CountryLookup
	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if geo != nil {
		defer geo.Close()
		countryLookup = geo.CountryCode
	}

	app := &handlers.App{
		Dispatcher:  dispatcher,
		Gallery:     galleryStore,
		Credentials: credStore,
		Resolver:    resolver,
		Notifier:    notify.NewLogSink(logger),
		Logger:      logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:        logger,
		DefaultLocale: cfg.DefaultLocale,
		CountryLookup: countryLookup,
		RatePerMinute: cfg.RateLimitPerMin,
		StaticDir:     files.BasePath(),
	})

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
	logger.Info().Msg("server stopped")
}
