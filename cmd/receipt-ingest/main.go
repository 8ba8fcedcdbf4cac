package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/tendant/receipt-ingestion/internal/config"
	"github.com/tendant/receipt-ingestion/internal/dbosruntime"
	"github.com/tendant/receipt-ingestion/internal/gates"
	"github.com/tendant/receipt-ingestion/internal/handlers"
	"github.com/tendant/receipt-ingestion/internal/identity"
	"github.com/tendant/receipt-ingestion/internal/ingest"
	"github.com/tendant/receipt-ingestion/internal/logging"
	"github.com/tendant/receipt-ingestion/internal/metrics"
	"github.com/tendant/receipt-ingestion/internal/queue"
	"github.com/tendant/receipt-ingestion/internal/storage"
	"github.com/tendant/receipt-ingestion/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "receipt-ingest",
	})

	ctx := context.Background()
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("failed to initialize storage")
	}
	cleanups = append(cleanups, closeStore)
	log.Info().Str("backend", cfg.StorageBackend).Str("bucket", cfg.DestinationBucket).Msg("storage ready")

	dir, closeDir, err := openDirectory(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.IdentityBackend).Msg("failed to initialize identity directory")
	}
	cleanups = append(cleanups, closeDir)
	log.Info().Str("backend", cfg.IdentityBackend).Msg("identity directory ready")

	announcer, closeAnnouncer, err := openAnnouncer(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.QueueBackend).Msg("failed to initialize extraction queue")
	}
	cleanups = append(cleanups, closeAnnouncer)
	log.Info().Str("backend", cfg.QueueBackend).Str("topic", cfg.ExtractionTopic).Msg("extraction queue ready")

	// Moderation and OCR stay nil when disabled so their gates are skipped
	var moderator gates.Moderator
	var ocr gates.TextDetector
	if cfg.VisionDisabled {
		log.Warn().Msg("vision disabled: safety and quality gates will be skipped")
	} else {
		vc, err := vision.New(ctx, vision.Config{
			Endpoint:     cfg.VisionEndpoint,
			APIKey:       cfg.VisionAPIKey,
			MaxDimension: cfg.VisionMaxDimension,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize vision client")
		}
		moderator, ocr = vc, vc
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewProm("receipt_ingest", reg)

	p := ingest.New(ingest.Config{
		DestinationBucket:   cfg.DestinationBucket,
		MaxFileSizeMB:       cfg.MaxFileSizeMB,
		AllowedContentTypes: cfg.AllowedContentTypes,
	}, ingest.Deps{
		Directory: dir,
		Moderator: moderator,
		OCR:       ocr,
		Store:     store,
		Announcer: announcer,
		Metrics:   m,
		Logger:    log,
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		Ingress:        handlers.NewIngressHandler(p, store, m, log),
		Metrics:        metrics.Handler(reg),
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Int("max_file_size_mb", cfg.MaxFileSizeMB).Strs("allowed_types", cfg.AllowedContentTypes).Msg("receipt ingestion gateway starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		s, err := storage.NewS3StorageFromEnv(ctx, cfg.AWSRegion, cfg.AWSEndpointURL)
		return s, func() {}, err
	case config.StorageRedis:
		s, err := storage.NewRedisStorage(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		s, err := storage.NewFilesystemStorage(cfg.StorageDir)
		return s, func() {}, err
	}
}

func openDirectory(ctx context.Context, cfg config.Config) (identity.Directory, func(), error) {
	switch cfg.IdentityBackend {
	case config.IdentityPostgres:
		d, err := identity.OpenPostgresDirectory(ctx, cfg.IdentityDatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil
	case config.IdentityFirebase:
		d, err := identity.NewFirebaseDirectory(ctx, cfg.ProjectID)
		return d, func() {}, err
	default:
		d, err := identity.ParseStatic(cfg.IdentityStatic)
		return d, func() {}, err
	}
}

func openAnnouncer(ctx context.Context, cfg config.Config, log zerolog.Logger) (queue.Announcer, func(), error) {
	switch cfg.QueueBackend {
	case config.QueueDBOS:
		rt, err := dbosruntime.NewRuntime(ctx, dbosruntime.Config{
			DatabaseURL: cfg.DBOSDatabaseURL,
			AppName:     cfg.DBOSAppName,
			QueueName:   cfg.ExtractionTopic,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := rt.Launch(); err != nil {
			return nil, nil, err
		}
		log.Info().Str("queue", rt.QueueName()).Str("workflow", cfg.ExtractionWorkflow).Msg("dbos runtime launched")
		return queue.NewDBOSAnnouncer(rt, cfg.ExtractionWorkflow), func() { rt.Shutdown(10 * time.Second) }, nil
	default:
		a, err := queue.NewNatsAnnouncer(cfg.NatsURL, cfg.ExtractionTopic, log)
		if err != nil {
			return nil, nil, err
		}
		return a, a.Close, nil
	}
}
